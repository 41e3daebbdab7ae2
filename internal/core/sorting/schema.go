// Package sorting resolves sort field names supplied at runtime against a closed,
// explicitly registered set of fields.
package sorting

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kirillkom/document-insight/internal/core/domain"
)

// Field binds a sortable name to its storage expression and an in-memory comparator.
type Field[T any] struct {
	Column  string
	Compare func(a, b T) int
}

type Schema[T any] struct {
	key    Field[T]
	fields map[string]Field[T]
	names  []string
}

// NewSchema creates a schema whose key field breaks ties between equal sort values.
func NewSchema[T any](keyName string, key Field[T]) *Schema[T] {
	s := &Schema[T]{key: key, fields: make(map[string]Field[T])}
	return s.Add(keyName, key)
}

func (s *Schema[T]) Add(name string, field Field[T]) *Schema[T] {
	normalized := normalize(name)
	if normalized == "" || field.Compare == nil || field.Column == "" {
		panic(fmt.Sprintf("sorting: invalid field %q", name))
	}
	if _, exists := s.fields[normalized]; !exists {
		s.names = append(s.names, name)
	}
	s.fields[normalized] = field
	return s
}

// Nest registers every field of nested under "prefix.<name>", read through get.
func Nest[T, N any](s *Schema[T], prefix string, get func(T) N, nested *Schema[N]) *Schema[T] {
	for _, name := range nested.names {
		field := nested.fields[normalize(name)]
		compare := field.Compare
		s.Add(prefix+"."+name, Field[T]{
			Column: field.Column,
			Compare: func(a, b T) int {
				return compare(get(a), get(b))
			},
		})
	}
	return s
}

// Names lists registered field names in registration order.
func (s *Schema[T]) Names() []string {
	return slices.Clone(s.names)
}

// Resolve validates spec and returns its ordering. A nil spec orders by the key ascending.
func (s *Schema[T]) Resolve(spec *domain.SortSpec) (Ordering[T], error) {
	if spec == nil {
		return Ordering[T]{field: s.key, key: s.key}, nil
	}
	field, ok := s.fields[normalize(spec.Property)]
	if !ok {
		return Ordering[T]{}, domain.WrapError(domain.ErrInvalidInput, "resolve sort",
			fmt.Errorf("%w: %q", domain.ErrSortFieldNotFound, spec.Property))
	}
	if spec.Order == nil {
		return Ordering[T]{}, domain.WrapError(domain.ErrInvalidInput, "resolve sort",
			fmt.Errorf("%w: %q", domain.ErrSortOrderUnset, spec.Property))
	}
	return Ordering[T]{
		field: field,
		key:   s.key,
		desc:  *spec.Order == domain.SortDescending,
	}, nil
}

func normalize(name string) string {
	parts := strings.Split(strings.TrimSpace(name), ".")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
		if parts[i] == "" {
			return ""
		}
	}
	return strings.Join(parts, ".")
}

type Ordering[T any] struct {
	field Field[T]
	key   Field[T]
	desc  bool
}

func (o Ordering[T]) Descending() bool {
	return o.desc
}

// Clause renders an ORDER BY body. Ties fall back to the key in the same direction.
func (o Ordering[T]) Clause() string {
	dir := "ASC"
	if o.desc {
		dir = "DESC"
	}
	if o.field.Column == o.key.Column {
		return o.field.Column + " " + dir
	}
	return o.field.Column + " " + dir + ", " + o.key.Column + " " + dir
}

// Compare orders a before b under this ordering.
func (o Ordering[T]) Compare(a, b T) int {
	c := o.field.Compare(a, b)
	if c == 0 {
		c = o.key.Compare(a, b)
	}
	if o.desc {
		return -c
	}
	return c
}

func (o Ordering[T]) Sort(items []T) {
	slices.SortStableFunc(items, o.Compare)
}

// By builds a comparator over an ordered value.
func By[T any, V cmp.Ordered](get func(T) V) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(get(a), get(b))
	}
}

func ByTime[T any](get func(T) time.Time) func(a, b T) int {
	return func(a, b T) int {
		return get(a).Compare(get(b))
	}
}
