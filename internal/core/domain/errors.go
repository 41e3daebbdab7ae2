package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrTemporary           = errors.New("temporary failure")
	ErrNoExtractableText   = errors.New("no extractable text")
	ErrNoModelResponse     = errors.New("no response from model")
	ErrMalformedModelReply = errors.New("malformed model reply")
	ErrConfigMissing       = errors.New("configuration keys missing")
	ErrReportFailed        = errors.New("report generation failed")
)

// Validation details. Callers match these with errors.Is in addition to ErrInvalidInput.
var (
	ErrUnknownFileKind   = errors.New("unknown file type")
	ErrEmptyFile         = errors.New("file content is empty")
	ErrInvalidBase64     = errors.New("file content is not valid base64")
	ErrNegativeSkip      = errors.New("skip must be greater than or equal to 0")
	ErrNegativeTake      = errors.New("take must be greater than or equal to 0")
	ErrSortFieldNotFound = errors.New("sort field not found")
	ErrSortOrderUnset    = errors.New("sort order is not set")
	ErrHeaderCount       = errors.New("report headers must name exactly 5 columns")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
