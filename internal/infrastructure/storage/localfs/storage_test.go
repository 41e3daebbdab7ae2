package localfs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/core/ports"
)

func TestUploadNamesBlobByUUIDAndExtension(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	name, err := store.Upload(context.Background(), ports.BlobUpload{Data: []byte("%PDF"), ContentType: "application/pdf", Extension: "pdf"})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasSuffix(name, ".pdf") || len(name) != 36+len(".pdf") {
		t.Fatalf("unexpected blob name %q", name)
	}

	rc, err := store.Open(context.Background(), name)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "%PDF" {
		t.Fatalf("unexpected content %q", body)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store, _ := New(t.TempDir())
	for _, name := range []string{"../etc/passwd", "", ".hidden", "a/b.pdf"} {
		if _, err := store.Open(context.Background(), name); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found for %q, got %v", name, err)
		}
	}
}
