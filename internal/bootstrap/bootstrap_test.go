package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/kirillkom/document-insight/internal/config"
	"github.com/kirillkom/document-insight/internal/core/domain"
)

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	return config.Config{
		DBDriver:          "sqlite",
		SQLitePath:        filepath.Join(dir, "db", "history.db"),
		BlobBackend:       "localfs",
		StoragePath:       filepath.Join(dir, "files"),
		ReportStoragePath: filepath.Join(dir, "reports"),
		BlobFilesURL:      "http://localhost:8080/files/",
		BlobReportsURL:    "http://localhost:8080/reports/",
		ServeFiles:        true,
		ModelAPIURL:       "http://127.0.0.1:1/",
		MaxAttempts:       1,
		SchemaValidation:  true,
	}
}

func TestNewWiresSQLiteAndLocalStorage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := New(context.Background(), testConfig(t), logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.Analyzer == nil || app.History == nil || app.Reports == nil || app.Files == nil || app.Metrics == nil {
		t.Fatalf("expected all services to be wired: %+v", app)
	}

	if err := app.History.AddUserInteraction(context.Background(), domain.UserActionEnterAnalysisPage); err != nil {
		t.Fatalf("AddUserInteraction() error = %v", err)
	}
	res, err := app.Reports.GenerateReport(context.Background(), domain.ReportRequest{})
	if err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}
	if len(res.URL) <= len("http://localhost:8080/reports/") {
		t.Fatalf("unexpected report url %q", res.URL)
	}

	page, err := app.History.GetPaged(context.Background(), domain.HistoryQuery{Take: 10})
	if err != nil {
		t.Fatalf("GetPaged() error = %v", err)
	}
	if page.TotalPages != 2 {
		t.Fatalf("expected interaction and export entries, got %d", page.TotalPages)
	}
}

func TestNewRejectsUnknownBackends(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "oracle"
	if _, err := New(context.Background(), cfg, slog.Default()); err == nil {
		t.Fatalf("expected error for unknown database driver")
	}

	cfg = testConfig(t)
	cfg.DBDriver = "memory"
	cfg.BlobBackend = "ftp"
	if _, err := New(context.Background(), cfg, slog.Default()); err == nil {
		t.Fatalf("expected error for unknown blob backend")
	}
}
