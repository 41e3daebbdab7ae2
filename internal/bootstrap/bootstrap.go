package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	httpadapter "github.com/kirillkom/document-insight/internal/adapters/http"
	"github.com/kirillkom/document-insight/internal/config"
	"github.com/kirillkom/document-insight/internal/core/ports"
	"github.com/kirillkom/document-insight/internal/core/usecase"
	"github.com/kirillkom/document-insight/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/document-insight/internal/infrastructure/llm/openai"
	"github.com/kirillkom/document-insight/internal/infrastructure/queue/nats"
	"github.com/kirillkom/document-insight/internal/infrastructure/remote"
	"github.com/kirillkom/document-insight/internal/infrastructure/report/xlsx"
	"github.com/kirillkom/document-insight/internal/infrastructure/repository/memory"
	"github.com/kirillkom/document-insight/internal/infrastructure/repository/sqlstore"
	"github.com/kirillkom/document-insight/internal/infrastructure/resilience"
	"github.com/kirillkom/document-insight/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/document-insight/internal/infrastructure/storage/minio"
	"github.com/kirillkom/document-insight/internal/infrastructure/validation"
	"github.com/kirillkom/document-insight/internal/observability/metrics"
)

const ServiceName = "document-insight-api"

type App struct {
	Config config.Config

	Analyzer ports.DocumentAnalyzer
	History  ports.HistoryService
	Reports  ports.ReportService
	Files    httpadapter.FileOpener
	Metrics  *metrics.HTTPServerMetrics

	closers []func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	uow, err := app.openHistory(ctx, cfg)
	if err != nil {
		return nil, err
	}

	files, reports, err := app.openBlobStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(resilience.Config{
		MaxAttempts:             cfg.MaxAttempts,
		Delay:                   time.Duration(cfg.RetryDelayMS) * time.Millisecond,
		BreakerEnabled:          cfg.BreakerEnabled,
		BreakerMinRequests:      uint32(max(cfg.BreakerMinRequests, 0)),
		BreakerFailureRatio:     cfg.BreakerFailureRatio,
		BreakerOpenTimeout:      time.Duration(cfg.BreakerOpenTimeoutMS) * time.Millisecond,
		BreakerHalfOpenMaxCalls: uint32(max(cfg.BreakerHalfOpenMaxCalls, 0)),
		Logger:                  logger,
	})
	caller := remote.NewCaller(remote.Config{
		BaseURL: cfg.ModelAPIURL,
		APIKey:  cfg.ModelAPIKey,
		Timeout: time.Duration(cfg.ModelTimeoutMinutes) * time.Minute,
	}, executor, logger)

	app.Metrics = metrics.NewHTTPServerMetrics(ServiceName)
	opts := []usecase.AnalyzeOption{
		usecase.WithLogger(logger),
		usecase.WithAnalysisObserver(metrics.NewAnalysisMetrics(ServiceName, app.Metrics.Registry())),
	}
	if cfg.SchemaValidation {
		validator, err := validation.NewResultValidator()
		if err != nil {
			return nil, fmt.Errorf("init result validator: %w", err)
		}
		opts = append(opts, usecase.WithResultValidator(validator))
	}

	var publisher ports.HistoryPublisher
	if cfg.NATSURL != "" {
		p, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("init history publisher: %w", err)
		}
		app.closers = append(app.closers, p.Close)
		publisher = p
		opts = append(opts, usecase.WithHistoryPublisher(p))
	}

	builder := usecase.NewRequestBuilder(pdftext.NewExtractor(), cfg.ModelName, cfg.ModelMaxTokens)
	history := usecase.NewHistoryUseCase(uow, publisher, logger)

	app.Analyzer = usecase.NewAnalyzeDocumentUseCase(uow, files, builder, openai.New(caller), opts...)
	app.History = history
	app.Reports = usecase.NewReportUseCase(history, xlsx.NewRenderer(logger), reports, usecase.ReportConfig{
		FilesURL:   cfg.BlobFilesURL,
		ReportsURL: cfg.BlobReportsURL,
	})

	ok = true
	return app, nil
}

func (a *App) openHistory(ctx context.Context, cfg config.Config) (ports.UnitOfWorkFactory, error) {
	var (
		db      *sql.DB
		dialect sqlstore.Dialect
		err     error
	)
	switch cfg.DBDriver {
	case "memory":
		return memory.New(), nil
	case "postgres":
		db, dialect, err = sqlstore.Open(ctx, "postgres", cfg.PostgresDSN)
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, dialect, err = sqlstore.Open(ctx, "sqlite", cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	a.closers = append(a.closers, func() { _ = db.Close() })

	store := sqlstore.New(db, dialect)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (a *App) openBlobStores(ctx context.Context, cfg config.Config) (files, reports ports.BlobStorage, err error) {
	switch cfg.BlobBackend {
	case "minio":
		client, err := minio.NewClient(minio.Config{
			Endpoint:  cfg.MinIOEndpoint,
			Region:    cfg.MinIORegion,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init minio client: %w", err)
		}
		fileStore, err := minio.New(ctx, client, cfg.MinIOFilesBucket, cfg.MinIORegion)
		if err != nil {
			return nil, nil, fmt.Errorf("init files bucket: %w", err)
		}
		reportStore, err := minio.New(ctx, client, cfg.MinIOReportsBucket, cfg.MinIORegion)
		if err != nil {
			return nil, nil, fmt.Errorf("init reports bucket: %w", err)
		}
		return fileStore, reportStore, nil
	case "localfs":
		fileStore, err := localfs.New(cfg.StoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("init file storage: %w", err)
		}
		reportStore, err := localfs.New(cfg.ReportStoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("init report storage: %w", err)
		}
		if cfg.ServeFiles {
			a.Files = fileStore
		}
		return fileStore, reportStore, nil
	default:
		return nil, nil, fmt.Errorf("unsupported BLOB_BACKEND %q", cfg.BlobBackend)
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
