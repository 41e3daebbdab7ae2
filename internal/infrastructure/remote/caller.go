package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/document-insight/internal/infrastructure/resilience"
)

const defaultTimeout = 5 * time.Minute

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Caller sends authenticated JSON requests to one endpoint. Transport failures are
// retried through the executor. A final non-2xx status yields a nil result, not an error.
type Caller struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
	logger     *slog.Logger
}

func NewCaller(cfg Config, executor *resilience.Executor, logger *slog.Logger) *Caller {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base != "" {
		base += "/"
	}
	return &Caller{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
		logger:     logger,
	}
}

func Post[T any](ctx context.Context, c *Caller, path string, body any) (*T, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", path, err)
	}
	return send[T](ctx, c, http.MethodPost, path, payload)
}

func Get[T any](ctx context.Context, c *Caller, path string) (*T, error) {
	return send[T](ctx, c, http.MethodGet, path, nil)
}

type exchange struct {
	status int
	body   []byte
}

func send[T any](ctx context.Context, c *Caller, method, path string, payload []byte) (*T, error) {
	operation := strings.ToLower(method) + " " + strings.TrimLeft(path, "/")

	res, err := resilience.Do(ctx, c.executor, operation, func(ctx context.Context) (exchange, error) {
		return c.roundTrip(ctx, method, path, payload)
	}, transportClassifier(ctx))
	if err != nil {
		return nil, wrapTemporaryIfNeeded(ctx, operation, err)
	}

	if res.status < 200 || res.status >= 300 {
		c.logger.Warn("remote_call_unsuccessful",
			"operation", operation,
			"status", res.status,
			"body", truncate(string(res.body), 512),
		)
		return nil, nil
	}

	var out T
	if len(bytes.TrimSpace(res.body)) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(res.body, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", operation, err)
	}
	return &out, nil
}

func (c *Caller) roundTrip(ctx context.Context, method, path string, payload []byte) (exchange, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+strings.TrimLeft(path, "/"), body)
	if err != nil {
		return exchange{}, &requestBuildError{err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return exchange{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return exchange{}, err
	}
	return exchange{status: resp.StatusCode, body: data}, nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
