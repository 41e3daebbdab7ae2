package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/core/ports"
)

// FileOpener serves stored uploads back to report readers.
type FileOpener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// HTTPMetrics is the slice of the metrics recorder the router needs.
type HTTPMetrics interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
	RecordRateLimited(path string)
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
	OverloadWait   time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64
}

type Router struct {
	analyzer ports.DocumentAnalyzer
	history  ports.HistoryService
	reports  ports.ReportService
	files    FileOpener
	metrics  HTTPMetrics
	cfg      Config
}

func NewRouter(
	analyzer ports.DocumentAnalyzer,
	history ports.HistoryService,
	reports ports.ReportService,
	files FileOpener,
	metrics HTTPMetrics,
	cfg Config,
) *Router {
	return &Router{
		analyzer: analyzer,
		history:  history,
		reports:  reports,
		files:    files,
		metrics:  metrics,
		cfg:      cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(rt.cfg.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", rt.healthz)
	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}
	if rt.files != nil {
		r.Get("/files/{name}", rt.serveFile)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(rt.trafficControl)
		api.Post("/analysis/analyze", rt.analyze)
		api.Post("/log/getlogs", rt.getLogs)
		api.Post("/log/interaction", rt.addInteraction)
		api.Post("/report/generate", rt.generateReport)
	})

	if rt.metrics == nil {
		return r
	}
	return rt.metrics.Middleware(r)
}

func (rt *Router) trafficControl(next http.Handler) http.Handler {
	var limiter *rate.Limiter
	if rt.cfg.RateLimitRPS > 0 {
		burst := rt.cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rt.cfg.RateLimitRPS), burst)
	}
	var onLimited func(*http.Request)
	if rt.metrics != nil {
		onLimited = func(r *http.Request) { rt.metrics.RecordRateLimited(r.URL.Path) }
	}
	return rateLimitMiddleware(backpressureMiddleware(next, rt.cfg.MaxInFlight, rt.cfg.OverloadWait), limiter, onLimited)
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalysisRequest
	if !rt.decode(w, r, &req) {
		return
	}
	result, err := rt.analyzer.Analyze(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getLogs(w http.ResponseWriter, r *http.Request) {
	var query domain.HistoryQuery
	if !rt.decode(w, r, &query) {
		return
	}
	page, err := rt.history.GetPaged(r.Context(), query)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// addInteraction accepts either a bare action ({1} or "ExportHistorical") or {"action": ...}.
func (rt *Router) addInteraction(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if !rt.decode(w, r, &raw) {
		return
	}
	var action domain.UserAction
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		var body struct {
			Action domain.UserAction `json:"action"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid user action: "+err.Error())
			return
		}
		action = body.Action
	} else if err := json.Unmarshal(raw, &action); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid user action: "+err.Error())
		return
	}

	if err := rt.history.AddUserInteraction(r.Context(), action); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) generateReport(w http.ResponseWriter, r *http.Request) {
	var req domain.ReportRequest
	if !rt.decode(w, r, &req) {
		return
	}
	res, err := rt.reports.GenerateReport(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (rt *Router) serveFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	file, err := rt.files.Open(r.Context(), name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	defer file.Close()

	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, file)
}

func (rt *Router) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := r.Body
	if rt.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxBodyBytes)
	}
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, r, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err.Error(),
		)
	}
	writeError(w, r, status, err.Error())
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message, RequestID: requestIDFromContext(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
