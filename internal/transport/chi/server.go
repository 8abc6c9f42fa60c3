// Package chi serves the reconciliation sidecar: a small HTTP API that reconciles raw bulk
// responses and checks hydration counts for callers that are not written in Go.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/querykit/internal/logger"
	"github.com/kailas-cloud/querykit/internal/metrics"
	"github.com/kailas-cloud/querykit/internal/usecase/health"
	"github.com/kailas-cloud/querykit/pkg/bulk"
	"github.com/kailas-cloud/querykit/pkg/hydration"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest          = "bad_request"
	codeUnauthorized        = "unauthorized"
	codePayloadTooLarge     = "payload_too_large"
	codeDependencyUnhealthy = "dependency_unhealthy"
	codeInternal            = "internal_error"
)

// Pinger checks a dependency; the response cache store and the engine client satisfy it.
type Pinger = health.Pinger

// Options configures the sidecar.
type Options struct {
	Mode         hydration.Mode
	MaxBodyBytes int64
	APIKeys      []string
	// Cache and Engine are pinged by /healthz when set.
	Cache  Pinger
	Engine Pinger
}

// Server handles the sidecar routes.
type Server struct {
	opts   Options
	health *health.Service
	logger *zap.Logger
}

// NewServer creates a sidecar server.
func NewServer(opts Options, logger *zap.Logger) *Server {
	if opts.Mode == "" {
		opts.Mode = hydration.ModeStrict
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{opts: opts, health: health.New(opts.Cache, opts.Engine), logger: logger}
}

// Router builds the chi router with the middleware chain and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.opts.APIKeys))
	r.Use(metrics.Middleware())

	r.Get(healthPath, s.Health)
	r.Method(http.MethodGet, metricsPath, metrics.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/bulk/reconcile", s.ReconcileBulk)
		r.Post("/hydration/check", s.CheckHydration)
	})
	return r
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FailureItem is one failed bulk item.
type FailureItem struct {
	Op      string `json:"op"`
	Index   string `json:"index"`
	ID      string `json:"id"`
	Routing string `json:"routing,omitempty"`
	Status  int    `json:"status"`
	Type    string `json:"type"`
	Reason  string `json:"reason"`
}

// ReconcileResponse is returned by POST /v1/bulk/reconcile.
type ReconcileResponse struct {
	Failed int            `json:"failed"`
	ByType map[string]int `json:"by_type,omitempty"`
	Items  []FailureItem  `json:"items,omitempty"`
}

// ReconcileBulk handles POST /v1/bulk/reconcile. The body is a raw bulk response.
func (s *Server) ReconcileBulk(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	resp, err := bulk.ParseResponse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	err = bulk.Reconcile(resp)
	if err == nil {
		metrics.ObserveBulk(false, nil)
		writeJSON(w, http.StatusOK, ReconcileResponse{})
		return
	}

	var opErr *bulk.BulkOperationError
	if !errors.As(err, &opErr) {
		s.internalError(w, r, err)
		return
	}

	byType := opErr.CountByType()
	metrics.ObserveBulk(true, byType)
	logpkg.FromContext(r.Context()).Warn("Bulk response has failed items",
		zap.Int("failed", len(opErr.Items)),
		zap.Strings("ids", opErr.IDs()),
	)

	items := make([]FailureItem, len(opErr.Items))
	for i, f := range opErr.Items {
		items[i] = FailureItem(f)
	}
	writeJSON(w, http.StatusMultiStatus, ReconcileResponse{
		Failed: len(items),
		ByType: byType,
		Items:  items,
	})
}

// HydrationCheckRequest is the body of POST /v1/hydration/check.
type HydrationCheckRequest struct {
	Total    int                `json:"total"`
	Resolved int                `json:"resolved"`
	Missing  []hydration.HitRef `json:"missing"`
	Mode     string             `json:"mode,omitempty"`
}

// HydrationCheckResponse is returned by POST /v1/hydration/check.
type HydrationCheckResponse struct {
	Mismatch bool               `json:"mismatch"`
	Mode     string             `json:"mode"`
	Total    int                `json:"total"`
	Resolved int                `json:"resolved"`
	Missing  int                `json:"missing"`
	Hits     []hydration.HitRef `json:"missing_hits,omitempty"`
	Message  string             `json:"message,omitempty"`
}

// CheckHydration handles POST /v1/hydration/check. A mismatch answers 409 in strict mode and
// 200 otherwise; the request may override the configured mode.
func (s *Server) CheckHydration(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var req HydrationCheckRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Total < 0 || req.Resolved < 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "total and resolved must not be negative")
		return
	}

	mode := s.opts.Mode
	if req.Mode != "" {
		m, err := hydration.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}
		mode = m
	}

	out := HydrationCheckResponse{Mode: mode.String(), Total: req.Total, Resolved: req.Resolved}
	err := hydration.Detect(hydration.Counts{Total: req.Total, Resolved: req.Resolved, MissingHits: req.Missing})

	var mmErr *hydration.HydrationMismatchError
	if !errors.As(err, &mmErr) {
		metrics.ObserveHydration(mode.String(), 0, false)
		writeJSON(w, http.StatusOK, out)
		return
	}
	metrics.ObserveHydration(mode.String(), mmErr.Missing, true)

	out.Mismatch = true
	out.Missing = mmErr.Missing
	out.Hits = mmErr.MissingHits
	out.Message = mmErr.Error()

	switch mode {
	case hydration.ModeStrict:
		writeJSON(w, http.StatusConflict, out)
	case hydration.ModeLog:
		logpkg.FromContext(r.Context()).Warn("Search hits could not be resolved",
			zap.Int("total", mmErr.Total),
			zap.Int("resolved", mmErr.Resolved),
			zap.Int("missing", mmErr.Missing),
		)
		writeJSON(w, http.StatusOK, out)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string            `json:"status"`
	Code   string            `json:"code,omitempty"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /healthz. Any failing dependency answers 503.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	out := HealthResponse{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for name, res := range report.Checks {
		out.Checks[name] = string(res)
	}
	if report.Status == health.Healthy {
		writeJSON(w, http.StatusOK, out)
		return
	}

	for name, err := range report.Errors {
		logpkg.FromContext(r.Context()).Warn("Dependency health check failed",
			zap.String("component", name), zap.Error(err))
	}
	out.Code = codeDependencyUnhealthy
	writeJSON(w, http.StatusServiceUnavailable, out)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, "request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "failed to read request body")
		return nil, false
	}
	return data, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logpkg.FromContext(r.Context()).Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
