package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jurisrank/internal/domain"
	dombatch "github.com/kailas-cloud/jurisrank/internal/domain/batch"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/query"
	healthuc "github.com/kailas-cloud/jurisrank/internal/usecase/health"
)

// maxBodyBytes bounds request bodies; decisions carry full texts.
const maxBodyBytes = 4 << 20

// Searcher runs the ranking pipeline for a case.
type Searcher interface {
	Search(ctx context.Context, caseID string, q *query.Query) ([]caselaw.ScoredResult, error)
}

// DecisionStore maintains indexed decisions.
type DecisionStore interface {
	Upsert(ctx context.Context, d caselaw.Decision) error
	Delete(ctx context.Context, id string) error
}

// BatchService maintains decisions in bulk.
type BatchService interface {
	Upsert(ctx context.Context, items []caselaw.Decision) []dombatch.Result
	Delete(ctx context.Context, ids []string) []dombatch.Result
	MaxBatchSize() int
}

// HealthChecker aggregates dependency checks.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search, maintenance and health endpoints.
type Server struct {
	search        Searcher
	decisions     DecisionStore
	batch         BatchService
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. A nil decisions store or batch
// service disables the corresponding maintenance routes.
func NewServer(
	search Searcher,
	decisions DecisionStore,
	batch BatchService,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		decisions: decisions,
		batch:     batch,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidDecision, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, CodeUpstreamError),
		sentinelHandler(domain.ErrConfig, http.StatusInternalServerError, CodeConfigError),
	}
	return s
}

// Routes registers the API routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/cases/{caseID}/search", s.SearchCase)
		if s.batch != nil {
			r.Post("/decisions/batch", s.BatchUpsert)
			r.Post("/decisions/batch-delete", s.BatchDelete)
		}
		if s.decisions != nil {
			r.Put("/decisions/{id}", s.UpsertDecision)
			r.Delete("/decisions/{id}", s.DeleteDecision)
		}
	})
}

// SearchCase handles POST /v1/cases/{caseID}/search.
func (s *Server) SearchCase(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := queryFromRequest(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Search(ctx, chi.URLParam(r, "caseID"), &q)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = resultToItem(&results[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: items, Total: len(items)})
}

// UpsertDecision handles PUT /v1/decisions/{id}.
func (s *Server) UpsertDecision(w http.ResponseWriter, r *http.Request) {
	var req UpsertDecisionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if req.Metadata.ECLI == "" {
		req.Metadata.ECLI = id
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	err := s.decisions.Upsert(ctx, caselaw.Decision{ID: id, Text: req.Text, Metadata: req.Metadata})
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DecisionResponse{ID: id})
}

// DeleteDecision handles DELETE /v1/decisions/{id}.
func (s *Server) DeleteDecision(w http.ResponseWriter, r *http.Request) {
	if err := s.decisions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BatchUpsert handles POST /v1/decisions/batch.
func (s *Server) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	var req BatchUpsertRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if n := len(req.Decisions); n == 0 || n > s.batch.MaxBatchSize() {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("decisions count must be between 1 and %d", s.batch.MaxBatchSize()))
		return
	}

	items := make([]caselaw.Decision, len(req.Decisions))
	for i, d := range req.Decisions {
		if d.Metadata.ECLI == "" {
			d.Metadata.ECLI = d.ID
		}
		items[i] = caselaw.Decision{ID: d.ID, Text: d.Text, Metadata: d.Metadata}
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results := s.batch.Upsert(ctx, items)
	setUsageHeaders(w, usage)

	writeJSON(w, http.StatusOK, batchResponse(results))
}

// BatchDelete handles POST /v1/decisions/batch-delete.
func (s *Server) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if n := len(req.IDs); n == 0 || n > s.batch.MaxBatchSize() {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("ids count must be between 1 and %d", s.batch.MaxBatchSize()))
		return
	}

	writeJSON(w, http.StatusOK, batchResponse(s.batch.Delete(r.Context(), req.IDs)))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.SearchUsage) {
	if usage == nil {
		return
	}
	if usage.EmbeddingTokens > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	}
	if usage.Rerank != "" {
		w.Header().Set("X-Rerank", usage.Rerank)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client message without exposing internals.
// Validation errors describe caller input and are returned verbatim.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidQuery) || errors.Is(err, domain.ErrInvalidDecision) {
		return err.Error()
	}
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		return domain.ErrUpstream.Error() + ": " + ue.Service
	}
	var ce *domain.ConfigError
	if errors.As(err, &ce) {
		return domain.ErrConfig.Error() + ": " + ce.Field
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
