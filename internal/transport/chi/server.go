package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
	"github.com/kailas-cloud/moviesearch/internal/logger"
	healthuc "github.com/kailas-cloud/moviesearch/internal/usecase/health"
)

// MovieSearcher runs movie searches and completions.
type MovieSearcher interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
	Complete(ctx context.Context, prefix string) ([]string, error)
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the movie search HTTP API.
type Server struct {
	search        MovieSearcher
	health        HealthReporter
	limits        request.Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search MovieSearcher, health HealthReporter, limits request.Limits, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		health: health,
		limits: limits,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrUnsupportedEmbeddingType,
			http.StatusNotImplemented, ErrorCodeUnsupportedEmbeddingType),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusBadGateway, ErrorCodeIndexUnavailable),
		sentinelHandler(domain.ErrMalformedIndexResponse,
			http.StatusBadGateway, ErrorCodeMalformedIndexResponse),
	}
	return s
}

// SearchMovies handles GET /movies.
func (s *Server) SearchMovies(w http.ResponseWriter, r *http.Request) {
	params, err := bindMovieSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	req, err := request.New(params.toDomain(), s.limits)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(&page))
}

// Complete handles GET /completion.
func (s *Server) Complete(w http.ResponseWriter, r *http.Request) {
	query, err := bindCompletionQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	suggestions, err := s.search.Complete(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	writeJSON(w, http.StatusOK, CompletionResponse{Suggestions: suggestions})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage keeps client-caused errors verbatim and reduces upstream
// failures to their sentinel text, so store addresses and raw bodies never leak.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrUnsupportedEmbeddingType) {
		return err.Error()
	}
	upstream := []error{
		domain.ErrEmbeddingProviderError,
		domain.ErrIndexUnavailable,
		domain.ErrMalformedIndexResponse,
	}
	for _, s := range upstream {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			if !errors.Is(err, domain.ErrInvalidRequest) {
				log.Warn("Request failed", zap.Error(err))
			}
			return
		}
	}
	log.Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, msg)
}
