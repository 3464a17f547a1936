package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/suggestion"
	"github.com/kailas-cloud/moviesearch/internal/logger"
	"github.com/kailas-cloud/moviesearch/internal/metrics"
)

// Search modes, used as metric labels.
const (
	ModeLexical    = "lexical"
	ModeHybrid     = "hybrid"
	ModeCompletion = "completion"
)

// Service runs movie searches and title completions.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates a search service. embed may be nil when no provider is configured;
// semantic requests then fail instead of silently degrading to lexical.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Search executes one lexical or hybrid search.
// The embedding client is consulted only for semantic requests, before the index call.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	mode := ModeLexical
	if req.Semantic() {
		mode = ModeHybrid
	}

	page, err := s.search(ctx, req)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(mode, "error").Inc()
		return result.Page{}, err
	}
	metrics.SearchRequestsTotal.WithLabelValues(mode, "success").Inc()

	if req.IncludeSuggestions() && req.HasQueryText() {
		s.logSuggestion(ctx, req, page.Suggestion())
	}
	return page, nil
}

func (s *Service) search(ctx context.Context, req *request.Request) (result.Page, error) {
	var vector []float32
	if req.Semantic() {
		if s.embed == nil {
			return result.Page{}, fmt.Errorf("vectorize query: %w: no embedding client configured",
				domain.ErrUnsupportedEmbeddingType)
		}
		var err error
		vector, err = s.embed.Embed(ctx, req.Query(), req.EmbeddingType())
		if err != nil {
			return result.Page{}, fmt.Errorf("vectorize query: %w", err)
		}
	}

	page, err := s.repo.Search(ctx, req, vector)
	if err != nil {
		return result.Page{}, fmt.Errorf("search index: %w", err)
	}
	return page, nil
}

func (s *Service) logSuggestion(ctx context.Context, req *request.Request, sugg suggestion.Suggestion) {
	outcome := sugg.Outcome()
	metrics.SuggestionOutcomesTotal.WithLabelValues(string(outcome)).Inc()

	log := logger.FromContext(ctx)
	switch outcome {
	case suggestion.Absent:
		log.Debug("No did-you-mean suggestion", zap.String("query", req.Query()))
	case suggestion.Malformed:
		log.Warn("Malformed did-you-mean block in index response", zap.String("query", req.Query()))
	}
}

// Complete returns title completions for a prefix.
// A blank prefix yields an empty list without calling the index.
func (s *Service) Complete(ctx context.Context, prefix string) ([]string, error) {
	if strings.TrimSpace(prefix) == "" {
		return []string{}, nil
	}
	out, err := s.repo.Complete(ctx, prefix)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(ModeCompletion, "error").Inc()
		return nil, fmt.Errorf("complete title: %w", err)
	}
	metrics.SearchRequestsTotal.WithLabelValues(ModeCompletion, "success").Inc()
	return out, nil
}
