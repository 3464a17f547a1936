package chi

import (
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/moviesearch/internal/usecase/health"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest               ErrorCode = "bad_request"
	ErrorCodeUnauthorized             ErrorCode = "unauthorized"
	ErrorCodeValidationFailed         ErrorCode = "validation_failed"
	ErrorCodeUnsupportedEmbeddingType ErrorCode = "unsupported_embedding_type"
	ErrorCodeEmbeddingProviderError   ErrorCode = "embedding_provider_error"
	ErrorCodeIndexUnavailable         ErrorCode = "index_unavailable"
	ErrorCodeMalformedIndexResponse   ErrorCode = "malformed_index_response"
	ErrorCodeInternalError            ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// MovieResponse is one ranked hit. Optional fields serialize as null.
type MovieResponse struct {
	Score        float64  `json:"score"`
	Title        string   `json:"title"`
	TmdbID       *int64   `json:"tmdbId"`
	ItemID       int64    `json:"item_id"`
	Year         int      `json:"year"`
	Overview     string   `json:"overview"`
	Runtime      int      `json:"runtime"`
	Genres       []string `json:"genres"`
	VoteAverage  *float64 `json:"vote_average"`
	Popularity   *float64 `json:"popularity"`
	Director     *string  `json:"director"`
	Protagonists []string `json:"protagonists"`
	BackdropPath *string  `json:"backdrop_path"`
	PosterPath   *string  `json:"poster_path"`
}

// MoviesResponse is the body of GET /movies.
type MoviesResponse struct {
	Total          int             `json:"total"`
	Size           int             `json:"size"`
	Offset         int             `json:"offset"`
	DidYouMean     *string         `json:"did_you_mean"`
	DidYouMeanHTML *string         `json:"did_you_mean_html"`
	Movies         []MovieResponse `json:"movies"`
}

// CompletionResponse is the body of GET /completion.
type CompletionResponse struct {
	Suggestions []string `json:"suggestions"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func pageToResponse(p *result.Page) MoviesResponse {
	resp := MoviesResponse{
		Total:  p.Total(),
		Size:   p.Size(),
		Offset: p.Offset(),
		Movies: make([]MovieResponse, len(p.Hits())),
	}
	if text, ok := p.Suggestion().Text(); ok {
		resp.DidYouMean = &text
	}
	if html, ok := p.Suggestion().Highlighted(); ok {
		resp.DidYouMeanHTML = &html
	}
	for i, h := range p.Hits() {
		resp.Movies[i] = hitToResponse(h)
	}
	return resp
}

func hitToResponse(h result.Hit) MovieResponse {
	m := h.Movie()
	protagonists := m.Protagonists
	if protagonists == nil {
		protagonists = []string{}
	}
	return MovieResponse{
		Score:        h.Score(),
		Title:        m.Title,
		TmdbID:       m.TmdbID,
		ItemID:       m.ItemID,
		Year:         m.Year,
		Overview:     m.Overview,
		Runtime:      m.Runtime,
		Genres:       m.Genres,
		VoteAverage:  m.VoteAverage,
		Popularity:   m.Popularity,
		Director:     m.Director,
		Protagonists: protagonists,
		BackdropPath: m.BackdropPath,
		PosterPath:   m.PosterPath,
	}
}

func healthToResponse(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Checks: checks}
}
