package chi

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
)

// movieSearchParams are the GET /movies query parameters.
type movieSearchParams struct {
	Offset             *int
	Size               *int
	Search             *string
	MinYear            *int
	MaxYear            *int
	GenresIn           *[]string
	GenresOut          *[]string
	MinRating          *float64
	IncludeSuggestions *bool
	EmbType            *string
	SemanticSearch     *bool
}

type queryBinding struct {
	name string
	dest any
}

// bindMovieSearchParams parses form-style, exploded query parameters.
func bindMovieSearchParams(r *http.Request) (movieSearchParams, error) {
	var p movieSearchParams
	q := r.URL.Query()
	bindings := []queryBinding{
		{"offset", &p.Offset},
		{"size", &p.Size},
		{"search", &p.Search},
		{"min_year", &p.MinYear},
		{"max_year", &p.MaxYear},
		{"genres_in", &p.GenresIn},
		{"genres_out", &p.GenresOut},
		{"min_rating", &p.MinRating},
		{"include_suggestions", &p.IncludeSuggestions},
		{"emb_type", &p.EmbType},
		{"semantic_search", &p.SemanticSearch},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return movieSearchParams{}, fmt.Errorf("invalid format for parameter %s: %w", b.name, err)
		}
	}
	return p, nil
}

func (p *movieSearchParams) toDomain() request.Params {
	return request.Params{
		Offset:             deref(p.Offset),
		Size:               p.Size,
		Query:              deref(p.Search),
		MinYear:            p.MinYear,
		MaxYear:            p.MaxYear,
		GenresIn:           deref(p.GenresIn),
		GenresOut:          deref(p.GenresOut),
		MinRating:          p.MinRating,
		IncludeSuggestions: deref(p.IncludeSuggestions),
		EmbeddingType:      deref(p.EmbType),
		SemanticSearch:     deref(p.SemanticSearch),
	}
}

// bindCompletionQuery reads the required query parameter of GET /completion.
func bindCompletionQuery(r *http.Request) (string, error) {
	var query string
	if err := runtime.BindQueryParameter("form", true, true, "query", r.URL.Query(), &query); err != nil {
		return "", fmt.Errorf("invalid format for parameter query: %w", err)
	}
	return query, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
