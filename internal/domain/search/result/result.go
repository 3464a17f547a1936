package result

import (
	"github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/suggestion"
)

// Hit is a single ranked search result.
type Hit struct {
	score float64
	movie movie.Movie
}

// NewHit creates a search hit.
func NewHit(score float64, m movie.Movie) Hit {
	return Hit{score: score, movie: m}
}

// Score returns the engine relevance score.
func (h *Hit) Score() float64 { return h.score }

// Movie returns the matched movie.
func (h *Hit) Movie() movie.Movie { return h.movie }

// Page is one page of ranked results. Hits keep engine order.
type Page struct {
	total      int
	offset     int
	size       int
	suggestion suggestion.Suggestion
	hits       []Hit
}

// NewPage creates a result page. offset and size are the requested values, not the hit count.
func NewPage(total, offset, size int, s suggestion.Suggestion, hits []Hit) Page {
	if hits == nil {
		hits = []Hit{}
	}
	return Page{total: total, offset: offset, size: size, suggestion: s, hits: hits}
}

// Total returns the number of matching movies across all pages.
func (p *Page) Total() int { return p.total }

// Offset returns the requested offset.
func (p *Page) Offset() int { return p.offset }

// Size returns the requested page size.
func (p *Page) Size() int { return p.size }

// Suggestion returns the did-you-mean suggestion.
func (p *Page) Suggestion() suggestion.Suggestion { return p.suggestion }

// Hits returns the ranked hits.
func (p *Page) Hits() []Hit { return p.hits }
