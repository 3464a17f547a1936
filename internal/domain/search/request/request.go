package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 1024
	DefaultSize    = 50
	MaxSize        = 1000
	// MaxResultWindow mirrors the index max_result_window: offset+size may not exceed it.
	MaxResultWindow = 10000
	// MaxGenres caps each genre list after de-duplication. Included genres plus
	// the rating and year conditions must fit in one filter group.
	MaxGenres = filter.MaxConditionsPerGroup - 2
)

// Indexed field names the filters apply to.
const (
	FieldGenres      = "genres"
	FieldVoteAverage = "vote_average"
	FieldYear        = "year"
)

// Params are the raw, unvalidated search parameters.
type Params struct {
	Offset             int
	Size               *int
	Query              string
	MinYear            *int
	MaxYear            *int
	GenresIn           []string
	GenresOut          []string
	MinRating          *float64
	IncludeSuggestions bool
	EmbeddingType      string
	SemanticSearch     bool
}

// Limits bound the page size. Zero values fall back to DefaultSize and MaxSize.
type Limits struct {
	DefaultSize int
	MaxSize     int
}

// Request is a validated search query.
type Request struct {
	offset             int
	size               int
	query              string
	minYear            *int
	maxYear            *int
	genresIn           []string
	genresOut          []string
	minRating          *float64
	includeSuggestions bool
	embeddingType      domain.EmbeddingType
	semantic           bool
	filters            filter.Expression
}

// New validates and normalizes search parameters and derives the filter expression.
// Genre lists are de-duplicated keeping first-seen order; blank genres are dropped.
// A year range with min > max is accepted as-is.
func New(p Params, lim Limits) (Request, error) {
	if lim.DefaultSize <= 0 {
		lim.DefaultSize = DefaultSize
	}
	if lim.MaxSize <= 0 {
		lim.MaxSize = MaxSize
	}

	if p.Offset < 0 {
		return Request{}, fmt.Errorf("%w: offset must be >= 0", domain.ErrInvalidRequest)
	}
	size := lim.DefaultSize
	if p.Size != nil {
		size = *p.Size
	}
	if size < 1 {
		return Request{}, fmt.Errorf("%w: size must be >= 1", domain.ErrInvalidRequest)
	}
	if size > lim.MaxSize {
		return Request{}, fmt.Errorf("%w: size must be <= %d", domain.ErrInvalidRequest, lim.MaxSize)
	}
	if p.Offset+size > MaxResultWindow {
		return Request{}, fmt.Errorf("%w: offset+size must be <= %d", domain.ErrInvalidRequest, MaxResultWindow)
	}
	if len(p.Query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}

	et, err := domain.ParseEmbeddingType(p.EmbeddingType)
	if err != nil {
		return Request{}, err
	}

	r := Request{
		offset:             p.Offset,
		size:               size,
		query:              p.Query,
		minYear:            p.MinYear,
		maxYear:            p.MaxYear,
		genresIn:           dedupe(p.GenresIn),
		genresOut:          dedupe(p.GenresOut),
		minRating:          p.MinRating,
		includeSuggestions: p.IncludeSuggestions,
		embeddingType:      et,
		semantic:           p.SemanticSearch,
	}

	if len(r.genresIn) > MaxGenres {
		return Request{}, fmt.Errorf("%w: too many genres_in values (max %d)", domain.ErrInvalidRequest, MaxGenres)
	}
	if len(r.genresOut) > MaxGenres {
		return Request{}, fmt.Errorf("%w: too many genres_out values (max %d)", domain.ErrInvalidRequest, MaxGenres)
	}

	r.filters, err = buildFilters(&r)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return r, nil
}

func buildFilters(r *Request) (filter.Expression, error) {
	must := make([]filter.Condition, 0, len(r.genresIn)+2)
	for _, g := range r.genresIn {
		c, err := filter.NewMatch(FieldGenres, g)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, c)
	}

	if r.minRating != nil {
		rng, err := filter.NewRangeFilter(r.minRating, nil, nil, nil)
		if err != nil {
			return filter.Expression{}, err
		}
		c, err := filter.NewRange(FieldVoteAverage, rng)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, c)
	}

	if r.minYear != nil || r.maxYear != nil {
		rng, err := filter.NewRangeFilter(nil, intToFloat(r.minYear), nil, intToFloat(r.maxYear))
		if err != nil {
			return filter.Expression{}, err
		}
		c, err := filter.NewRange(FieldYear, rng)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, c)
	}

	mustNot := make([]filter.Condition, 0, len(r.genresOut))
	for _, g := range r.genresOut {
		c, err := filter.NewMatch(FieldGenres, g)
		if err != nil {
			return filter.Expression{}, err
		}
		mustNot = append(mustNot, c)
	}

	return filter.NewExpression(must, mustNot)
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

// Offset returns the number of results to skip.
func (r *Request) Offset() int { return r.offset }

// Size returns the page size.
func (r *Request) Size() int { return r.size }

// Query returns the search query text. Empty matches all movies.
func (r *Request) Query() string { return r.query }

// HasQueryText reports whether the query has any non-whitespace text.
func (r *Request) HasQueryText() bool { return strings.TrimSpace(r.query) != "" }

// MinYear returns the inclusive lower year bound, if any.
func (r *Request) MinYear() *int { return r.minYear }

// MaxYear returns the inclusive upper year bound, if any.
func (r *Request) MaxYear() *int { return r.maxYear }

// GenresIn returns genres every result must have.
func (r *Request) GenresIn() []string { return r.genresIn }

// GenresOut returns genres no result may have.
func (r *Request) GenresOut() []string { return r.genresOut }

// MinRating returns the exclusive lower vote average bound, if any.
func (r *Request) MinRating() *float64 { return r.minRating }

// IncludeSuggestions reports whether a did-you-mean suggestion was requested.
func (r *Request) IncludeSuggestions() bool { return r.includeSuggestions }

// EmbeddingType returns the model used for the vector branch.
func (r *Request) EmbeddingType() domain.EmbeddingType { return r.embeddingType }

// Semantic reports whether the vector branch is enabled.
func (r *Request) Semantic() bool { return r.semantic }

// Filters returns the pre-filter expression shared by both branches.
func (r *Request) Filters() filter.Expression { return r.filters }
