package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
)

// movieSource is the _source of a movie document. Pointer fields tell an
// absent key apart from a zero value.
type movieSource struct {
	ItemID       *flexInt `json:"item_id"`
	TmdbID       *flexInt `json:"tmdbId"`
	Title        *string  `json:"title"`
	Year         *flexInt `json:"year"`
	Overview     *string  `json:"overview"`
	Runtime      *flexInt `json:"runtime"`
	Genres       []string `json:"genres"`
	VoteAverage  *float64 `json:"vote_average"`
	Popularity   *float64 `json:"popularity"`
	Director     *string  `json:"director"`
	Protagonists []string `json:"protagonists"`
	BackdropPath *string  `json:"backdrop_path"`
	PosterPath   *string  `json:"poster_path"`
}

type rawHit struct {
	ID     string          `json:"_id"`
	Score  *float64        `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

// normalizeHits maps hits one-to-one, keeping order. Any malformed hit fails the whole page.
func normalizeHits(hits []rawHit) ([]result.Hit, error) {
	out := make([]result.Hit, 0, len(hits))
	for i := range hits {
		h, err := normalizeHit(&hits[i])
		if err != nil {
			return nil, fmt.Errorf("hit %d (%s): %w", i, hits[i].ID, err)
		}
		out = append(out, h)
	}
	return out, nil
}

func normalizeHit(h *rawHit) (result.Hit, error) {
	if len(h.Source) == 0 || bytes.Equal(h.Source, []byte("null")) {
		return result.Hit{}, fmt.Errorf("%w: missing _source", domain.ErrMalformedIndexResponse)
	}
	var src movieSource
	if err := json.Unmarshal(h.Source, &src); err != nil {
		return result.Hit{}, fmt.Errorf("%w: decode _source: %w", domain.ErrMalformedIndexResponse, err)
	}

	switch {
	case src.ItemID == nil:
		return result.Hit{}, missingField("item_id")
	case src.Title == nil:
		return result.Hit{}, missingField("title")
	case src.Year == nil:
		return result.Hit{}, missingField("year")
	case src.Overview == nil:
		return result.Hit{}, missingField("overview")
	case src.Runtime == nil:
		return result.Hit{}, missingField("runtime")
	}

	m := movie.Movie{
		ItemID:       int64(*src.ItemID),
		Title:        *src.Title,
		Year:         int(*src.Year),
		Overview:     *src.Overview,
		Runtime:      int(*src.Runtime),
		Genres:       src.Genres,
		VoteAverage:  src.VoteAverage,
		Popularity:   src.Popularity,
		Director:     src.Director,
		Protagonists: src.Protagonists,
		BackdropPath: src.BackdropPath,
		PosterPath:   src.PosterPath,
	}
	if src.TmdbID != nil {
		id := int64(*src.TmdbID)
		m.TmdbID = &id
	}
	if m.Protagonists == nil {
		m.Protagonists = []string{}
	}

	var score float64
	if h.Score != nil {
		score = *h.Score
	}
	return result.NewHit(score, m), nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: _source.%s is missing", domain.ErrMalformedIndexResponse, name)
}

// flexInt accepts keyword-mapped ids that were indexed either as JSON numbers or numeric strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err //nolint:wrapcheck // json.Unmarshaler contract
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*f = flexInt(math.Trunc(n))
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err //nolint:wrapcheck // json.Unmarshaler contract
	}
	*f = flexInt(math.Trunc(n))
	return nil
}
