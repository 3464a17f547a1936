package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/domain/movie"
)

type completionDoc struct {
	Input  string `json:"input"`
	Weight int    `json:"weight"`
}

// movieDoc is the _source layout the search repository reads back.
type movieDoc struct {
	ItemID          int64         `json:"item_id"`
	TmdbID          *int64        `json:"tmdbId"`
	Title           string        `json:"title"`
	TitleCompletion completionDoc `json:"title_completion"`
	Year            int           `json:"year"`
	Overview        string        `json:"overview"`
	Runtime         int           `json:"runtime"`
	Genres          []string      `json:"genres"`
	VoteAverage     *float64      `json:"vote_average"`
	Popularity      *float64      `json:"popularity"`
	Director        *string       `json:"director"`
	Protagonists    []string      `json:"protagonists"`
	BackdropPath    *string       `json:"backdrop_path"`
	PosterPath      *string       `json:"poster_path"`

	OpenAIEmbedding     []float32 `json:"openai_embedding"`
	SymmetricEmbedding  []float32 `json:"sbert_symmetric_embedding"`
	AsymmetricEmbedding []float32 `json:"sbert_asymmetric_embedding"`
}

// Encode validates a record and renders it as an index document keyed by item_id.
func Encode(r *movie.Record) (db.Document, error) {
	if err := r.Validate(); err != nil {
		return db.Document{}, fmt.Errorf("invalid record: %w", err)
	}
	seed := r.Completion()
	protagonists := r.Protagonists
	if protagonists == nil {
		protagonists = []string{}
	}

	body, err := json.Marshal(movieDoc{
		ItemID:              r.ItemID,
		TmdbID:              r.TmdbID,
		Title:               r.Title,
		TitleCompletion:     completionDoc{Input: seed.Input, Weight: seed.Weight},
		Year:                r.Year,
		Overview:            r.Overview,
		Runtime:             r.Runtime,
		Genres:              r.Genres,
		VoteAverage:         r.VoteAverage,
		Popularity:          r.Popularity,
		Director:            r.Director,
		Protagonists:        protagonists,
		BackdropPath:        r.BackdropPath,
		PosterPath:          r.PosterPath,
		OpenAIEmbedding:     r.OpenAIEmbedding,
		SymmetricEmbedding:  r.SymmetricEmbedding,
		AsymmetricEmbedding: r.AsymmetricEmbedding,
	})
	if err != nil {
		return db.Document{}, fmt.Errorf("marshal item %d: %w", r.ItemID, err)
	}
	return db.Document{ID: strconv.FormatInt(r.ItemID, 10), Body: body}, nil
}
