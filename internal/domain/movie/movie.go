package movie

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/moviesearch/internal/domain"
)

// Embedding dimensions per model, fixed by the index mapping.
const (
	OpenAIDimensions = 1536
	SBERTDimensions  = 768
)

// Dimensions returns the vector length produced for an embedding type.
func Dimensions(t domain.EmbeddingType) int {
	if t == domain.EmbeddingOpenAI {
		return OpenAIDimensions
	}
	return SBERTDimensions
}

// Movie is the searchable view of a catalog entry. Optional fields are nil when absent.
type Movie struct {
	ItemID       int64
	TmdbID       *int64
	Title        string
	Year         int
	Overview     string
	Runtime      int
	Genres       []string
	VoteAverage  *float64
	Popularity   *float64
	Director     *string
	Protagonists []string
	BackdropPath *string
	PosterPath   *string
}

// CompletionSeed is the autocomplete entry derived from a movie at ingestion time.
type CompletionSeed struct {
	Input  string
	Weight int
}

// Record is a catalog entry as written by the loader: the movie plus its precomputed embeddings.
type Record struct {
	Movie
	OpenAIEmbedding     []float32
	SymmetricEmbedding  []float32
	AsymmetricEmbedding []float32
}

// Completion derives the completion seed: the title weighted by truncated popularity.
func (r *Record) Completion() CompletionSeed {
	w := 0
	if r.Popularity != nil && *r.Popularity > 0 {
		w = int(math.Min(*r.Popularity, math.MaxInt32))
	}
	return CompletionSeed{Input: r.Title, Weight: w}
}

// Validate checks required fields and embedding dimensions.
func (r *Record) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("item %d: title is required", r.ItemID)
	}
	vectors := []struct {
		name string
		vec  []float32
		dims int
	}{
		{"openai_embedding", r.OpenAIEmbedding, OpenAIDimensions},
		{"sbert_symmetric_embedding", r.SymmetricEmbedding, SBERTDimensions},
		{"sbert_asymmetric_embedding", r.AsymmetricEmbedding, SBERTDimensions},
	}
	for _, v := range vectors {
		if len(v.vec) != v.dims {
			return fmt.Errorf("item %d: %s has %d dimensions, want %d", r.ItemID, v.name, len(v.vec), v.dims)
		}
	}
	return nil
}
