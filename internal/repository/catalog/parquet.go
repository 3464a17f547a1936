package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/moviesearch/internal/domain/movie"
)

const readBatch = 256

// movieRow is one row of the embeddings parquet export.
// Embeddings are stored as float64 lists and narrowed on read.
type movieRow struct {
	ItemID       int64     `parquet:"item_id"`
	TmdbID       *float64  `parquet:"tmdbId,optional"`
	Title        string    `parquet:"title"`
	Year         int64     `parquet:"year"`
	Overview     string    `parquet:"overview"`
	Runtime      int64     `parquet:"runtime"`
	Genres       []string  `parquet:"genres,list"`
	VoteAverage  *float64  `parquet:"vote_average,optional"`
	Popularity   *float64  `parquet:"popularity,optional"`
	Director     *string   `parquet:"director,optional"`
	Protagonist  []string  `parquet:"protagonist,list"`
	BackdropPath *string   `parquet:"backdrop_path,optional"`
	PosterPath   *string   `parquet:"poster_path,optional"`
	OpenAI       []float64 `parquet:"openai_embedding,list"`
	Symmetric    []float64 `parquet:"sbert_symmetric_embedding,list"`
	Asymmetric   []float64 `parquet:"sbert_asymmetric_embedding,list"`
}

func (r *movieRow) record() movie.Record {
	var tmdb *int64
	if r.TmdbID != nil {
		v := int64(*r.TmdbID)
		tmdb = &v
	}
	return movie.Record{
		Movie: movie.Movie{
			ItemID:       r.ItemID,
			TmdbID:       tmdb,
			Title:        r.Title,
			Year:         int(r.Year),
			Overview:     r.Overview,
			Runtime:      int(r.Runtime),
			Genres:       r.Genres,
			VoteAverage:  r.VoteAverage,
			Popularity:   r.Popularity,
			Director:     r.Director,
			Protagonists: r.Protagonist,
			BackdropPath: r.BackdropPath,
			PosterPath:   r.PosterPath,
		},
		OpenAIEmbedding:     narrow(r.OpenAI),
		SymmetricEmbedding:  narrow(r.Symmetric),
		AsymmetricEmbedding: narrow(r.Asymmetric),
	}
}

func narrow(v []float64) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

// ParquetSource streams movie records from parquet files in order.
type ParquetSource struct {
	paths []string
}

// NewParquetSource creates a source over the given files.
func NewParquetSource(paths ...string) *ParquetSource {
	return &ParquetSource{paths: paths}
}

// Each calls fn for every record of every file. An fn error stops the scan.
func (s *ParquetSource) Each(ctx context.Context, fn func(movie.Record) error) error {
	for _, p := range s.paths {
		if err := s.readFile(ctx, p, fn); err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
	}
	return nil
}

func (s *ParquetSource) readFile(ctx context.Context, path string, fn func(movie.Record) error) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := parquet.NewGenericReader[movieRow](f)
	defer func() { _ = reader.Close() }()

	buf := make([]movieRow, readBatch)
	for {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // context cancellation
		}
		n, readErr := reader.Read(buf)
		for i := range n {
			if err := fn(buf[i].record()); err != nil {
				return err
			}
		}
		clear(buf[:n])
		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read rows: %w", readErr)
		}
	}
}
