package catalog

import (
	"context"

	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/domain/movie"
)

// IndexManager manages the movie index lifecycle.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// BulkOpener opens bulk write sessions against an index.
type BulkOpener interface {
	NewBulkWriter(ctx context.Context, index string) (db.BulkWriter, error)
}

// Source yields catalog records.
type Source interface {
	Each(ctx context.Context, fn func(movie.Record) error) error
}
