package search

import (
	"context"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
)

// Repository defines the index contract for search operations.
type Repository interface {
	Search(ctx context.Context, req *request.Request, vector []float32) (result.Page, error)
	Complete(ctx context.Context, prefix string) ([]string, error)
}

// Embedder vectorizes query text with the model of an embedding type.
type Embedder interface {
	Embed(ctx context.Context, text string, t domain.EmbeddingType) ([]float32, error)
}
