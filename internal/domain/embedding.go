package domain

import (
	"context"
	"fmt"
)

// EmbeddingType selects the embedding model (and therefore the vector field) used for semantic search.
type EmbeddingType string

// Known embedding types. Values are the public wire names of the /movies emb_type parameter.
const (
	EmbeddingSymmetric  EmbeddingType = "symmetric"
	EmbeddingAsymmetric EmbeddingType = "asymmetric"
	EmbeddingOpenAI     EmbeddingType = "openai"
)

// DefaultEmbeddingType is used when the caller does not pick one.
const DefaultEmbeddingType = EmbeddingSymmetric

// EmbeddingTypes lists every supported type in a stable order.
func EmbeddingTypes() []EmbeddingType {
	return []EmbeddingType{EmbeddingSymmetric, EmbeddingAsymmetric, EmbeddingOpenAI}
}

// IsValid reports whether t is one of the known embedding types.
func (t EmbeddingType) IsValid() bool {
	switch t {
	case EmbeddingSymmetric, EmbeddingAsymmetric, EmbeddingOpenAI:
		return true
	}
	return false
}

// IsLocal reports whether t is served by the local sentence-transformer service.
func (t EmbeddingType) IsLocal() bool {
	return t == EmbeddingSymmetric || t == EmbeddingAsymmetric
}

// ParseEmbeddingType converts a wire value into an EmbeddingType.
// Empty input yields DefaultEmbeddingType.
func ParseEmbeddingType(s string) (EmbeddingType, error) {
	if s == "" {
		return DefaultEmbeddingType, nil
	}
	t := EmbeddingType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEmbeddingType, s)
	}
	return t, nil
}

// Embedder is the shared text vectorization contract between layers.
// Each implementation is bound to a single model.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
