package domain

import "errors"

var (
	// ErrInvalidRequest signals search parameters that fail validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnsupportedEmbeddingType signals an embedding type with no known model or no configured provider.
	ErrUnsupportedEmbeddingType = errors.New("unsupported embedding type")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexUnavailable signals that the search index could not be reached or rejected the request.
	ErrIndexUnavailable = errors.New("search index unavailable")
	// ErrMalformedIndexResponse signals a search index response missing required parts.
	ErrMalformedIndexResponse = errors.New("malformed search index response")
)
