// Package sbert is the client of the local sentence-embedding service.
//
// The service exposes one endpoint, POST {base}/embedding with
// {"text": ..., "type": "symmetric"|"asymmetric"}, answering {"embedding": [...]}.
package sbert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/metrics"
)

const (
	providerName   = "sbert"
	embeddingPath  = "/embedding"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Models served by the embedding service, used for metric labels.
var models = map[domain.EmbeddingType]string{
	domain.EmbeddingSymmetric:  "all-mpnet-base-v2",
	domain.EmbeddingAsymmetric: "msmarco-bert-base-dot-v5",
}

// Config holds the local embedding service settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Dimensions is the expected vector length; zero disables the check.
	Dimensions int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Embedder requests one embedding type from the local service.
type Embedder struct {
	baseURL    string
	typ        domain.EmbeddingType
	model      string
	dimensions int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewEmbedder binds a client to a local embedding type.
func NewEmbedder(cfg Config, typ domain.EmbeddingType) (*Embedder, error) {
	if !typ.IsLocal() {
		return nil, fmt.Errorf("%w: %q is not served locally", domain.ErrUnsupportedEmbeddingType, typ)
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("sbert: base url is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		typ:        typ,
		model:      models[typ],
		dimensions: cfg.Dimensions,
		httpClient: client,
		logger:     logger,
	}, nil
}

// Model returns the sentence-transformers model behind this type.
func (e *Embedder) Model() string { return e.model }

type embeddingRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	vec, errType, err := e.call(ctx, text)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, errType).Inc()
		e.logger.Warn("Local embedding failed",
			zap.String("type", string(e.typ)),
			zap.String("error_type", errType),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(time.Since(start).Seconds())
	return domain.EmbeddingResult{Embedding: vec}, nil
}

func (e *Embedder) call(ctx context.Context, text string) ([]float32, string, error) {
	body, err := json.Marshal(embeddingRequest{Text: text, Type: string(e.typ)})
	if err != nil {
		return nil, "marshal", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+embeddingPath, bytes.NewReader(body))
	if err != nil {
		return nil, "request", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "transport", fmt.Errorf("embedding service call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, "api_error", fmt.Errorf("embedding service status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, "decode", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, "empty_response", errors.New("empty embedding")
	}
	if e.dimensions > 0 && len(out.Embedding) != e.dimensions {
		return nil, "dimension_mismatch", fmt.Errorf("embedding has %d dimensions, want %d", len(out.Embedding), e.dimensions)
	}
	return out.Embedding, "", nil
}

// HealthCheck reports whether the service answers HTTP at all.
// The service has no dedicated health route, so any non-5xx response counts.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("embedding service unreachable: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("embedding service status %d", resp.StatusCode)
	}
	return nil
}
