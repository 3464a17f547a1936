package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/moviesearch/internal/domain"
)

// DefaultCacheSize bounds the in-process memo when no size is configured.
const DefaultCacheSize = 10000

// DefaultCallTimeout bounds a shared provider call when no timeout is configured.
const DefaultCallTimeout = 30 * time.Second

type cacheKey struct {
	typ  domain.EmbeddingType
	text string
}

// ClientOptions configure a Client.
type ClientOptions struct {
	CacheSize int
	// CallTimeout bounds one shared provider call. It is detached from the
	// callers' cancellation, so this is its only deadline.
	CallTimeout time.Duration
	// CacheTotal is a counter vec with labels "layer" and "result".
	CacheTotal *prometheus.CounterVec
}

// Client turns query text into a vector with the provider registered for an embedding type.
// Results are memoized per exact (text, type) in a bounded LRU; concurrent
// misses for one key share a single provider call.
type Client struct {
	providers  map[domain.EmbeddingType]domain.Embedder
	cache      *lru.Cache[cacheKey, []float32]
	group       singleflight.Group
	callTimeout time.Duration
	cacheTotal  *prometheus.CounterVec
	logger      *zap.Logger
}

// NewClient creates an embedding client over the given providers.
func NewClient(providers map[domain.EmbeddingType]domain.Embedder, opts ClientOptions, logger *zap.Logger) (*Client, error) {
	for t := range providers {
		if !t.IsValid() {
			return nil, fmt.Errorf("register provider: %w: %q", domain.ErrUnsupportedEmbeddingType, t)
		}
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	callTimeout := opts.CallTimeout
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		providers:   providers,
		cache:       cache,
		callTimeout: callTimeout,
		cacheTotal:  opts.CacheTotal,
		logger:      logger,
	}, nil
}

// Supports reports whether a provider is configured for t.
func (c *Client) Supports(t domain.EmbeddingType) bool {
	_, ok := c.providers[t]
	return ok
}

// Embed returns the embedding of text for type t.
// The returned slice is owned by the caller.
func (c *Client) Embed(ctx context.Context, text string, t domain.EmbeddingType) ([]float32, error) {
	provider, ok := c.providers[t]
	if !ok {
		return nil, fmt.Errorf("%w: no provider configured for %q", domain.ErrUnsupportedEmbeddingType, t)
	}

	key := cacheKey{typ: t, text: text}
	if vec, ok := c.cache.Get(key); ok {
		c.incCache("hit")
		return clone(vec), nil
	}
	c.incCache("miss")

	// The shared call outlives any single caller: one caller giving up must
	// not fail the others waiting on the same key.
	ch := c.group.DoChan(string(t)+"\x00"+text, func() (any, error) {
		if vec, ok := c.cache.Get(key); ok {
			return vec, nil
		}
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.callTimeout)
		defer cancel()
		res, err := provider.Embed(callCtx, text)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, res.Embedding)
		return res.Embedding, nil
	})

	var r singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("embed %s query: %w", t, ctx.Err())
	case r = <-ch:
	}
	if r.Err != nil {
		err := r.Err
		if !errors.Is(err, domain.ErrEmbeddingProviderError) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
		}
		return nil, fmt.Errorf("embed %s query: %w", t, err)
	}
	if r.Shared {
		c.logger.Debug("Embedding request shared", zap.String("type", string(t)))
	}

	vec, ok := r.Val.([]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight: %T", r.Val)
	}
	return clone(vec), nil
}

// HealthCheck checks every provider that supports it and joins the failures.
func (c *Client) HealthCheck(ctx context.Context) error {
	var errs []error
	for _, t := range domain.EmbeddingTypes() {
		p, ok := c.providers[t]
		if !ok {
			continue
		}
		hc, ok := p.(domain.HealthChecker)
		if !ok {
			continue
		}
		if err := hc.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Client) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues("memory", result).Inc()
	}
}

func clone(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
