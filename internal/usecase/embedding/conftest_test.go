package embedding

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	healthErr error
	calls     atomic.Int32

	// gate, when set, blocks Embed until closed.
	gate    chan struct{}
	mu      sync.Mutex
	lastTxt string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastTxt = text
	m.mu.Unlock()
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return domain.EmbeddingResult{}, ctx.Err()
		}
	}
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	vec := make([]float32, len(m.result.Embedding))
	copy(vec, m.result.Embedding)
	return domain.EmbeddingResult{Embedding: vec, PromptTokens: m.result.PromptTokens, TotalTokens: m.result.TotalTokens}, nil
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }
