package search

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, index string, body []byte) ([]byte, error)
	calls    int
	lastBody map[string]any
}

func (m *mockStore) Search(ctx context.Context, index string, body []byte) ([]byte, error) {
	m.calls++
	m.lastBody = nil
	_ = json.Unmarshal(body, &m.lastBody)
	if m.searchFn != nil {
		return m.searchFn(ctx, index, body)
	}
	return []byte(`{"hits":{"total":{"value":0},"hits":[]}}`), nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "movies", nil), ms
}

func mustRequest(t *testing.T, p request.Params) *request.Request {
	t.Helper()
	r, err := request.New(p, request.Limits{})
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

func testVector() []float32 {
	vec := make([]float32, 4)
	for i := range vec {
		vec[i] = 0.25
	}
	return vec
}

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64 { return &v }

// dig walks nested maps and slices decoded from JSON: string keys index maps, ints index slices.
func dig(t *testing.T, v any, path ...any) any {
	t.Helper()
	cur := v
	for _, p := range path {
		switch k := p.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				t.Fatalf("dig %v: %T is not an object at %q", path, cur, k)
			}
			cur, ok = m[k]
			if !ok {
				t.Fatalf("dig %v: key %q missing", path, k)
			}
		case int:
			s, ok := cur.([]any)
			if !ok || k >= len(s) {
				t.Fatalf("dig %v: no element %d", path, k)
			}
			cur = s[k]
		}
	}
	return cur
}

// roundTrip marshals a built body and decodes it into generic JSON values.
func roundTrip(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}
