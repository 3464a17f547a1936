package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/suggestion"
)

// searcher is the part of the search store the repository needs.
type searcher interface {
	Search(ctx context.Context, index string, body []byte) ([]byte, error)
}

// Repo executes movie searches and completions against one index.
type Repo struct {
	store  searcher
	index  string
	fields VectorFields
}

// New creates a search repository. A nil fields map uses DefaultVectorFields.
func New(store searcher, index string, fields VectorFields) *Repo {
	if fields == nil {
		fields = DefaultVectorFields()
	}
	return &Repo{store: store, index: index, fields: fields}
}

// Index returns the index name searched.
func (r *Repo) Index() string { return r.index }

type searchResponse struct {
	Hits *struct {
		Total *struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits *[]rawHit `json:"hits"`
	} `json:"hits"`
	Suggest map[string]json.RawMessage `json:"suggest"`
}

// Search runs one combined lexical (and, for semantic requests, kNN) query.
// vector is the embedded query text and must be nil for lexical requests.
// Hit order and total are taken verbatim from the engine.
func (r *Repo) Search(ctx context.Context, req *request.Request, vector []float32) (result.Page, error) {
	body, err := BuildSearchBody(req, vector, r.fields)
	if err != nil {
		return result.Page{}, fmt.Errorf("build query: %w", err)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return result.Page{}, fmt.Errorf("marshal query: %w", err)
	}

	raw, err := r.store.Search(ctx, r.index, data)
	if err != nil {
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return result.Page{}, fmt.Errorf("%w: decode response: %w", domain.ErrMalformedIndexResponse, err)
	}
	if resp.Hits == nil {
		return result.Page{}, fmt.Errorf("%w: missing hits", domain.ErrMalformedIndexResponse)
	}
	if resp.Hits.Total == nil {
		return result.Page{}, fmt.Errorf("%w: missing hits.total", domain.ErrMalformedIndexResponse)
	}
	if resp.Hits.Hits == nil {
		return result.Page{}, fmt.Errorf("%w: missing hits.hits", domain.ErrMalformedIndexResponse)
	}

	hits, err := normalizeHits(*resp.Hits.Hits)
	if err != nil {
		return result.Page{}, err
	}

	sugg := suggestion.None()
	if req.IncludeSuggestions() && req.HasQueryText() {
		sugg = extractSuggestion(resp.Suggest)
	}

	return result.NewPage(resp.Hits.Total.Value, req.Offset(), req.Size(), sugg, hits), nil
}

type suggestEntry struct {
	Options []struct {
		Text        *string `json:"text"`
		Highlighted *string `json:"highlighted"`
	} `json:"options"`
}

// extractSuggestion never fails: a missing block or empty options is Absent,
// an undecodable block is Malformed.
func extractSuggestion(blocks map[string]json.RawMessage) suggestion.Suggestion {
	raw, ok := blocks[SuggestName]
	if !ok {
		return suggestion.None()
	}
	var entries []suggestEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return suggestion.NewMalformed()
	}
	if len(entries) == 0 || len(entries[0].Options) == 0 {
		return suggestion.None()
	}
	opt := entries[0].Options[0]
	if opt.Text == nil || *opt.Text == "" {
		return suggestion.NewMalformed()
	}
	highlighted := *opt.Text
	if opt.Highlighted != nil && *opt.Highlighted != "" {
		highlighted = *opt.Highlighted
	}
	return suggestion.NewFound(*opt.Text, highlighted)
}

type completionResponse struct {
	Suggest map[string]json.RawMessage `json:"suggest"`
}

type completionEntry struct {
	Options []struct {
		Text string `json:"text"`
	} `json:"options"`
}

// Complete returns title completions for prefix in engine order.
// A response without the completion block is malformed; no options is an empty result.
func (r *Repo) Complete(ctx context.Context, prefix string) ([]string, error) {
	data, err := json.Marshal(BuildCompletionBody(prefix))
	if err != nil {
		return nil, fmt.Errorf("marshal completion query: %w", err)
	}

	raw, err := r.store.Search(ctx, r.index, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	var resp completionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode completion: %w", domain.ErrMalformedIndexResponse, err)
	}
	block, ok := resp.Suggest[CompletionName]
	if !ok {
		return nil, fmt.Errorf("%w: missing suggest.%s", domain.ErrMalformedIndexResponse, CompletionName)
	}
	var entries []completionEntry
	if err := json.Unmarshal(block, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode suggest.%s: %w", domain.ErrMalformedIndexResponse, CompletionName, err)
	}

	out := []string{}
	for _, e := range entries {
		for _, o := range e.Options {
			out = append(out, o.Text)
		}
	}
	return out, nil
}
