package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/suggestion"
)

const batmanResponse = `{
  "hits": {
    "total": {"value": 3, "relation": "eq"},
    "hits": [
      {"_id": "1", "_score": 9.1, "_source": {
        "item_id": 1, "tmdbId": "268", "title": "Batman", "year": 1989,
        "overview": "The Dark Knight of Gotham City begins his war on crime.",
        "runtime": 126, "genres": ["Action", "Fantasy"], "vote_average": 7.2,
        "popularity": 41.5, "director": "Tim Burton", "protagonists": ["Michael Keaton"],
        "poster_path": "/kBf3g9crrADGMc2AMAMlLBgSm2h.jpg"}},
      {"_id": "2", "_score": 8.7, "_source": {
        "item_id": "2", "title": "Batman Returns", "year": 1992,
        "overview": "The Penguin rises.", "runtime": 126, "genres": ["Action"]}}
    ]
  }
}`

// --- Search ---

func TestSearch_LexicalHappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(_ context.Context, index string, _ []byte) ([]byte, error) {
		if index != "movies" {
			t.Errorf("index = %q", index)
		}
		return []byte(batmanResponse), nil
	}

	req := mustRequest(t, request.Params{Query: "batman", Size: intPtr(2), GenresIn: []string{"Action"}})
	page, err := repo.Search(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.calls != 1 {
		t.Errorf("store calls = %d, want 1", ms.calls)
	}
	if _, ok := ms.lastBody["knn"]; ok {
		t.Error("lexical search sent a knn clause")
	}
	if page.Total() != 3 || page.Size() != 2 || page.Offset() != 0 {
		t.Errorf("total=%d size=%d offset=%d", page.Total(), page.Size(), page.Offset())
	}

	hits := page.Hits()
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	for _, h := range hits {
		m := h.Movie()
		found := false
		for _, g := range m.Genres {
			found = found || g == "Action"
		}
		if !found {
			t.Errorf("%s lacks Action: %v", m.Title, m.Genres)
		}
	}

	first := hits[0].Movie()
	if hits[0].Score() != 9.1 || first.ItemID != 1 || first.Title != "Batman" {
		t.Errorf("first hit = %+v (score %f)", first, hits[0].Score())
	}
	if first.TmdbID == nil || *first.TmdbID != 268 {
		t.Errorf("TmdbID = %v", first.TmdbID)
	}
	if first.Director == nil || *first.Director != "Tim Burton" {
		t.Errorf("Director = %v", first.Director)
	}

	second := hits[1].Movie()
	if second.ItemID != 2 {
		t.Errorf("string item_id not decoded: %d", second.ItemID)
	}
	if second.TmdbID != nil || second.VoteAverage != nil || second.Director != nil || second.PosterPath != nil {
		t.Errorf("absent optionals should be nil: %+v", second)
	}
	if second.Protagonists == nil || len(second.Protagonists) != 0 {
		t.Errorf("Protagonists = %#v, want empty slice", second.Protagonists)
	}
	if page.Suggestion().Outcome() != suggestion.Absent {
		t.Errorf("suggestion = %q", page.Suggestion().Outcome())
	}
}

func TestSearch_SemanticSendsKNN(t *testing.T) {
	repo, ms := newTestRepo(t)

	req := mustRequest(t, request.Params{Query: "dark hero", SemanticSearch: true, EmbeddingType: "openai"})
	if _, err := repo.Search(context.Background(), req, testVector()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	knn, ok := ms.lastBody["knn"].(map[string]any)
	if !ok {
		t.Fatal("knn clause missing")
	}
	if knn["field"] != FieldOpenAIEmbedding {
		t.Errorf("field = %v", knn["field"])
	}
}

func TestSearch_PaginationEcho(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, string, []byte) ([]byte, error) {
		return []byte(`{"hits":{"total":{"value":500},"hits":[]}}`), nil
	}

	req := mustRequest(t, request.Params{Offset: 480, Size: intPtr(40)})
	page, err := repo.Search(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Offset() != 480 || page.Size() != 40 || page.Total() != 500 {
		t.Errorf("offset=%d size=%d total=%d", page.Offset(), page.Size(), page.Total())
	}
	if len(page.Hits()) != 0 {
		t.Errorf("hits = %d", len(page.Hits()))
	}
}

func TestSearch_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, string, []byte) ([]byte, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("connection refused")}
	}

	_, err := repo.Search(context.Background(), mustRequest(t, request.Params{}), nil)
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("err = %v, want ErrIndexUnavailable", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Error("db.Error should stay in the chain")
	}
}

func TestSearch_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", `<html>`, "decode response"},
		{"no hits", `{"took": 3}`, "missing hits"},
		{"no total", `{"hits":{"hits":[]}}`, "hits.total"},
		{"no hit list", `{"hits":{"total":{"value":1}}}`, "hits.hits"},
		{"no source", `{"hits":{"total":{"value":1},"hits":[{"_id":"1","_score":1}]}}`, "_source"},
		{"missing title", `{"hits":{"total":{"value":1},"hits":[{"_id":"1","_score":1,"_source":{"item_id":1,"year":1,"overview":"","runtime":1}}]}}`, "title"},
		{"missing runtime", `{"hits":{"total":{"value":1},"hits":[{"_id":"1","_score":1,"_source":{"item_id":1,"title":"t","year":1,"overview":""}}]}}`, "runtime"},
		{"bad item_id", `{"hits":{"total":{"value":1},"hits":[{"_id":"1","_score":1,"_source":{"item_id":"abc","title":"t","year":1,"overview":"","runtime":1}}]}}`, "decode _source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.searchFn = func(context.Context, string, []byte) ([]byte, error) {
				return []byte(tt.body), nil
			}
			_, err := repo.Search(context.Background(), mustRequest(t, request.Params{}), nil)
			if !errors.Is(err, domain.ErrMalformedIndexResponse) {
				t.Fatalf("err = %v, want ErrMalformedIndexResponse", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func TestSearch_Suggestion(t *testing.T) {
	const hits = `"hits":{"total":{"value":0},"hits":[]}`
	tests := []struct {
		name     string
		body     string
		outcome  suggestion.Outcome
		wantText string
		wantHTML string
	}{
		{
			name:     "found",
			body:     `{` + hits + `,"suggest":{"did_you_mean":[{"text":"batmn","options":[{"text":"batman","highlighted":"<strong>batman</strong>","score":0.4}]}]}}`,
			outcome:  suggestion.Found,
			wantText: "batman",
			wantHTML: "<strong>batman</strong>",
		},
		{
			name:     "found without highlight",
			body:     `{` + hits + `,"suggest":{"did_you_mean":[{"options":[{"text":"batman"}]}]}}`,
			outcome:  suggestion.Found,
			wantText: "batman",
			wantHTML: "batman",
		},
		{"no suggest block", `{` + hits + `}`, suggestion.Absent, "", ""},
		{"empty options", `{` + hits + `,"suggest":{"did_you_mean":[{"text":"batman","options":[]}]}}`, suggestion.Absent, "", ""},
		{"wrong shape", `{` + hits + `,"suggest":{"did_you_mean":{"options":"nope"}}}`, suggestion.Malformed, "", ""},
		{"option without text", `{` + hits + `,"suggest":{"did_you_mean":[{"options":[{"score":1}]}]}}`, suggestion.Malformed, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.searchFn = func(context.Context, string, []byte) ([]byte, error) {
				return []byte(tt.body), nil
			}
			req := mustRequest(t, request.Params{Query: "batmn", IncludeSuggestions: true})
			page, err := repo.Search(context.Background(), req, nil)
			if err != nil {
				t.Fatalf("suggestion problems must not fail the search: %v", err)
			}
			s := page.Suggestion()
			if s.Outcome() != tt.outcome {
				t.Fatalf("outcome = %q, want %q", s.Outcome(), tt.outcome)
			}
			text, _ := s.Text()
			html, _ := s.Highlighted()
			if text != tt.wantText || html != tt.wantHTML {
				t.Errorf("text=%q html=%q", text, html)
			}
		})
	}
}

func TestSearch_SuggestionIgnoredWhenNotRequested(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, string, []byte) ([]byte, error) {
		return []byte(`{"hits":{"total":{"value":0},"hits":[]},"suggest":{"did_you_mean":[{"options":[{"text":"x"}]}]}}`), nil
	}
	page, err := repo.Search(context.Background(), mustRequest(t, request.Params{Query: "y"}), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Suggestion().Outcome() != suggestion.Absent {
		t.Errorf("outcome = %q", page.Suggestion().Outcome())
	}
}

// --- Complete ---

func TestComplete_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, string, []byte) ([]byte, error) {
		return []byte(`{"hits":{"total":{"value":0},"hits":[]},"suggest":{"complete":[{"text":"batm","offset":0,"length":4,"options":[
			{"text":"Batman Begins","_score":60},{"text":"Batman","_score":41},{"text":"Batman Returns","_score":30}]}]}}`), nil
	}

	got, err := repo.Complete(context.Background(), "batm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Batman Begins", "Batman", "Batman Returns"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if dig(t, ms.lastBody, "suggest", "complete", "prefix") != "batm" {
		t.Error("prefix not sent")
	}
}

func TestComplete_NoOptions(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, string, []byte) ([]byte, error) {
		return []byte(`{"suggest":{"complete":[{"text":"zzzz","options":[]}]}}`), nil
	}
	got, err := repo.Complete(context.Background(), "zzzz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty slice", got)
	}
}

func TestComplete_MissingBlock(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, string, []byte) ([]byte, error) {
		return []byte(`{"hits":{"total":{"value":0},"hits":[]}}`), nil
	}
	_, err := repo.Complete(context.Background(), "bat")
	if !errors.Is(err, domain.ErrMalformedIndexResponse) {
		t.Errorf("err = %v, want ErrMalformedIndexResponse", err)
	}
}

func TestComplete_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, string, []byte) ([]byte, error) {
		return nil, errors.New("timeout")
	}
	_, err := repo.Complete(context.Background(), "bat")
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("err = %v, want ErrIndexUnavailable", err)
	}
}
