package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/domain/movie"
)

func vec(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func vec64(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func validRecord() movie.Record {
	return movie.Record{
		Movie: movie.Movie{
			ItemID:     603,
			Title:      "The Matrix",
			Year:       1999,
			Overview:   "A hacker learns the truth.",
			Runtime:    136,
			Genres:     []string{"Action", "Science Fiction"},
			Popularity: floatPtr(73.9),
			Director:   strPtr("Lana Wachowski"),
		},
		OpenAIEmbedding:     vec(movie.OpenAIDimensions, 0.01),
		SymmetricEmbedding:  vec(movie.SBERTDimensions, 0.02),
		AsymmetricEmbedding: vec(movie.SBERTDimensions, 0.03),
	}
}

func TestDefinition(t *testing.T) {
	def, err := Definition("movies-v1")
	if err != nil {
		t.Fatalf("Definition: %v", err)
	}
	if def.Shards != 1 || def.Replicas != 0 || def.Dynamic {
		t.Errorf("settings = shards %d replicas %d dynamic %v", def.Shards, def.Replicas, def.Dynamic)
	}

	byName := map[string]db.IndexField{}
	for _, f := range def.Fields {
		byName[f.Name] = f
	}
	tests := []struct {
		name string
		typ  db.FieldType
	}{
		{"item_id", db.FieldKeyword},
		{"title", db.FieldText},
		{"title_completion", db.FieldCompletion},
		{"year", db.FieldShort},
		{"vote_average", db.FieldFloat},
		{"genres", db.FieldKeyword},
		{"openai_embedding", db.FieldDenseVector},
	}
	for _, tt := range tests {
		if byName[tt.name].Type != tt.typ {
			t.Errorf("%s: type = %q, want %q", tt.name, byName[tt.name].Type, tt.typ)
		}
	}

	title := byName["title"]
	if title.Analyzer != DefaultAnalyzer || len(title.SubFields) != 1 || title.SubFields[0].Analyzer != TrigramAnalyzer {
		t.Errorf("title = %+v", title)
	}
	asym := byName["sbert_asymmetric_embedding"]
	if asym.VectorDims != 768 || asym.VectorSimilarity != db.SimilarityDotProduct {
		t.Errorf("asymmetric = %+v", asym)
	}
	if !strings.Contains(def.String(), "openai_embedding:dense_vector(1536,cosine)") {
		t.Errorf("String() = %s", def.String())
	}
}

func TestDefinition_InvalidName(t *testing.T) {
	if _, err := Definition("Movies"); err == nil {
		t.Fatal("expected error for uppercase index name")
	}
}

func TestEncode(t *testing.T) {
	r := validRecord()
	doc, err := Encode(&r)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if doc.ID != "603" {
		t.Errorf("ID = %q", doc.ID)
	}

	var got map[string]any
	if err := json.Unmarshal(doc.Body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	tc := got["title_completion"].(map[string]any)
	if tc["input"] != "The Matrix" || tc["weight"].(float64) != 73 {
		t.Errorf("title_completion = %v", tc)
	}
	if got["vote_average"] != nil || got["tmdbId"] != nil {
		t.Error("absent optionals should encode as null")
	}
	if p, ok := got["protagonists"].([]any); !ok || len(p) != 0 {
		t.Errorf("protagonists = %v", got["protagonists"])
	}
	if len(got["sbert_symmetric_embedding"].([]any)) != movie.SBERTDimensions {
		t.Error("symmetric embedding length")
	}
}

func TestEncode_RejectsBadDimensions(t *testing.T) {
	r := validRecord()
	r.OpenAIEmbedding = vec(10, 1)
	if _, err := Encode(&r); err == nil {
		t.Fatal("expected dimension error")
	}
}

func TestParquetSource(t *testing.T) {
	dir := t.TempDir()
	tmdb := 603.0
	rows := []movieRow{
		{
			ItemID: 1, TmdbID: &tmdb, Title: "The Matrix", Year: 1999, Overview: "o", Runtime: 136,
			Genres: []string{"Action"}, Protagonist: []string{"Keanu Reeves"}, Popularity: floatPtr(10.5),
			OpenAI: vec64(4, 0.5), Symmetric: vec64(2, 0.25), Asymmetric: vec64(2, 0.125),
		},
		{ItemID: 2, Title: "Heat", Year: 1995, Overview: "o", Runtime: 170},
	}
	path := filepath.Join(dir, "movies.parquet")
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}

	var got []movie.Record
	err := NewParquetSource(path).Each(context.Background(), func(r movie.Record) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatalf("Each: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d", len(got))
	}
	first := got[0]
	if first.Title != "The Matrix" || first.TmdbID == nil || *first.TmdbID != 603 {
		t.Errorf("first = %+v", first.Movie)
	}
	if len(first.Protagonists) != 1 || first.Protagonists[0] != "Keanu Reeves" {
		t.Errorf("protagonists = %v", first.Protagonists)
	}
	if len(first.OpenAIEmbedding) != 4 || first.OpenAIEmbedding[0] != 0.5 {
		t.Errorf("openai = %v", first.OpenAIEmbedding)
	}
	if got[1].TmdbID != nil || got[1].Popularity != nil {
		t.Errorf("second optionals = %+v", got[1].Movie)
	}
}

func TestParquetSource_StopsOnCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.parquet")
	rows := []movieRow{{ItemID: 1, Title: "a"}, {ItemID: 2, Title: "b"}}
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}

	stop := errors.New("stop")
	calls := 0
	err := NewParquetSource(path).Each(context.Background(), func(movie.Record) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestParquetSource_MissingFile(t *testing.T) {
	err := NewParquetSource(filepath.Join(t.TempDir(), "nope.parquet")).Each(context.Background(),
		func(movie.Record) error { return nil })
	if err == nil {
		t.Fatal("expected error")
	}
}
