package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("movies").
		Keyword("genres", "director").
		Short("year").
		MustBuild()

	if idx.Name != "movies" {
		t.Errorf("name = %q, want movies", idx.Name)
	}
	if idx.Shards != 1 || idx.Replicas != 0 {
		t.Errorf("shards/replicas = %d/%d, want 1/0", idx.Shards, idx.Replicas)
	}
	if len(idx.Fields) != 3 {
		t.Fatalf("fields count = %d, want 3", len(idx.Fields))
	}
	if idx.Fields[0].Name != "genres" || idx.Fields[0].Type != FieldKeyword {
		t.Errorf("field[0] = %+v, want genres keyword", idx.Fields[0])
	}
	if idx.Fields[2].Name != "year" || idx.Fields[2].Type != FieldShort {
		t.Errorf("field[2] = %+v, want year short", idx.Fields[2])
	}
}

func TestIndexBuilder_Analyzers(t *testing.T) {
	idx := NewIndex("movies").
		TokenFilter("shingle_filter", "shingle", map[string]any{"min_shingle_size": 2}).
		Analyzer("trigram", "standard", nil, "lowercase", "shingle_filter").
		TextWithSubfield("title", "", "trigram", "trigram").
		MustBuild()

	if len(idx.Analyzers) != 1 || idx.Analyzers[0].Tokenizer != "standard" {
		t.Fatalf("analyzers = %+v", idx.Analyzers)
	}
	f := idx.Fields[0]
	if len(f.SubFields) != 1 || f.SubFields[0].Analyzer != "trigram" {
		t.Errorf("subfields = %+v", f.SubFields)
	}
}

func TestIndexBuilder_DenseVector(t *testing.T) {
	idx := NewIndex("movies").
		DenseVector("embedding", 768, SimilarityDotProduct, 16, 50).
		MustBuild()

	f := idx.Fields[0]
	if f.Type != FieldDenseVector {
		t.Errorf("type = %q, want dense_vector", f.Type)
	}
	if f.VectorDims != 768 {
		t.Errorf("dims = %d, want 768", f.VectorDims)
	}
	if f.VectorSimilarity != SimilarityDotProduct {
		t.Errorf("similarity = %q", f.VectorSimilarity)
	}
	if f.VectorM != 16 || f.VectorEFConstruct != 50 {
		t.Errorf("hnsw = %d/%d, want 16/50", f.VectorM, f.VectorEFConstruct)
	}
}

func TestIndexBuilder_Errors(t *testing.T) {
	tests := []struct {
		name string
		b    *IndexBuilder
		want string
	}{
		{"empty name", NewIndex("").Keyword("a"), "name is required"},
		{"uppercase name", NewIndex("Movies").Keyword("a"), "invalid characters"},
		{"no fields", NewIndex("movies"), "at least one field"},
		{"duplicate field", NewIndex("movies").Keyword("a", "a"), "duplicate field"},
		{"zero dims", NewIndex("movies").DenseVector("v", 0, SimilarityCosine, 16, 50), "positive dims"},
		{"unknown analyzer", NewIndex("movies").Text("title", "nope"), "unknown analyzer"},
		{"unknown filter", NewIndex("movies").Analyzer("a", "standard", nil, "nope").Keyword("k"), "unknown filter"},
		{"missing tokenizer", NewIndex("movies").Analyzer("a", "", nil).Keyword("k"), "requires a tokenizer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func TestIndexBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewIndex("").MustBuild()
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("movies").
		Keyword("genres").
		DenseVector("v", 768, SimilarityCosine, 16, 50).
		MustBuild()

	s := idx.String()
	for _, want := range []string{"PUT movies", "shards=1", "genres:keyword", "v:dense_vector(768,cosine)"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestIsValidIndexName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"movies", true},
		{"charla-python-v1.0", true},
		{"movies_2024", true},
		{"", false},
		{"Movies", false},
		{"_hidden", false},
		{"has space", false},
	}
	for _, tt := range tests {
		if got := IsValidIndexName(tt.in); got != tt.want {
			t.Errorf("IsValidIndexName(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
