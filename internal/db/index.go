package db

import (
	"errors"
	"strconv"
)

// FieldType is an index mapping field type.
type FieldType string

const (
	// FieldKeyword is an exact-match string field.
	FieldKeyword FieldType = "keyword"
	// FieldText is an analyzed full-text field.
	FieldText FieldType = "text"
	// FieldCompletion is a completion suggester field.
	FieldCompletion FieldType = "completion"
	// FieldShort is a 16-bit integer field.
	FieldShort FieldType = "short"
	// FieldFloat is a 32-bit floating point field.
	FieldFloat FieldType = "float"
	// FieldDenseVector is an indexed embedding vector field.
	FieldDenseVector FieldType = "dense_vector"
)

// Similarity is the vector similarity used by kNN search.
type Similarity string

const (
	// SimilarityCosine compares vector direction only.
	SimilarityCosine Similarity = "cosine"
	// SimilarityDotProduct requires unit-length vectors.
	SimilarityDotProduct Similarity = "dot_product"
	// SimilarityL2 is Euclidean distance.
	SimilarityL2 Similarity = "l2_norm"
)

// Default HNSW parameters.
const (
	DefaultHNSWM              = 16
	DefaultHNSWEFConstruction = 50
)

// IndexField describes a single field in an index mapping.
type IndexField struct {
	Name string
	Type FieldType

	// text options
	Analyzer  string
	SubFields []IndexField

	// dense_vector options
	VectorDims        int
	VectorSimilarity  Similarity
	VectorM           int
	VectorEFConstruct int
}

// TokenFilter is a named, parameterized token filter referenced by analyzers.
type TokenFilter struct {
	Name   string
	Type   string
	Params map[string]any
}

// Analyzer is a custom analysis chain.
type Analyzer struct {
	Name        string
	Tokenizer   string
	CharFilters []string
	Filters     []string
}

// IndexDefinition is a complete index definition: settings, analysis and mapping.
type IndexDefinition struct {
	Name         string
	Shards       int
	Replicas     int
	TokenFilters []TokenFilter
	Analyzers    []Analyzer
	Fields       []IndexField
	// Dynamic allows unmapped source fields to be added to the mapping.
	Dynamic bool
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIndexName(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	if idx.Shards < 0 || idx.Replicas < 0 {
		return errors.New("shards and replicas must be non-negative")
	}

	analyzers := map[string]bool{"standard": true, "whitespace": true, "simple": true, "english": true}
	filters := make(map[string]bool, len(idx.TokenFilters))
	for _, f := range idx.TokenFilters {
		filters[f.Name] = true
	}
	for _, a := range idx.Analyzers {
		if a.Name == "" {
			return errors.New("analyzer name is required")
		}
		if a.Tokenizer == "" {
			return errors.New("analyzer " + a.Name + " requires a tokenizer")
		}
		for _, f := range a.Filters {
			if !filters[f] && !isBuiltinFilter(f) {
				return errors.New("analyzer " + a.Name + " references unknown filter " + f)
			}
		}
		analyzers[a.Name] = true
	}

	return validateFields(idx.Fields, analyzers)
}

func validateFields(fields []IndexField, analyzers map[string]bool) error {
	seen := make(map[string]bool, len(fields))
	for i := range fields {
		f := &fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true

		if f.Analyzer != "" && !analyzers[f.Analyzer] {
			return errors.New("field " + f.Name + " references unknown analyzer " + f.Analyzer)
		}
		if f.Type == FieldDenseVector && f.VectorDims <= 0 {
			return errors.New("dense_vector field " + f.Name + " requires positive dims")
		}
		if len(f.SubFields) > 0 {
			if err := validateFields(f.SubFields, analyzers); err != nil {
				return err
			}
		}
	}
	return nil
}

func isBuiltinFilter(name string) bool {
	switch name {
	case "lowercase", "uppercase", "asciifolding", "trim", "stop", "porter_stem":
		return true
	}
	return false
}

// IsValidIndexName returns true if s is a lowercase index name made of [a-z0-9_.-].
func IsValidIndexName(s string) bool {
	if s == "" || s[0] == '_' || s[0] == '-' || s[0] == '.' {
		return false
	}
	for _, r := range s {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == '-' || r == '.'
		if !isLower && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
