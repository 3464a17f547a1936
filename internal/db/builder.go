package db

import (
	"strconv"
	"strings"
)

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition with one shard and no replicas.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{
			Name:   name,
			Shards: 1,
		},
	}
}

// Shards sets the primary shard and replica counts.
func (b *IndexBuilder) Shards(shards, replicas int) *IndexBuilder {
	b.def.Shards = shards
	b.def.Replicas = replicas
	return b
}

// Dynamic toggles dynamic mapping of unknown source fields.
func (b *IndexBuilder) Dynamic(enabled bool) *IndexBuilder {
	b.def.Dynamic = enabled
	return b
}

// TokenFilter registers a custom token filter.
func (b *IndexBuilder) TokenFilter(name, typ string, params map[string]any) *IndexBuilder {
	b.def.TokenFilters = append(b.def.TokenFilters, TokenFilter{Name: name, Type: typ, Params: params})
	return b
}

// Analyzer registers a custom analyzer.
func (b *IndexBuilder) Analyzer(name, tokenizer string, charFilters []string, filters ...string) *IndexBuilder {
	b.def.Analyzers = append(b.def.Analyzers, Analyzer{
		Name:        name,
		Tokenizer:   tokenizer,
		CharFilters: charFilters,
		Filters:     filters,
	})
	return b
}

// Keyword adds keyword fields.
func (b *IndexBuilder) Keyword(names ...string) *IndexBuilder {
	for _, name := range names {
		b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: FieldKeyword})
	}
	return b
}

// Short adds short integer fields.
func (b *IndexBuilder) Short(names ...string) *IndexBuilder {
	for _, name := range names {
		b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: FieldShort})
	}
	return b
}

// Float adds float fields.
func (b *IndexBuilder) Float(names ...string) *IndexBuilder {
	for _, name := range names {
		b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: FieldFloat})
	}
	return b
}

// Text adds an analyzed text field. An empty analyzer uses the index default.
func (b *IndexBuilder) Text(name, analyzer string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: FieldText, Analyzer: analyzer})
	return b
}

// TextWithSubfield adds a text field plus one text multi-field analyzed differently.
func (b *IndexBuilder) TextWithSubfield(name, analyzer, sub, subAnalyzer string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:      name,
		Type:      FieldText,
		Analyzer:  analyzer,
		SubFields: []IndexField{{Name: sub, Type: FieldText, Analyzer: subAnalyzer}},
	})
	return b
}

// Completion adds a completion suggester field.
func (b *IndexBuilder) Completion(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: FieldCompletion})
	return b
}

// DenseVector adds an HNSW-indexed dense_vector field.
func (b *IndexBuilder) DenseVector(name string, dims int, sim Similarity, m, efConstruct int) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:              name,
		Type:              FieldDenseVector,
		VectorDims:        dims,
		VectorSimilarity:  sim,
		VectorM:           m,
		VectorEFConstruct: efConstruct,
	})
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a compact debug representation of the mapping.
func (idx *IndexDefinition) String() string {
	parts := []string{
		"PUT", idx.Name,
		"shards=" + strconv.Itoa(idx.Shards),
		"replicas=" + strconv.Itoa(idx.Replicas),
	}
	for i := range idx.Fields {
		f := &idx.Fields[i]
		desc := f.Name + ":" + string(f.Type)
		if f.Type == FieldDenseVector {
			desc += "(" + strconv.Itoa(f.VectorDims) + "," + string(f.VectorSimilarity) + ")"
		}
		parts = append(parts, desc)
	}
	return strings.Join(parts, " ")
}
