package search

import (
	"fmt"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/filter"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
)

// kNN tuning. numCandidates bounds per-shard HNSW work and must be >= k.
const (
	KNNK             = 80
	KNNNumCandidates = 120
)

// Suggester settings.
const (
	SuggestName          = "did_you_mean"
	SuggestField         = "title.trigram"
	HighlightPreTag      = "<strong>"
	HighlightPostTag     = "</strong>"
	CompletionName       = "complete"
	CompletionField      = "title_completion"
	CompletionFuzziness  = 2
	CompletionMaxResults = 10
)

// Lexical fields with boosts.
var lexicalFields = []string{"title^2", "overview"}

// Vector field names in the movie index.
const (
	FieldOpenAIEmbedding     = "openai_embedding"
	FieldSymmetricEmbedding  = "sbert_symmetric_embedding"
	FieldAsymmetricEmbedding = "sbert_asymmetric_embedding"
)

// VectorFields maps an embedding type to the dense_vector field it is compared against.
type VectorFields map[domain.EmbeddingType]string

// DefaultVectorFields pairs each sbert type with the field of the same name.
func DefaultVectorFields() VectorFields {
	return VectorFields{
		domain.EmbeddingOpenAI:     FieldOpenAIEmbedding,
		domain.EmbeddingSymmetric:  FieldSymmetricEmbedding,
		domain.EmbeddingAsymmetric: FieldAsymmetricEmbedding,
	}
}

// SwappedVectorFields reproduces the legacy pairing in which symmetric queries
// hit the asymmetric field and vice versa.
func SwappedVectorFields() VectorFields {
	return VectorFields{
		domain.EmbeddingOpenAI:     FieldOpenAIEmbedding,
		domain.EmbeddingSymmetric:  FieldAsymmetricEmbedding,
		domain.EmbeddingAsymmetric: FieldSymmetricEmbedding,
	}
}

// Field returns the vector field for t.
func (f VectorFields) Field(t domain.EmbeddingType) (string, error) {
	name, ok := f[t]
	if !ok {
		return "", fmt.Errorf("%w: no vector field for %q", domain.ErrUnsupportedEmbeddingType, t)
	}
	return name, nil
}

// BuildSearchBody assembles the _search body for req. vector must be non-nil
// exactly when req is semantic.
func BuildSearchBody(req *request.Request, vector []float32, fields VectorFields) (map[string]any, error) {
	filters := BuildFilters(req.Filters())

	body := map[string]any{
		"from":             req.Offset(),
		"size":             req.Size(),
		"track_total_hits": true,
		"query":            buildLexicalQuery(req.Query(), filters),
	}

	if req.Semantic() {
		if len(vector) == 0 {
			return nil, fmt.Errorf("semantic search requires a query vector")
		}
		field, err := fields.Field(req.EmbeddingType())
		if err != nil {
			return nil, err
		}
		body["knn"] = buildKNN(field, vector, filters)
	}

	if req.IncludeSuggestions() && req.HasQueryText() {
		body["suggest"] = buildSuggest(req.Query())
	}

	return body, nil
}

// BuildFilters turns the expression into filter clauses: one term per must
// match, one range per must range, and a single bool.must_not group holding
// every must_not condition. The group is omitted when there are none.
func BuildFilters(expr filter.Expression) []map[string]any {
	clauses := make([]map[string]any, 0, len(expr.Must())+1)
	for _, c := range expr.Must() {
		clauses = append(clauses, conditionClause(c))
	}

	if len(expr.MustNot()) > 0 {
		negated := make([]map[string]any, 0, len(expr.MustNot()))
		for _, c := range expr.MustNot() {
			negated = append(negated, conditionClause(c))
		}
		clauses = append(clauses, map[string]any{
			"bool": map[string]any{"must_not": negated},
		})
	}
	return clauses
}

func conditionClause(c filter.Condition) map[string]any {
	if c.IsRange() {
		bounds := map[string]any{}
		r := c.Range()
		if r.GT() != nil {
			bounds["gt"] = *r.GT()
		}
		if r.GTE() != nil {
			bounds["gte"] = *r.GTE()
		}
		if r.LT() != nil {
			bounds["lt"] = *r.LT()
		}
		if r.LTE() != nil {
			bounds["lte"] = *r.LTE()
		}
		return map[string]any{"range": map[string]any{c.Key(): bounds}}
	}
	return map[string]any{"term": map[string]any{c.Key(): c.Match()}}
}

// buildLexicalQuery requires every query term to match; an empty query matches all movies.
func buildLexicalQuery(text string, filters []map[string]any) map[string]any {
	b := map[string]any{
		"must": []map[string]any{{
			"multi_match": map[string]any{
				"query":            text,
				"fields":           lexicalFields,
				"operator":         "and",
				"zero_terms_query": "all",
			},
		}},
	}
	if len(filters) > 0 {
		b["filter"] = filters
	}
	return map[string]any{"bool": b}
}

func buildKNN(field string, vector []float32, filters []map[string]any) map[string]any {
	knn := map[string]any{
		"field":          field,
		"query_vector":   vector,
		"k":              KNNK,
		"num_candidates": KNNNumCandidates,
	}
	if len(filters) > 0 {
		knn["filter"] = filters
	}
	return knn
}

func buildSuggest(text string) map[string]any {
	return map[string]any{
		SuggestName: map[string]any{
			"text": text,
			"phrase": map[string]any{
				"field": SuggestField,
				"collate": map[string]any{
					"query": map[string]any{
						"source": map[string]any{
							"match": map[string]any{
								"title": map[string]any{
									"query":    "{{suggestion}}",
									"operator": "and",
								},
							},
						},
					},
				},
				"highlight": map[string]any{
					"pre_tag":  HighlightPreTag,
					"post_tag": HighlightPostTag,
				},
			},
		},
	}
}

// BuildCompletionBody assembles a fuzzy completion-suggester request for prefix.
func BuildCompletionBody(prefix string) map[string]any {
	return map[string]any{
		"_source": false,
		"size":    0,
		"suggest": map[string]any{
			CompletionName: map[string]any{
				"prefix": prefix,
				"completion": map[string]any{
					"field": CompletionField,
					"size":  CompletionMaxResults,
					"fuzzy": map[string]any{
						"fuzziness": CompletionFuzziness,
					},
				},
			},
		},
	}
}
