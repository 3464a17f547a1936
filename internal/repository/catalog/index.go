// Package catalog maps movie records onto the search index: its mapping,
// its source documents and the parquet files they are loaded from.
package catalog

import (
	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/repository/search"
)

// Analyzer and filter names registered on the movie index.
const (
	DefaultAnalyzer = "default_analyzer"
	TrigramAnalyzer = "trigram"

	filterPossessive = "english_possessive_stemmer"
	filterStopwords  = "english_stopwords"
	filterStemmer    = "english_stemmer"
	filterShingle    = "shingle_filter"
)

// Definition returns the movie index mapping.
func Definition(name string) (*db.IndexDefinition, error) {
	//nolint:wrapcheck // builder errors already name the offending part
	return db.NewIndex(name).
		Shards(1, 0).
		TokenFilter(filterStopwords, "stop", map[string]any{"stopwords": "_english_"}).
		TokenFilter(filterStemmer, "stemmer", map[string]any{"language": "english"}).
		TokenFilter(filterPossessive, "stemmer", map[string]any{"language": "possessive_english"}).
		TokenFilter(filterShingle, "shingle", map[string]any{"min_shingle_size": 2, "max_shingle_size": 3}).
		Analyzer(DefaultAnalyzer, "whitespace", []string{"html_strip"},
			filterPossessive, "lowercase", filterStopwords, filterStemmer).
		Analyzer(TrigramAnalyzer, "standard", nil, filterShingle).
		Keyword("tmdbId", "item_id").
		TextWithSubfield("title", DefaultAnalyzer, "trigram", TrigramAnalyzer).
		Completion(search.CompletionField).
		Short("year", "runtime").
		Float("vote_average", "popularity").
		Text("overview", DefaultAnalyzer).
		Keyword("genres", "director", "protagonists", "backdrop_path", "poster_path").
		DenseVector(search.FieldOpenAIEmbedding, movie.OpenAIDimensions, db.SimilarityCosine,
			db.DefaultHNSWM, db.DefaultHNSWEFConstruction).
		DenseVector(search.FieldSymmetricEmbedding, movie.SBERTDimensions, db.SimilarityCosine,
			db.DefaultHNSWM, db.DefaultHNSWEFConstruction).
		DenseVector(search.FieldAsymmetricEmbedding, movie.SBERTDimensions, db.SimilarityDotProduct,
			db.DefaultHNSWM, db.DefaultHNSWEFConstruction).
		Dynamic(false).
		Build()
}
