package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kailas-cloud/moviesearch/internal/db"
)

// CreateIndex creates an index with settings, analysis and mapping from the definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid index definition: %w", err)
	}
	body, err := json.Marshal(buildIndexBody(def))
	if err != nil {
		return fmt.Errorf("marshal index body: %w", err)
	}

	start := time.Now()
	res, err := s.client.Indices.Create(
		def.Name,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		observe(db.OpCreateIndex, start, err)
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		re := responseError(res)
		observe(db.OpCreateIndex, start, re)
		if re.Type == "resource_already_exists_exception" {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: re}
	}
	observe(db.OpCreateIndex, start, nil)
	return nil
}

// DropIndex deletes an index by name.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	start := time.Now()
	res, err := s.client.Indices.Delete(
		[]string{name},
		s.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		observe(db.OpDropIndex, start, err)
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	defer drain(res)

	if res.StatusCode == http.StatusNotFound {
		observe(db.OpDropIndex, start, nil)
		return db.ErrIndexNotFound
	}
	if res.IsError() {
		re := responseError(res)
		observe(db.OpDropIndex, start, re)
		return &db.Error{Op: db.OpDropIndex, Err: re}
	}
	observe(db.OpDropIndex, start, nil)
	return nil
}

// IndexExists probes index existence with a HEAD request; 404 means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	res, err := s.client.Indices.Exists(
		[]string{name},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		observe(db.OpIndexExists, start, err)
		return false, &db.Error{Op: db.OpIndexExists, Err: err}
	}
	defer drain(res)
	observe(db.OpIndexExists, start, nil)

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexExists, Err: &db.ResponseError{StatusCode: res.StatusCode}}
	}
}

func buildIndexBody(def *db.IndexDefinition) map[string]any {
	settings := map[string]any{
		"number_of_shards":   def.Shards,
		"number_of_replicas": def.Replicas,
	}

	if len(def.Analyzers) > 0 || len(def.TokenFilters) > 0 {
		filters := make(map[string]any, len(def.TokenFilters))
		for _, f := range def.TokenFilters {
			mapping := map[string]any{"type": f.Type}
			for k, v := range f.Params {
				mapping[k] = v
			}
			filters[f.Name] = mapping
		}

		analyzers := make(map[string]any, len(def.Analyzers))
		for _, a := range def.Analyzers {
			mapping := map[string]any{
				"type":      "custom",
				"tokenizer": a.Tokenizer,
			}
			if len(a.CharFilters) > 0 {
				mapping["char_filter"] = a.CharFilters
			}
			if len(a.Filters) > 0 {
				mapping["filter"] = a.Filters
			}
			analyzers[a.Name] = mapping
		}

		settings["analysis"] = map[string]any{
			"filter":   filters,
			"analyzer": analyzers,
		}
	}

	return map[string]any{
		"settings": settings,
		"mappings": map[string]any{
			"dynamic":    def.Dynamic,
			"properties": buildProperties(def.Fields),
		},
	}
}

func buildProperties(fields []db.IndexField) map[string]any {
	props := make(map[string]any, len(fields))
	for i := range fields {
		f := &fields[i]
		mapping := map[string]any{"type": string(f.Type)}

		switch f.Type {
		case db.FieldText:
			if f.Analyzer != "" {
				mapping["analyzer"] = f.Analyzer
			}
			if len(f.SubFields) > 0 {
				mapping["fields"] = buildProperties(f.SubFields)
			}
		case db.FieldDenseVector:
			mapping["dims"] = f.VectorDims
			mapping["index"] = true
			mapping["similarity"] = string(f.VectorSimilarity)
			m, ef := f.VectorM, f.VectorEFConstruct
			if m <= 0 {
				m = db.DefaultHNSWM
			}
			if ef <= 0 {
				ef = db.DefaultHNSWEFConstruction
			}
			mapping["index_options"] = map[string]any{
				"type":            "hnsw",
				"m":               m,
				"ef_construction": ef,
			}
		}

		props[f.Name] = mapping
	}
	return props
}
