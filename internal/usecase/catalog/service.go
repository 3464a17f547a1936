package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/metrics"
	repocatalog "github.com/kailas-cloud/moviesearch/internal/repository/catalog"
)

// DefaultProgressEvery is how many queued documents pass between progress logs.
const DefaultProgressEvery = 500

// Stats summarizes one load.
type Stats struct {
	Read    int
	Skipped int
	Indexed uint64
	Failed  uint64
}

// Service creates the movie index and bulk loads records into it.
type Service struct {
	indexes       IndexManager
	bulk          BulkOpener
	index         string
	progressEvery int
	logger        *zap.Logger
}

// New creates a catalog service for one index.
func New(indexes IndexManager, bulk BulkOpener, index string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		indexes:       indexes,
		bulk:          bulk,
		index:         index,
		progressEvery: DefaultProgressEvery,
		logger:        logger,
	}
}

// EnsureIndex creates the movie index. With drop, an existing index is deleted first;
// without it, an existing index is left untouched. Reports whether an index was created.
func (s *Service) EnsureIndex(ctx context.Context, drop bool) (bool, error) {
	def, err := repocatalog.Definition(s.index)
	if err != nil {
		return false, fmt.Errorf("index definition: %w", err)
	}

	exists, err := s.indexes.IndexExists(ctx, s.index)
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	if exists {
		if !drop {
			s.logger.Info("Index already exists", zap.String("index", s.index))
			return false, nil
		}
		if err := s.indexes.DropIndex(ctx, s.index); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return false, fmt.Errorf("drop index: %w", err)
		}
		s.logger.Info("Index dropped", zap.String("index", s.index))
	}

	if err := s.indexes.CreateIndex(ctx, def); err != nil {
		return false, fmt.Errorf("create index: %w", err)
	}
	s.logger.Info("Index created", zap.String("index", s.index), zap.Stringer("mapping", def))
	return true, nil
}

// Load streams every record of src into the index. Records failing validation are
// logged and skipped; per-document index failures are counted, not fatal.
func (s *Service) Load(ctx context.Context, src Source) (Stats, error) {
	w, err := s.bulk.NewBulkWriter(ctx, s.index)
	if err != nil {
		return Stats{}, fmt.Errorf("open bulk writer: %w", err)
	}

	var st Stats
	queued := 0
	scanErr := src.Each(ctx, func(r movie.Record) error {
		st.Read++
		doc, err := repocatalog.Encode(&r)
		if err != nil {
			st.Skipped++
			metrics.CatalogDocumentsTotal.WithLabelValues("skipped").Inc()
			s.logger.Warn("Skipping record", zap.Int64("item_id", r.ItemID), zap.Error(err))
			return nil
		}
		if err := w.Add(ctx, doc); err != nil {
			return fmt.Errorf("queue item %d: %w", r.ItemID, err)
		}
		queued++
		if queued%s.progressEvery == 0 {
			s.logger.Info("Uploaded movies", zap.Int("count", queued), zap.String("index", s.index))
		}
		return nil
	})

	bulkStats, closeErr := w.Close(ctx)
	st.Indexed = bulkStats.Indexed
	st.Failed = bulkStats.Failed
	metrics.CatalogDocumentsTotal.WithLabelValues("indexed").Add(float64(bulkStats.Indexed))
	metrics.CatalogDocumentsTotal.WithLabelValues("failed").Add(float64(bulkStats.Failed))

	if scanErr != nil {
		return st, fmt.Errorf("read catalog: %w", scanErr)
	}
	if closeErr != nil {
		if st.Failed > 0 {
			s.logger.Warn("Some documents failed to index", zap.Uint64("failed", st.Failed), zap.Error(closeErr))
			return st, nil
		}
		return st, fmt.Errorf("flush bulk writer: %w", closeErr)
	}

	s.logger.Info("Catalog loaded",
		zap.String("index", s.index),
		zap.Int("read", st.Read),
		zap.Int("skipped", st.Skipped),
		zap.Uint64("indexed", st.Indexed),
	)
	return st, nil
}
