package elastic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/kailas-cloud/moviesearch/internal/db"
)

// Bulk indexer tuning.
const (
	bulkWorkers       = 2
	bulkFlushBytes    = 5 << 20
	bulkFlushInterval = 5 * time.Second
	maxBulkErrors     = 10
)

// NewBulkWriter starts a bulk session backed by esutil.BulkIndexer.
func (s *Store) NewBulkWriter(_ context.Context, index string) (db.BulkWriter, error) {
	w := &bulkWriter{}
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        s.client,
		Index:         index,
		NumWorkers:    bulkWorkers,
		FlushBytes:    bulkFlushBytes,
		FlushInterval: bulkFlushInterval,
		OnError: func(_ context.Context, err error) {
			w.record(err)
		},
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpBulk, Err: err}
	}
	w.bi = bi
	return w, nil
}

type bulkWriter struct {
	bi esutil.BulkIndexer

	mu   sync.Mutex
	errs []error
}

func (w *bulkWriter) Add(ctx context.Context, doc db.Document) error {
	err := w.bi.Add(ctx, esutil.BulkIndexerItem{
		Action:     "index",
		DocumentID: doc.ID,
		Body:       bytes.NewReader(doc.Body),
		OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			if err != nil {
				w.record(fmt.Errorf("document %s: %w", item.DocumentID, err))
				return
			}
			w.record(fmt.Errorf("document %s: %s: %s", item.DocumentID, res.Error.Type, res.Error.Reason))
		},
	})
	if err != nil {
		return &db.Error{Op: db.OpBulk, Err: err}
	}
	return nil
}

// Close flushes pending documents. Per-document failures are counted in the stats;
// the returned error joins the first few of them.
func (w *bulkWriter) Close(ctx context.Context) (db.BulkStats, error) {
	if err := w.bi.Close(ctx); err != nil {
		return db.BulkStats{}, &db.Error{Op: db.OpBulk, Err: err}
	}
	st := w.bi.Stats()
	stats := db.BulkStats{
		Added:   st.NumAdded,
		Indexed: st.NumIndexed + st.NumCreated + st.NumUpdated,
		Failed:  st.NumFailed,
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.errs) > 0 {
		return stats, &db.Error{Op: db.OpBulk, Err: errors.Join(w.errs...)}
	}
	return stats, nil
}

func (w *bulkWriter) record(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.errs) < maxBulkErrors {
		w.errs = append(w.errs, err)
	}
}
