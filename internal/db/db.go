package db

import (
	"context"
	"time"
)

// SearchStore is the search engine facade combining all index sub-interfaces.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type SearchStore interface {
	Pinger
	IndexManager
	Searcher
	DocumentIndexer
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// CacheStore is the key-value cache facade.
type CacheStore interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs a raw search request body against an index and returns the raw response body.
type Searcher interface {
	Search(ctx context.Context, index string, body []byte) ([]byte, error)
}

// DocumentIndexer opens bulk write sessions.
type DocumentIndexer interface {
	NewBulkWriter(ctx context.Context, index string) (BulkWriter, error)
}

// BulkWriter buffers documents and flushes them in the background.
// Close flushes what is left and reports totals.
type BulkWriter interface {
	Add(ctx context.Context, doc Document) error
	Close(ctx context.Context) (BulkStats, error)
}
