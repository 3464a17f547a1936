package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/metrics"
)

// Compile-time check: Store implements db.SearchStore.
var _ db.SearchStore = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch cluster.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	APIKey    string
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Store implements db.SearchStore via go-elasticsearch.
type Store struct {
	client *elasticsearch.Client
}

// NewStore creates an Elasticsearch store. No request is made until first use.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("addresses is required")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping checks cluster connectivity.
func (s *Store) Ping(ctx context.Context) error {
	start := time.Now()
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		observe(db.OpPing, start, err)
		return &db.Error{Op: db.OpPing, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		err := responseError(res)
		observe(db.OpPing, start, err)
		return &db.Error{Op: db.OpPing, Err: err}
	}
	observe(db.OpPing, start, nil)
	return nil
}

// Close is a no-op: the client keeps only pooled HTTP connections.
func (s *Store) Close() {}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := s.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for elasticsearch: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// errorBody is the error envelope returned by Elasticsearch on non-2xx responses.
type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

func responseError(res *esapi.Response) *db.ResponseError {
	re := &db.ResponseError{StatusCode: res.StatusCode}
	if res.Body == nil {
		return re
	}
	var body errorBody
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil {
		re.Type = body.Error.Type
		re.Reason = body.Error.Reason
	}
	return re
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}

func observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.IndexRequestDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
