package elastic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kailas-cloud/moviesearch/internal/db"
)

// Search posts a raw _search body to the index and returns the raw response body.
// Non-2xx replies are returned as *db.ResponseError wrapped in *db.Error.
func (s *Store) Search(ctx context.Context, index string, body []byte) ([]byte, error) {
	start := time.Now()
	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		observe(db.OpSearch, start, err)
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		re := responseError(res)
		observe(db.OpSearch, start, re)
		return nil, &db.Error{Op: db.OpSearch, Err: re}
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		observe(db.OpSearch, start, err)
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("read body: %w", err)}
	}
	observe(db.OpSearch, start, nil)
	return data, nil
}
