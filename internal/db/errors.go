package db

import (
	"errors"
	"strconv"
)

// Sentinel errors for database operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op constants name the failing operation for error context.
const (
	OpCreateIndex = "indices.create"
	OpDropIndex   = "indices.delete"
	OpIndexExists = "indices.exists"
	OpSearch      = "search"
	OpBulk        = "bulk"
	OpPing        = "ping"
	OpGet         = "GET"
	OpSet         = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ResponseError is a non-2xx reply from the search engine.
type ResponseError struct {
	StatusCode int
	Type       string
	Reason     string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return "status " + strconv.Itoa(e.StatusCode)
	}
	return "status " + strconv.Itoa(e.StatusCode) + ": " + e.Type + ": " + e.Reason
}
