package db

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by clients and the model layer.
// Check with errors.Is.
var (
	// ErrNotConnected is returned when a query method is invoked while the
	// client is disconnected. Recoverable by calling Connect.
	ErrNotConnected = errors.New("client is not connected")

	// ErrMultipleResults is returned when a query targeting one identifier
	// matches more than one row, which indicates a broken table invariant.
	ErrMultipleResults = errors.New("multiple rows matched a single identifier")
)

// ConnectionError reports a failed connect or disconnect. It wraps the
// underlying driver error for diagnostics.
type ConnectionError struct {
	Op  string // "connect" or "disconnect"
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database %s failed: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError wraps err as a ConnectionError for the given operation.
func NewConnectionError(op string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Err: err}
}

// QueryError reports a statement rejected by the store (constraint violation,
// malformed SQL, type mismatch). The original driver error is preserved.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError wraps err as a QueryError for the given query text.
func NewQueryError(query string, err error) *QueryError {
	return &QueryError{Query: query, Err: err}
}
