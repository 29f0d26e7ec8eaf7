// Package db defines the client contract shared by the blocking and pooled
// PostgreSQL clients, the error taxonomy surfaced to callers, and query
// performance tracking. Higher layers (model) depend only on the Client
// interface, which keeps them testable without a live database.
package db

import "context"

// Row is a single result row as returned by the driver: column name to value.
type Row map[string]any

// Client manages one underlying database session and exposes the two
// query-execution primitives the model layer builds on.
//
// Lifecycle: a Client is created disconnected, holds a live session between
// Connect and Disconnect, and may be reconnected after Disconnect. Connect on
// a connected client and Disconnect on a disconnected client are no-ops.
// Every query method returns ErrNotConnected while disconnected.
//
// Concurrency: a Client may be shared by multiple Models on different tables,
// but concurrent calls are only as safe as the underlying session. Both
// shipped implementations serialize access internally (database/sql and
// pgxpool manage their own connections); callers sharing a Client across
// goroutines with a different implementation must arrange mutual exclusion.
type Client interface {
	// Connect establishes the underlying session. It fails with a
	// *ConnectionError on network or authentication failure.
	Connect(ctx context.Context) error

	// Disconnect releases the session. The client always transitions to
	// disconnected, even when the underlying release fails; the failure is
	// still reported as a *ConnectionError.
	Disconnect(ctx context.Context) error

	// Execute runs a statement expected to produce no rows.
	Execute(ctx context.Context, query string, args ...any) error

	// ExecuteAndReturn runs a statement and returns all resulting rows.
	// Zero matching rows yield an empty slice, not an error.
	ExecuteAndReturn(ctx context.Context, query string, args ...any) ([]Row, error)

	// Connected reports whether the client currently holds a session.
	Connected() bool
}
