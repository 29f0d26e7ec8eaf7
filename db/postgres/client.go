// Package postgres implements the blocking db.Client on top of database/sql
// with the pgx stdlib driver. Each call occupies the calling goroutine until
// the database responds; cancellation is honoured through the context.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/cheesedrawer/dbmodel/config"
	"github.com/cheesedrawer/dbmodel/db"
	"github.com/cheesedrawer/dbmodel/logger"
)

// Client is the blocking client. It owns exactly one *sql.DB handle between
// Connect and Disconnect.
type Client struct {
	params  config.ConnectionParameters
	log     logger.Logger
	tracker *db.Tracker

	mu  sync.Mutex
	dbh *sql.DB
}

var _ db.Client = (*Client)(nil)

// Hooks for tests.
var (
	openDB = func(cfg *pgx.ConnConfig) *sql.DB {
		return stdlib.OpenDB(*cfg)
	}
	pingDB = func(ctx context.Context, dbh *sql.DB) error {
		return dbh.PingContext(ctx)
	}
)

// NewClient creates a disconnected client. No network activity happens until
// Connect is called.
func NewClient(params config.ConnectionParameters, log logger.Logger) *Client {
	return &Client{
		params:  params,
		log:     log,
		tracker: db.NewTracker(log, db.NewTrackingSettings(0, 0, false)),
	}
}

// Connect establishes the session. A failed ping is retried every
// ConnectRetryDelay up to ConnectRetries times before giving up. Calling
// Connect on a connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dbh != nil {
		return nil
	}

	pgxConfig, err := pgx.ParseConfig(c.params.DSN())
	if err != nil {
		return db.NewConnectionError("connect", fmt.Errorf("failed to parse config: %w", err))
	}

	dbh := openDB(pgxConfig)
	dbh.SetMaxOpenConns(c.params.MaxConns)
	dbh.SetMaxIdleConns(c.params.MaxIdleConns)
	dbh.SetConnMaxLifetime(c.params.ConnMaxLifetime)
	dbh.SetConnMaxIdleTime(c.params.ConnMaxIdleTime)

	if err := c.pingWithRetry(ctx, dbh); err != nil {
		if closeErr := dbh.Close(); closeErr != nil {
			c.log.Error().Err(closeErr).Msg("Failed to close connection after ping failure")
		}
		return db.NewConnectionError("connect", err)
	}

	c.log.WithFields(c.params.LogFields()).Info().Msg("Connected to PostgreSQL database")

	c.dbh = dbh
	return nil
}

func (c *Client) pingWithRetry(ctx context.Context, dbh *sql.DB) error {
	attempts := c.params.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, c.params.ConnectTimeout)
		lastErr = pingDB(pingCtx, dbh)
		cancel()

		if lastErr == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		c.log.Warn().
			Err(lastErr).
			Int("attempt", attempt).
			Dur("retry_in", c.params.ConnectRetryDelay).
			Msg("Connection attempt failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.params.ConnectRetryDelay):
		}
	}

	return fmt.Errorf("failed to ping database after %d attempt(s): %w", attempts, lastErr)
}

// Disconnect releases the session. The client transitions to disconnected
// even when the close fails; the failure is still reported. Calling
// Disconnect on a disconnected client is a no-op.
func (c *Client) Disconnect(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dbh == nil {
		return nil
	}

	dbh := c.dbh
	c.dbh = nil

	c.log.Info().Msg("Closing PostgreSQL database connection")
	if err := dbh.Close(); err != nil {
		return db.NewConnectionError("disconnect", err)
	}
	return nil
}

// Connected reports whether the client currently holds a session.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dbh != nil
}

func (c *Client) handle() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dbh == nil {
		return nil, db.ErrNotConnected
	}
	return c.dbh, nil
}

// Execute runs a statement expected to produce no rows.
func (c *Client) Execute(ctx context.Context, query string, args ...any) error {
	dbh, err := c.handle()
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = dbh.ExecContext(ctx, query, args...)
	c.tracker.Track(ctx, "EXECUTE", query, args, start, err)

	if err != nil {
		return db.NewQueryError(query, err)
	}
	return nil
}

// ExecuteAndReturn runs a statement and returns all resulting rows.
func (c *Client) ExecuteAndReturn(ctx context.Context, query string, args ...any) ([]db.Row, error) {
	dbh, err := c.handle()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := dbh.QueryContext(ctx, query, args...)
	if err != nil {
		c.tracker.Track(ctx, "QUERY", query, args, start, err)
		return nil, db.NewQueryError(query, err)
	}
	defer rows.Close()

	result, err := collectRows(rows)
	c.tracker.Track(ctx, "QUERY", query, args, start, err)
	if err != nil {
		return nil, db.NewQueryError(query, err)
	}
	return result, nil
}

// collectRows drains rows into column-name keyed maps.
func collectRows(rows *sql.Rows) ([]db.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]db.Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(db.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result = append(result, row)
	}

	return result, rows.Err()
}
