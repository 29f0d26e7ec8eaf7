// Package pgpool implements db.Client on pgx's native connection pool. Calls
// suspend the calling goroutine only at network I/O, which makes this the
// client of choice for highly concurrent services; database/sql callers
// should use the postgres package instead.
package pgpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cheesedrawer/dbmodel/config"
	"github.com/cheesedrawer/dbmodel/db"
	"github.com/cheesedrawer/dbmodel/logger"
)

// Client is the pooled client. It owns exactly one *pgxpool.Pool between
// Connect and Disconnect.
type Client struct {
	params  config.ConnectionParameters
	log     logger.Logger
	tracker *db.Tracker

	mu   sync.Mutex
	pool pool
}

// pool abstracts *pgxpool.Pool for tests.
type pool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (commandTag, error)
	Query(ctx context.Context, sql string, args ...any) (rows, error)
	Close()
}

var _ db.Client = (*Client)(nil)

var newPool = func(ctx context.Context, cfg *pgxpool.Config) (pool, error) {
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &pgxPool{pool: p}, nil
}

// NewClient creates a disconnected client. No network activity happens until
// Connect is called.
func NewClient(params config.ConnectionParameters, log logger.Logger) *Client {
	return &Client{
		params:  params,
		log:     log,
		tracker: db.NewTracker(log, db.NewTrackingSettings(0, 0, false)),
	}
}

// Connect creates the connection pool and verifies it with a ping, retried
// every ConnectRetryDelay up to ConnectRetries times. Calling Connect on a
// connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		return nil
	}

	cfg, err := pgxpool.ParseConfig(c.params.DSN())
	if err != nil {
		return db.NewConnectionError("connect", fmt.Errorf("failed to parse config: %w", err))
	}

	if c.params.MaxConns > 0 {
		cfg.MaxConns = int32(c.params.MaxConns)
	}
	cfg.MaxConnLifetime = c.params.ConnMaxLifetime
	cfg.MaxConnIdleTime = c.params.ConnMaxIdleTime

	p, err := newPool(ctx, cfg)
	if err != nil {
		return db.NewConnectionError("connect", err)
	}

	if err := c.pingWithRetry(ctx, p); err != nil {
		p.Close()
		return db.NewConnectionError("connect", err)
	}

	c.log.WithFields(c.params.LogFields()).Info().Msg("Connected to PostgreSQL pool")

	c.pool = p
	return nil
}

func (c *Client) pingWithRetry(ctx context.Context, p pool) error {
	attempts := c.params.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, c.params.ConnectTimeout)
		lastErr = p.Ping(pingCtx)
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

// Disconnect closes the pool and waits for checked-out connections to be
// released. pgxpool's Close cannot fail, so Disconnect only errors when the
// context is already cancelled. Calling Disconnect on a disconnected client
// is a no-op.
func (c *Client) Disconnect(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool == nil {
		return nil
	}

	p := c.pool
	c.pool = nil

	c.log.Info().Msg("Closing PostgreSQL pool")
	p.Close()
	return nil
}

// Connected reports whether the client currently holds a pool.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool != nil
}

func (c *Client) handle() (pool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool == nil {
		return nil, db.ErrNotConnected
	}
	return c.pool, nil
}

// Execute runs a statement expected to produce no rows.
func (c *Client) Execute(ctx context.Context, query string, args ...any) error {
	p, err := c.handle()
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = p.Exec(ctx, query, args...)
	c.tracker.Track(ctx, "EXECUTE", query, args, start, err)

	if err != nil {
		return db.NewQueryError(query, err)
	}
	return nil
}

// ExecuteAndReturn runs a statement and returns all resulting rows.
func (c *Client) ExecuteAndReturn(ctx context.Context, query string, args ...any) ([]db.Row, error) {
	p, err := c.handle()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rs, err := p.Query(ctx, query, args...)
	if err != nil {
		c.tracker.Track(ctx, "QUERY", query, args, start, err)
		return nil, db.NewQueryError(query, err)
	}
	defer rs.Close()

	result, err := collectRows(rs)
	c.tracker.Track(ctx, "QUERY", query, args, start, err)
	if err != nil {
		return nil, db.NewQueryError(query, err)
	}
	return result, nil
}

// collectRows drains pgx rows into column-name keyed maps.
func collectRows(rs rows) ([]db.Row, error) {
	columns := rs.Columns()

	result := make([]db.Row, 0)
	for rs.Next() {
		values, err := rs.Values()
		if err != nil {
			return nil, err
		}

		row := make(db.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result = append(result, row)
	}

	return result, rs.Err()
}
