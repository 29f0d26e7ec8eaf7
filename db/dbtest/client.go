// Package dbtest provides an in-memory fake db.Client for unit tests. It
// records every query with its bound parameters and replays scripted results,
// so model-layer tests can assert on generated SQL without a database.
package dbtest

import (
	"context"
	"sync"

	"github.com/cheesedrawer/dbmodel/db"
)

// Call records one Execute or ExecuteAndReturn invocation.
type Call struct {
	Op    string // "EXECUTE" or "QUERY"
	Query string
	Args  []any
}

type scriptedResult struct {
	rows []db.Row
	err  error
}

// Client is a fake db.Client. The zero value is disconnected; NewClient
// returns one already connected since that is what most tests want.
type Client struct {
	mu        sync.Mutex
	connected bool

	results    []scriptedResult
	connectErr error
	disconnErr error
	calls      []Call
}

var _ db.Client = (*Client)(nil)

// NewClient returns a connected fake client with no scripted results.
// Unscripted queries succeed and return no rows.
func NewClient() *Client {
	return &Client{connected: true}
}

// NewDisconnectedClient returns a fake client in the disconnected state.
func NewDisconnectedClient() *Client {
	return &Client{}
}

// QueueRows scripts the result of the next ExecuteAndReturn call.
func (c *Client) QueueRows(rows ...db.Row) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, scriptedResult{rows: rows})
	return c
}

// QueueError scripts a failure for the next Execute or ExecuteAndReturn call.
func (c *Client) QueueError(err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, scriptedResult{err: err})
	return c
}

// FailConnect makes subsequent Connect calls fail with err.
func (c *Client) FailConnect(err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectErr = err
	return c
}

// FailDisconnect makes subsequent Disconnect calls report err. The client
// still transitions to disconnected, matching real client behaviour.
func (c *Client) FailDisconnect(err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnErr = err
	return c
}

// Connect transitions to connected unless a failure is scripted.
func (c *Client) Connect(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connectErr != nil {
		return db.NewConnectionError("connect", c.connectErr)
	}
	c.connected = true
	return nil
}

// Disconnect transitions to disconnected, reporting any scripted failure.
func (c *Client) Disconnect(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.disconnErr != nil {
		return db.NewConnectionError("disconnect", c.disconnErr)
	}
	return nil
}

// Connected reports the fake connection state.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Execute records the call and replays the next scripted error, if any.
func (c *Client) Execute(_ context.Context, query string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return db.ErrNotConnected
	}

	c.calls = append(c.calls, Call{Op: "EXECUTE", Query: query, Args: args})

	res := c.pop()
	if res.err != nil {
		return db.NewQueryError(query, res.err)
	}
	return nil
}

// ExecuteAndReturn records the call and replays the next scripted result.
func (c *Client) ExecuteAndReturn(_ context.Context, query string, args ...any) ([]db.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, db.ErrNotConnected
	}

	c.calls = append(c.calls, Call{Op: "QUERY", Query: query, Args: args})

	res := c.pop()
	if res.err != nil {
		return nil, db.NewQueryError(query, res.err)
	}
	if res.rows == nil {
		return []db.Row{}, nil
	}
	return res.rows, nil
}

func (c *Client) pop() scriptedResult {
	if len(c.results) == 0 {
		return scriptedResult{}
	}
	res := c.results[0]
	c.results = c.results[1:]
	return res
}

// Calls returns a copy of all recorded calls in issue order.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	calls := make([]Call, len(c.calls))
	copy(calls, c.calls)
	return calls
}

// LastCall returns the most recent call, if any.
func (c *Client) LastCall() (Call, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return Call{}, false
	}
	return c.calls[len(c.calls)-1], true
}

// CallCount returns the number of recorded calls.
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Reset clears recorded calls and scripted results, keeping connection state.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
	c.results = nil
}
