package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
)

// ErrNoEndpoints is returned when a client is built without any fullnode URL.
var ErrNoEndpoints = errors.New("at least one rpc endpoint is required")

// Client speaks JSON-RPC to one Sui fullnode at a time and rotates through
// the configured endpoints on demand. Rotation order is the configuration
// order, wrapping around.
type Client struct {
	endpoints []string

	mu     sync.Mutex
	active int
	conns  []*rpc.Client
}

// NewClient creates a client over the given fullnode endpoints. Connections
// are dialed lazily on first use.
func NewClient(endpoints []string) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	return &Client{
		endpoints: endpoints,
		conns:     make([]*rpc.Client, len(endpoints)),
	}, nil
}

// Call performs one JSON-RPC request against the active endpoint.
func (c *Client) Call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	conn, endpoint, err := c.activeConn(ctx)
	if err != nil {
		return err
	}
	if err := conn.CallContext(ctx, result, method, args...); err != nil {
		return fmt.Errorf("%s via %s: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) activeConn(ctx context.Context) (*rpc.Client, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	endpoint := c.endpoints[c.active]
	if c.conns[c.active] == nil {
		conn, err := rpc.DialContext(ctx, endpoint)
		if err != nil {
			return nil, "", fmt.Errorf("dial %s: %w", endpoint, err)
		}
		c.conns[c.active] = conn
	}
	return c.conns[c.active], endpoint, nil
}

// Failover advances to the next configured endpoint. With a single endpoint
// it is a no-op and the next attempt reuses the same node.
func (c *Client) Failover() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.endpoints) < 2 {
		return
	}
	c.active = (c.active + 1) % len(c.endpoints)
}

// Endpoint reports the endpoint currently in use.
func (c *Client) Endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpoints[c.active]
}

// Close drops every open connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, conn := range c.conns {
		if conn != nil {
			conn.Close()
			c.conns[i] = nil
		}
	}
}
