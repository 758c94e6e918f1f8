// Package natsclient manages the NATS connection used by workplan services:
// the JetStream ObjectStore backend, the request/reply transport surface and
// the notification sender all share one client.
package natsclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/workplan/errors"
)

// Client wraps a NATS connection with lifecycle management.
type Client struct {
	url    string
	opts   options
	logger *slog.Logger

	mu   sync.RWMutex
	conn *nats.Conn
	js   jetstream.JetStream
}

// NewClient creates a client for the given NATS URL. The connection is not
// established until Connect is called.
func NewClient(url string, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, errors.WrapDependency(nil, "natsclient", "NewClient", "url cannot be empty")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		url:    url,
		opts:   o,
		logger: o.logger,
	}, nil
}

// Connect establishes the NATS connection and JetStream context.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && c.conn.IsConnected() {
		return nil
	}

	natsOpts := []nats.Option{
		nats.Name(c.opts.name),
		nats.MaxReconnects(c.opts.maxReconnects),
		nats.ReconnectWait(c.opts.reconnectWait),
		nats.Timeout(c.opts.connectTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				c.logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(c.url, natsOpts...)
	if err != nil {
		return errors.WrapDependency(err, "natsclient", "Connect", "connect to NATS")
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return errors.WrapDependency(err, "natsclient", "Connect", "create JetStream context")
	}

	c.conn = conn
	c.js = js
	c.logger.Info("NATS connected", "url", conn.ConnectedUrl())
	return nil
}

// Close drains and closes the connection.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = c.conn.Drain()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		c.conn.Close()
	}

	c.conn = nil
	c.js = nil
	return nil
}

// IsConnected reports whether the underlying connection is healthy.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && c.conn.IsConnected()
}

// Conn returns the raw NATS connection for subscription management.
func (c *Client) Conn() *nats.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// JetStream returns the JetStream context.
func (c *Client) JetStream() (jetstream.JetStream, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.js == nil {
		return nil, errors.WrapDependency(nil, "natsclient", "JetStream", "client not connected")
	}
	return c.js, nil
}

// ObjectStore returns the named ObjectStore bucket, creating it when absent.
func (c *Client) ObjectStore(ctx context.Context, cfg jetstream.ObjectStoreConfig) (jetstream.ObjectStore, error) {
	js, err := c.JetStream()
	if err != nil {
		return nil, err
	}

	obs, err := js.CreateObjectStore(ctx, cfg)
	if err == nil {
		return obs, nil
	}
	if stderrors.Is(err, jetstream.ErrBucketExists) {
		obs, err = js.ObjectStore(ctx, cfg.Bucket)
		if err == nil {
			return obs, nil
		}
	}
	return nil, errors.WrapDependency(err, "natsclient", "ObjectStore",
		fmt.Sprintf("open bucket %s", cfg.Bucket))
}

// Publish publishes data to a subject.
func (c *Client) Publish(subject string, data []byte) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return errors.WrapDependency(nil, "natsclient", "Publish", "client not connected")
	}
	if err := conn.Publish(subject, data); err != nil {
		return errors.WrapDependency(err, "natsclient", "Publish",
			fmt.Sprintf("publish to %s", subject))
	}
	return nil
}

// Request performs a request/reply exchange with the given timeout.
func (c *Client) Request(subject string, data []byte, timeout time.Duration) ([]byte, error) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return nil, errors.WrapDependency(nil, "natsclient", "Request", "client not connected")
	}
	msg, err := conn.Request(subject, data, timeout)
	if err != nil {
		return nil, errors.WrapDependency(err, "natsclient", "Request",
			fmt.Sprintf("request to %s", subject))
	}
	return msg.Data, nil
}

// Subscribe registers a message handler on a subject.
func (c *Client) Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return nil, errors.WrapDependency(nil, "natsclient", "Subscribe", "client not connected")
	}
	sub, err := conn.Subscribe(subject, handler)
	if err != nil {
		return nil, errors.WrapDependency(err, "natsclient", "Subscribe",
			fmt.Sprintf("subscribe to %s", subject))
	}
	return sub, nil
}
