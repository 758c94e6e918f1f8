package natsclient

import (
	"log/slog"
	"time"
)

type options struct {
	name           string
	maxReconnects  int
	reconnectWait  time.Duration
	connectTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		name:           "workplan",
		maxReconnects:  -1, // reconnect forever
		reconnectWait:  2 * time.Second,
		connectTimeout: 5 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures a Client.
type Option func(*options)

// WithName sets the connection name visible in NATS monitoring.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithMaxReconnects limits reconnection attempts. Negative means unlimited.
func WithMaxReconnects(n int) Option {
	return func(o *options) { o.maxReconnects = n }
}

// WithReconnectWait sets the delay between reconnection attempts.
func WithReconnectWait(d time.Duration) Option {
	return func(o *options) { o.reconnectWait = d }
}

// WithConnectTimeout bounds the initial connection attempt.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) { o.connectTimeout = d }
}

// WithLogger sets the logger used for connection lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}
