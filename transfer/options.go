package transfer

import (
	"time"

	"github.com/featherforge/arclink/protocol"
)

// Default transfer parameters.
const (
	// DefaultMaxRetries is the number of consecutive retries allowed for
	// one fragment before the session fails.
	DefaultMaxRetries = 5

	// DefaultAckTimeout is how long the sender waits for a fragment
	// acknowledgment before retrying.
	DefaultAckTimeout = 100 * time.Millisecond

	// DefaultIdleTimeout is how long the receiver keeps a session alive
	// with no fragment activity before abandoning it.
	DefaultIdleTimeout = 5 * time.Second
)

// Sender writes one packet to the link. *link.Endpoint satisfies it.
type Sender interface {
	Send(t protocol.MessageType, payload []byte) error
}

// Config holds the transfer configuration.
type Config struct {
	// FragmentSize is the data byte count per fragment
	FragmentSize int

	// MaxRetries is the consecutive retry budget per fragment
	MaxRetries int

	// AckTimeout is the sender's per-fragment acknowledgment wait
	AckTimeout time.Duration

	// IdleTimeout is the receiver's session inactivity limit
	IdleTimeout time.Duration

	// Observer receives progress and completion callbacks (optional)
	Observer TransferObserver

	// Logger is used for logging transfer events (optional)
	Logger Logger
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		FragmentSize: protocol.DefaultFragmentSize,
		MaxRetries:   DefaultMaxRetries,
		AckTimeout:   DefaultAckTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}
}

// Option is a functional option for configuring a Manager or Receiver.
type Option func(*Config)

// WithFragmentSize sets the data byte count per fragment. Values must
// leave room for the fragment header within the frame payload limit.
func WithFragmentSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= protocol.MaxPayloadSize-protocol.FileFragmentHeaderSize {
			c.FragmentSize = size
		}
	}
}

// WithMaxRetries sets the consecutive retry budget per fragment.
func WithMaxRetries(retries int) Option {
	return func(c *Config) {
		if retries >= 0 {
			c.MaxRetries = retries
		}
	}
}

// WithAckTimeout sets the sender's per-fragment acknowledgment wait.
func WithAckTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.AckTimeout = d
		}
	}
}

// WithIdleTimeout sets the receiver's session inactivity limit.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.IdleTimeout = d
		}
	}
}

// WithObserver sets the progress/completion observer.
//
// Example:
//
//	mgr := transfer.NewManager(ep, transfer.WithObserver(myObserver))
func WithObserver(o TransferObserver) Option {
	return func(c *Config) {
		c.Observer = o
	}
}

// WithLogger sets a logger for transfer events.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// Logger is an optional logging interface for transfer events.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
