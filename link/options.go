package link

import "time"

// Default scheduling parameters.
const (
	// DefaultFrameRate is the periodic send cadence in frames per second.
	DefaultFrameRate = 60

	// DefaultDrainBudget is the maximum number of inbound packet decodes
	// attempted per tick, bounding the time the tick spends receiving.
	DefaultDrainBudget = 5
)

// Config holds the endpoint configuration.
type Config struct {
	// FrameRate is the periodic send cadence in frames per second
	FrameRate int

	// DrainBudget caps inbound packet decodes per tick
	DrainBudget int

	// Logger is used for logging link events (optional)
	Logger Logger

	// Clock supplies the current time; replaced in tests
	Clock func() time.Time

	// HeaderTimeout and BodyTimeout bound mid-frame reads
	HeaderTimeout time.Duration
	BodyTimeout   time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		FrameRate:     DefaultFrameRate,
		DrainBudget:   DefaultDrainBudget,
		Clock:         time.Now,
		HeaderTimeout: 20 * time.Millisecond,
		BodyTimeout:   20 * time.Millisecond,
	}
}

// Option is a functional option for configuring an Endpoint.
type Option func(*Config)

// WithFrameRate sets the periodic send cadence in frames per second.
// Default is 60.
//
// Example:
//
//	ep := link.NewCoordinator(port, buf, frames, link.WithFrameRate(30))
func WithFrameRate(fps int) Option {
	return func(c *Config) {
		if fps > 0 {
			c.FrameRate = fps
		}
	}
}

// WithDrainBudget sets the maximum inbound packet decodes per tick.
// Default is 5.
func WithDrainBudget(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.DrainBudget = n
		}
	}
}

// WithLogger sets a logger for link events.
//
// Example:
//
//	ep := link.NewCoordinator(port, buf, frames, link.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithClock replaces the time source, letting tests drive the schedule.
func WithClock(clock func() time.Time) Option {
	return func(c *Config) {
		if clock != nil {
			c.Clock = clock
		}
	}
}

// WithReadTimeouts sets the header and body read windows of the decoder.
func WithReadTimeouts(header, body time.Duration) Option {
	return func(c *Config) {
		c.HeaderTimeout = header
		c.BodyTimeout = body
	}
}

// Logger is an optional logging interface for link events.
// This allows integration with any logging framework.
//
// Example with log/slog:
//
//	type SlogLogger struct{ L *slog.Logger }
//	func (l *SlogLogger) Debug(msg string, kv ...interface{}) { l.L.Debug(msg, kv...) }
//	func (l *SlogLogger) Info(msg string, kv ...interface{})  { l.L.Info(msg, kv...) }
//	func (l *SlogLogger) Error(msg string, kv ...interface{}) { l.L.Error(msg, kv...) }
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
