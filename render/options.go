package render

import "time"

// DefaultResponseTimeout bounds each synchronous request/response call.
const DefaultResponseTimeout = 500 * time.Millisecond

// Config holds the channel configuration.
type Config struct {
	// ResponseTimeout bounds synchronous request/response calls
	ResponseTimeout time.Duration

	// WeightedPixels routes integer drawing calls through the
	// anti-aliased sub-pixel variants
	WeightedPixels bool

	// Logger is used for logging channel events (optional)
	Logger Logger

	// Clock and Sleep are replaced in tests
	Clock func() time.Time
	Sleep func(time.Duration)
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ResponseTimeout: DefaultResponseTimeout,
		WeightedPixels:  true,
		Clock:           time.Now,
		Sleep:           time.Sleep,
	}
}

// Option is a functional option for configuring a Channel.
type Option func(*Config)

// WithResponseTimeout sets the synchronous request/response window.
// Default is 500ms.
func WithResponseTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.ResponseTimeout = d
		}
	}
}

// WithWeightedPixels enables or disables anti-aliased rendering for the
// integer drawing calls. Default is true.
func WithWeightedPixels(enabled bool) Option {
	return func(c *Config) {
		c.WeightedPixels = enabled
	}
}

// WithLogger sets a logger for channel events.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithClock replaces the time source and sleep function, letting tests
// drive the response timeout deterministically.
func WithClock(clock func() time.Time, sleep func(time.Duration)) Option {
	return func(c *Config) {
		if clock != nil {
			c.Clock = clock
		}
		if sleep != nil {
			c.Sleep = sleep
		}
	}
}

// Logger is an optional logging interface for channel events.
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
