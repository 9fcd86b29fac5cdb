package usbserial

import "time"

// Config holds the configuration for a serial session. Data bits, stop
// bits and parity are fixed at 8N1 by the session contract; only the
// baud rate and local buffer sizing are configurable.
type Config struct {
	BaudRate       int
	ReadBufferSize int           // default maxLen for session helpers
	DefaultTimeout time.Duration // fallback when a caller passes no timeout
}

// Option is a functional option for configuring a session
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:       9600,
		ReadBufferSize: 1024,
		DefaultTimeout: time.Second,
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if !IsSupportedBaudRate(rate) {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithReadBufferSize sets the default read buffer size
func WithReadBufferSize(size int) Option {
	return func(c *Config) error {
		if size <= 0 {
			return ErrInvalidConfig
		}
		c.ReadBufferSize = size
		return nil
	}
}

// WithDefaultTimeout sets the fallback I/O timeout
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return ErrInvalidConfig
		}
		c.DefaultTimeout = timeout
		return nil
	}
}
