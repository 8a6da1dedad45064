package matrix

import "go.uber.org/zap"

// Config holds Matrix settings
type Config struct {
	// VerifyChecksum rejects query replies with a bad trailing checksum or
	// the wrong length. Off by default.
	VerifyChecksum bool

	// Logger receives frame-level debug logs (optional)
	Logger *zap.Logger
}

// Option is a functional option for configuring a Matrix
type Option func(*Config)

// WithChecksumVerification enables or disables reply checksum verification
func WithChecksumVerification(enabled bool) Option {
	return func(c *Config) {
		c.VerifyChecksum = enabled
	}
}

// WithLogger sets the logger used for frame-level logging
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
