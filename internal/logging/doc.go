// Package logging provides structured logging for the Blackbird controller.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used across the CLI, the serial transport and the network bridge.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Serial frames in hex, transport timing, WebSocket envelopes
//   - Info: Commands sent, bridge connections, mDNS advertisement
//   - Warn: Failed commands, malformed replies
//   - Error: Startup failures, serial port errors
//
// # Silent by Default
//
// CLI commands print their own results, so logging stays silent unless a level
// is passed to Initialize or BLACKBIRD_LOG_LEVEL is set:
//
//	BLACKBIRD_LOG_LEVEL=debug blackbird status
//
// # Frame Logging
//
//	log.Debug("Serial frame", logging.FrameFields("tx", "route-input", frame)...)
//	log.Debug("Serial frame", logging.FrameFields("rx", "route-input", reply)...)
//
// Frames are logged as hex at debug level and truncated after 256 bytes.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically. Initialize and SetLogger are meant to
// be called once at startup.
package logging
