// Package logging provides structured logging for hysenctl.
//
// This package wraps zap logger with convenience functions used by the
// protocol handler, the transports and the device session.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Envelope hex dumps, refresh and write traces
//   - Info: Transport connects and re-authentication
//   - Warn: Best-effort failures (clock sync)
//   - Error: Command failures surfaced to the user
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("Re-authenticating",
//	    zap.String("device", "bedroom"),
//	    zap.String("profile", "heating"),
//	)
//
// # Specialized Logging
//
//	logging.LogFrame("tx", envelope)
//	logging.LogTransport("websocket", "ws://bridge.local/hysen", "connected")
//
// # Configuration
//
// Logging is silent unless HYSEN_LOG_LEVEL or --log-level is set:
//
//	if err := logging.Initialize(logLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Output goes to stderr so status output on stdout stays machine readable.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
