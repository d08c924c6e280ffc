// Package logging provides structured logging for meshcfg.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used across the apply engine. Logging is silent unless a level is
// requested via --log-level or the MESHCFG_LOG_LEVEL environment variable.
//
// # Log Levels
//
//   - Debug: state transitions, channel URL decoding, successful tool runs
//   - Info: computed diffs, tool invocations, reconnects
//   - Warn: failed tool runs, snapshot fallbacks, unresolved secrets
//   - Error: unrecoverable apply failures
//
// # Secrets
//
// Diffs and tool argument lists carry pre-shared keys, WiFi passwords and
// Bluetooth PINs. They must only be logged through LogDiff and LogCommand,
// which run the redactor before anything reaches the encoder:
//
//	logging.LogDiff(logger, diff.AsMap())
//	logging.LogCommand(logger, "channels", "meshtastic", args)
//
// # Usage
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
//	logging.Info("Connected", zap.String("port", "/dev/ttyUSB0"))
package logging
