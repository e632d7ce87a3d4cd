// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework.
//
// # Channels
//
// Sync runs log through three channels derived from the base logger:
//   - application: progress and run summaries
//   - application-error: dropped records, rolled back batches, truncated streams
//   - database-error: failed statements
//
// The client name is given to NewChannels explicitly. When Config.Dir is set, each
// channel is also written to <dir>/<client>/<channel>.log.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID from a Fiber context and attaches it to the
// log entry, so all logs of one request can be correlated.
//
// # Usage
//
//	base, _ := logger.New(&cfg.Log)
//	ch, _ := logger.NewChannels(base, cfg.Log, "casa-do-arroz")
//	defer ch.Close()
//	ch.App.Info("Run started")
package logger
