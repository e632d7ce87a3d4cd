// Package archive keeps the evidence of failed work in object storage.
//
// Rolled back batches are written with their normalized content and the
// error that rolled them back, so they can be inspected and replayed by
// hand. Truncated streams and run reports are kept alongside. Objects are
// laid out as:
//
//	rejected/<source>/<job>/<run>/<partition>-<seq>.json
//	truncated/<source>/<job>/<run>/<partition>.json
//	reports/<source>/<job>/<timestamp>-<run>.json
//
// Prune removes objects older than the configured retention.
package archive
