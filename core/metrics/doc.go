// Package metrics exposes sync counters and run durations to prometheus.
//
// Registry implements reconcile.Observer, so it is attached to every engine
// run and counts batches by outcome, rows written, dropped records and
// stream truncations.
package metrics
