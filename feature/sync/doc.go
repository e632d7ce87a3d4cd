// Package sync runs reconciliation jobs against the configured sources.
//
// A run logs in once, lists the partitions of the job and runs one engine per
// partition, bounded by the partition concurrency. Promotion runs clear the
// print queue first and project print rows inside every batch. The result is
// a Report whose Success is false when any partition failed, truncated its
// stream or rolled back a batch.
//
// # HTTP Endpoints
//
//   - GET /sync/sources : lists sources and their jobs.
//   - POST /sync/:source/:job : runs a job synchronously (GET is accepted too).
//     A second request for a running source and job gets 409.
package sync
