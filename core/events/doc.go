// Package events publishes batch outcomes to kafka so downstream print
// queues and caches can react to price changes without polling the catalog.
//
// Messages are keyed by source, job and partition, which keeps the events of
// one partition ordered on a single kafka partition.
package events
