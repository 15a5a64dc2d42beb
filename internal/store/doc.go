// Package store implements the durable ordered store backing one queue.
//
// Entries live in Pebble under a per-queue prefix, keyed by a composite
// (priority, arrival sequence) pair encoded big-endian so that byte order
// equals dequeue order. The LSM keeps keys sorted, which gives O(log N)
// inserts and an O(1)-amortized minimum via a bounded iterator.
//
// # Keyspace
//
//	q/{name}/entry/{priority:4B}{seq:16B} - entry payload
//	qmeta/{name}                          - queue metadata (JSON)
//
// A queue's entries outlive the process that wrote them; Open reattaches by
// name and reports the surviving entry count. Stores are single-writer:
// exactly one queue actor owns a Store at a time.
package store
