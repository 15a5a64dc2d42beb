// Package queue implements a durable priority queue behind a single
// serializing actor.
//
// Producers enqueue payloads tagged with a non-negative priority level;
// consumers dequeue in priority order (level 0 first), with arrival order
// breaking ties within a level, so a stream of same-priority arrivals can
// never starve an earlier item. Entries persist in the ordered store, so a
// queue's contents survive process restarts.
//
// # Serialization
//
// One goroutine owns each queue's store. Arbitrarily concurrent callers
// route every operation through that goroutine's request channel and block
// until it replies, which makes the composite history equivalent to some
// sequential execution without any per-operation locking. Callers wait
// indefinitely by default; a context deadline opts into cancellation, with
// the caveat that a request already accepted may still be applied.
//
// # Counters
//
// Each actor tracks three numbers: length (entries currently stored),
// enqueued, and dequeued (lifetime totals). Length is re-derived from the
// durable store whenever an actor starts, so it survives crashes. The
// lifetime counters live only in memory and restart at zero, and are also
// zeroed on demand by ResetCounters. Length persisting while lifetime
// counters reset is deliberate, observable behavior.
//
// # Failure behavior
//
// Store failures surface to the caller of the failed operation and leave
// the counters untouched, so they never drift from store reality; the
// actor stays Ready and keeps serving. Only a store that cannot be opened
// at all (ErrStoreUnavailable) prevents a queue from starting. The core
// never retries; retry policy belongs to callers.
package queue
