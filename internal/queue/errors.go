package queue

import "errors"

var (
	// ErrEmpty is the normal dequeue result when no entry is available.
	ErrEmpty = errors.New("queue: empty")

	// ErrStoreUnavailable means the durable store could not be opened or
	// attached; the queue never reaches Ready.
	ErrStoreUnavailable = errors.New("queue: store unavailable")

	// ErrConsistency means the store reported a minimum key whose payload
	// could not be read back. Under single-writer discipline this should
	// not happen; it indicates store corruption or an ownership violation.
	ErrConsistency = errors.New("queue: entry missing for minimum key")

	// ErrQueueClosed is returned for operations against a shut-down actor.
	ErrQueueClosed = errors.New("queue: closed")

	// ErrAlreadyStarted is returned by Start for a name that already has a
	// running actor.
	ErrAlreadyStarted = errors.New("queue: already started")

	// ErrNotStarted is returned for operations against an unknown name.
	ErrNotStarted = errors.New("queue: not started")

	// ErrInvalidName rejects names failing the configured pattern, before
	// any actor or store is touched.
	ErrInvalidName = errors.New("queue: invalid queue name")

	// ErrPayloadTooLarge rejects payloads above the configured cap, before
	// the request reaches the actor.
	ErrPayloadTooLarge = errors.New("queue: payload too large")

	// ErrTooManyQueues is returned by Start once the configured queue cap
	// is reached.
	ErrTooManyQueues = errors.New("queue: max queues reached")
)
