package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/duraq/duraq/internal/store"
	pebblestore "github.com/duraq/duraq/internal/storage/pebble"
	logpkg "github.com/duraq/duraq/pkg/log"
	"github.com/duraq/duraq/pkg/seq"
)

// Stats is a point-in-time snapshot of one queue's counters. Length mirrors
// the durable store and survives restarts; Enqueued and Dequeued are
// lifetime counters held only in actor memory, so they restart at zero with
// the process. That asymmetry is intentional and relied upon by callers.
type Stats struct {
	Length   int   `json:"length"`
	Enqueued int64 `json:"enqueued"`
	Dequeued int64 `json:"dequeued"`
}

type opKind int

const (
	opEnqueue opKind = iota
	opDequeue
	opInfo
	opReset
)

type request struct {
	op       opKind
	priority uint32
	payload  []byte
	reply    chan response
}

type response struct {
	payload []byte
	stats   Stats
	err     error
}

// Actor is the single serializing owner of one queue's ordered store. Every
// operation becomes a message on its request channel and is applied by one
// goroutine, one at a time, which makes the composite enqueue/dequeue
// history linearizable without locks around the store.
type Actor struct {
	name   string
	store  *store.Store
	gen    *seq.Generator
	logger logpkg.Logger

	requests chan request
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// owned by the run goroutine after start
	length   int
	enqueued int64
	dequeued int64
}

// StartActor opens the queue's durable store and, once the store is fully
// available, starts the serving goroutine. The actor services no request
// before its length is seeded from the store's surviving entry count; an
// open failure surfaces as ErrStoreUnavailable and no actor is returned.
func StartActor(db *pebblestore.DB, name string, logger logpkg.Logger) (*Actor, error) {
	st, err := store.Open(db, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	a := &Actor{
		name:     name,
		store:    st,
		gen:      seq.NewGenerator(),
		logger:   logger.With(logpkg.Component("queue"), logpkg.Str("queue", name)),
		requests: make(chan request),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		length:   st.Size(),
	}
	a.logger.Info("queue ready", logpkg.Int("length", a.length))
	go a.run()
	return a, nil
}

// Name returns the queue name.
func (a *Actor) Name() string { return a.name }

func (a *Actor) run() {
	defer close(a.done)
	for {
		select {
		case <-a.stop:
			a.logger.Info("queue stopped",
				logpkg.Int64("enqueued", a.enqueued),
				logpkg.Int64("dequeued", a.dequeued))
			return
		case req := <-a.requests:
			req.reply <- a.handle(req)
		}
	}
}

func (a *Actor) handle(req request) response {
	switch req.op {
	case opEnqueue:
		return a.handleEnqueue(req)
	case opDequeue:
		return a.handleDequeue()
	case opInfo:
		return response{stats: Stats{Length: a.length, Enqueued: a.enqueued, Dequeued: a.dequeued}}
	case opReset:
		a.enqueued = 0
		a.dequeued = 0
		return response{}
	default:
		return response{err: fmt.Errorf("queue %s: unknown op %d", a.name, req.op)}
	}
}

func (a *Actor) handleEnqueue(req request) response {
	for {
		key := store.Key{Priority: req.priority, Seq: a.gen.Next()}
		err := a.store.Insert(key, req.payload)
		if err == nil {
			a.length++
			a.enqueued++
			a.logger.Debug("enqueued", logpkg.Uint64("priority", uint64(req.priority)))
			return response{}
		}
		if errors.Is(err, store.ErrKeyExists) {
			// a previous run of this queue enqueued within the same
			// millisecond, so the fresh generator's counter restarted below
			// keys already stored. The counter strictly increases on every
			// Next, so retrying walks past them.
			continue
		}
		// counters untouched: the entry was not written
		return response{err: err}
	}
}

func (a *Actor) handleDequeue() response {
	min, ok, err := a.store.Minimum()
	if err != nil {
		return response{err: err}
	}
	if !ok {
		return response{err: ErrEmpty}
	}
	payload, ok, err := a.store.Read(min)
	if err != nil {
		return response{err: err}
	}
	if !ok {
		// the store is never touched by anyone else, so a missing
		// read-back means corruption; keep serving but say so loudly
		a.logger.Error("minimum key has no entry", logpkg.Str("key", min.String()))
		return response{err: ErrConsistency}
	}
	if err := a.store.Delete(min); err != nil {
		// counters untouched: the entry is still in the store
		return response{err: err}
	}
	a.length--
	a.dequeued++
	return response{payload: payload}
}

// send routes one request through the actor. Callers block until the actor
// replies; ctx offers optional cancellation. A cancellation that fires
// after the request was accepted does not undo its effect.
func (a *Actor) send(ctx context.Context, req request) (response, error) {
	req.reply = make(chan response, 1)
	select {
	case a.requests <- req:
	case <-a.stop:
		return response{}, ErrQueueClosed
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
	select {
	case resp := <-req.reply:
		return resp, nil
	case <-a.done:
		// the loop may have replied just before exiting
		select {
		case resp := <-req.reply:
			return resp, nil
		default:
			return response{}, ErrQueueClosed
		}
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

// Enqueue inserts payload at the given priority level. Priority 0 dequeues
// first; larger values are less urgent.
func (a *Actor) Enqueue(ctx context.Context, priority uint32, payload []byte) error {
	resp, err := a.send(ctx, request{op: opEnqueue, priority: priority, payload: payload})
	if err != nil {
		return err
	}
	return resp.err
}

// Dequeue removes and returns the most urgent entry: lowest priority level
// first, earliest arrival within a level. Returns ErrEmpty when the queue
// has no entries.
func (a *Actor) Dequeue(ctx context.Context) ([]byte, error) {
	resp, err := a.send(ctx, request{op: opDequeue})
	if err != nil {
		return nil, err
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return resp.payload, nil
}

// Info returns a snapshot of the queue's counters. Pure read.
func (a *Actor) Info(ctx context.Context) (Stats, error) {
	resp, err := a.send(ctx, request{op: opInfo})
	if err != nil {
		return Stats{}, err
	}
	return resp.stats, resp.err
}

// ResetCounters zeroes the lifetime enqueued/dequeued counters. Length and
// the store itself are untouched.
func (a *Actor) ResetCounters(ctx context.Context) error {
	resp, err := a.send(ctx, request{op: opReset})
	if err != nil {
		return err
	}
	return resp.err
}

// Shutdown stops the serving goroutine and waits for it to exit. Entries
// stay in the durable store; a later StartActor under the same name
// reattaches to them.
func (a *Actor) Shutdown() {
	a.stopOnce.Do(func() { close(a.stop) })
	<-a.done
}
