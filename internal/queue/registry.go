package queue

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	cfgpkg "github.com/duraq/duraq/internal/config"
	pebblestore "github.com/duraq/duraq/internal/storage/pebble"
	logpkg "github.com/duraq/duraq/pkg/log"
)

// Registry owns the process's queue actors: an explicit name -> actor map
// with create, lookup, and shutdown operations. Distinct queues run
// concurrently and independently; they share one Pebble DB but occupy
// disjoint key ranges.
type Registry struct {
	db     *pebblestore.DB
	cfg    cfgpkg.Config
	logger logpkg.Logger // tagged component=registry
	base   logpkg.Logger // untagged, handed to actors
	nameRe *regexp.Regexp

	mu     sync.Mutex
	actors map[string]*Actor
	closed bool
}

// NewRegistry builds a Registry over the shared DB.
func NewRegistry(db *pebblestore.DB, cfg cfgpkg.Config, logger logpkg.Logger) (*Registry, error) {
	re, err := regexp.Compile(cfg.QueueNameRegex)
	if err != nil {
		return nil, fmt.Errorf("registry: bad queue name regex: %w", err)
	}
	return &Registry{
		db:     db,
		cfg:    cfg,
		logger: logger.With(logpkg.Component("registry")),
		base:   logger,
		nameRe: re,
		actors: make(map[string]*Actor),
	}, nil
}

// ValidateName checks a queue name against the configured pattern. This is
// the validation gate: bad names are rejected before any actor or store is
// touched.
func (r *Registry) ValidateName(name string) error {
	if name == "" || !r.nameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ValidatePayload checks a payload against the configured size cap.
func (r *Registry) ValidatePayload(payload []byte) error {
	if r.cfg.PayloadMaxBytes > 0 && len(payload) > r.cfg.PayloadMaxBytes {
		return fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, len(payload), r.cfg.PayloadMaxBytes)
	}
	return nil
}

// Start creates the actor for name, attaching to any durable entries left
// by a previous run. Fails with ErrAlreadyStarted when the name is live.
func (r *Registry) Start(name string) (*Actor, error) {
	if err := r.ValidateName(name); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrQueueClosed
	}
	if _, ok := r.actors[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyStarted, name)
	}
	if r.cfg.MaxQueues > 0 && len(r.actors) >= r.cfg.MaxQueues {
		return nil, fmt.Errorf("%w: %d", ErrTooManyQueues, r.cfg.MaxQueues)
	}
	a, err := StartActor(r.db, name, r.base)
	if err != nil {
		r.logger.Error("queue start failed", logpkg.Str("queue", name), logpkg.Err(err))
		return nil, err
	}
	r.actors[name] = a
	return a, nil
}

// Get returns the running actor for name, if any.
func (r *Registry) Get(name string) (*Actor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actors[name]
	return a, ok
}

// GetOrStart returns the running actor for name, starting one when allowed
// by the auto-create setting.
func (r *Registry) GetOrStart(name string) (*Actor, error) {
	if err := r.ValidateName(name); err != nil {
		return nil, err
	}
	if a, ok := r.Get(name); ok {
		return a, nil
	}
	if !r.cfg.AutoCreateQueues {
		return nil, fmt.Errorf("%w: %q", ErrNotStarted, name)
	}
	a, err := r.Start(name)
	if err == nil {
		return a, nil
	}
	// lost a race with a concurrent starter
	if existing, ok := r.Get(name); ok {
		return existing, nil
	}
	return nil, err
}

// Shutdown stops the actor for name and removes it from the registry. The
// queue's durable entries are untouched.
func (r *Registry) Shutdown(name string) error {
	r.mu.Lock()
	a, ok := r.actors[name]
	if ok {
		delete(r.actors, name)
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotStarted, name)
	}
	a.Shutdown()
	r.logger.Info("queue shut down", logpkg.Str("queue", name))
	return nil
}

// Names returns the names of all running actors, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.actors))
	for n := range r.actors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close shuts down every actor. The registry accepts no further starts.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	actors := make([]*Actor, 0, len(r.actors))
	for _, a := range r.actors {
		actors = append(actors, a)
	}
	r.actors = make(map[string]*Actor)
	r.mu.Unlock()
	for _, a := range actors {
		a.Shutdown()
	}
}
