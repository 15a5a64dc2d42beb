package runtime

import (
	"context"
	"errors"
	"time"

	cfgpkg "github.com/duraq/duraq/internal/config"
	"github.com/duraq/duraq/internal/queue"
	"github.com/duraq/duraq/internal/store"
	pebblestore "github.com/duraq/duraq/internal/storage/pebble"
	logpkg "github.com/duraq/duraq/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        logpkg.Logger
}

// Runtime wires storage, config, and the queue registry for a single-node
// instance.
type Runtime struct {
	db       *pebblestore.DB
	config   cfgpkg.Config
	logger   logpkg.Logger
	registry *queue.Registry
}

// Open initializes the underlying storage and returns a Runtime. Queues that
// left durable entries behind are not restarted automatically; they come back
// on first use (or explicit create), reattached to their surviving data.
func Open(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
	})
	if err != nil {
		return nil, err
	}
	reg, err := queue.NewRegistry(db, opts.Config, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	rt := &Runtime{db: db, config: opts.Config, logger: logger, registry: reg}
	return rt, nil
}

// Close shuts down all queue actors, then the underlying storage.
func (r *Runtime) Close() error {
	if r.registry != nil {
		r.registry.Close()
	}
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	return nil
}

// Queues returns the queue registry.
func (r *Runtime) Queues() *queue.Registry { return r.registry }

// ListQueues returns the names of all queues known durably, whether or not
// an actor is currently running for them.
func (r *Runtime) ListQueues() ([]string, error) {
	return store.ListNames(r.db)
}

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
