package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/duraq/duraq/internal/storage/pebble"
)

var (
	// ErrKeyExists is returned by Insert when the key is already present.
	// Under single-writer discipline this indicates a sequence generation bug.
	ErrKeyExists = errors.New("store: key already exists")
)

// Meta is the durable record that makes a queue locatable by name alone.
type Meta struct {
	Name        string `json:"name"`
	CreatedAtMs int64  `json:"createdAtMs"`
}

// Store is the durable, key-sorted home of one queue's entries. Keys order
// by (priority asc, seq asc), so the smallest key is always the next entry
// to dequeue. Entries are immutable: the only mutations are Insert and
// Delete.
//
// A Store is owned by exactly one queue actor and is not safe for
// concurrent use; the tracked size relies on that single-writer discipline.
type Store struct {
	db     *pebblestore.DB
	name   string
	prefix []byte
	size   int
}

// Open attaches to the queue's durable entries, creating the metadata
// record if this is a new queue. It counts the surviving entries so the
// caller can restore its length after a restart, and does not return until
// the store is usable.
func Open(db *pebblestore.DB, name string) (*Store, error) {
	s := &Store{db: db, name: name, prefix: EntryPrefix(name)}

	if err := s.ensureMeta(); err != nil {
		return nil, fmt.Errorf("store %s: ensure meta: %w", name, err)
	}

	lo, hi := keyRange(s.prefix)
	it, err := db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, fmt.Errorf("store %s: open iterator: %w", name, err)
	}
	defer it.Close()
	for ok := it.First(); ok; ok = it.Next() {
		s.size++
	}
	return s, nil
}

func (s *Store) ensureMeta() error {
	key := MetaKey(s.name)
	if b, err := s.db.Get(key); err == nil && len(b) > 0 {
		var m Meta
		if err := json.Unmarshal(b, &m); err == nil {
			return nil
		}
		// corrupted record; rewrite below
	} else if err != nil && !errors.Is(err, pebblestore.ErrNotFound) {
		return err
	}
	m := Meta{Name: s.name, CreatedAtMs: time.Now().UnixMilli()}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.db.Set(key, b)
}

// Name returns the queue name this store belongs to.
func (s *Store) Name() string { return s.name }

// Size returns the number of entries currently present.
func (s *Store) Size() int { return s.size }

// Insert atomically adds one entry. The key must be fresh; a duplicate
// returns ErrKeyExists and writes nothing.
func (s *Store) Insert(k Key, payload []byte) error {
	ek := EntryKey(s.name, k)
	exists, err := s.db.Has(ek)
	if err != nil {
		return fmt.Errorf("store %s: insert %s: %w", s.name, k, err)
	}
	if exists {
		return fmt.Errorf("store %s: insert %s: %w", s.name, k, ErrKeyExists)
	}
	if err := s.db.Set(ek, payload); err != nil {
		return fmt.Errorf("store %s: insert %s: %w", s.name, k, err)
	}
	s.size++
	return nil
}

// Minimum returns the smallest key, exploiting the store's intrinsic
// ordering: a bounded iterator positioned at First, no scan.
func (s *Store) Minimum() (Key, bool, error) {
	lo, hi := keyRange(s.prefix)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return Key{}, false, fmt.Errorf("store %s: minimum: %w", s.name, err)
	}
	defer it.Close()
	if !it.First() {
		return Key{}, false, nil
	}
	k, ok := ParseEntryKey(s.prefix, it.Key())
	if !ok {
		return Key{}, false, fmt.Errorf("store %s: minimum: malformed key %q", s.name, it.Key())
	}
	return k, true, nil
}

// Read returns the payload stored under k, or ok=false when absent.
func (s *Store) Read(k Key) ([]byte, bool, error) {
	v, err := s.db.Get(EntryKey(s.name, k))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store %s: read %s: %w", s.name, k, err)
	}
	return v, true, nil
}

// Delete atomically removes the entry under k.
func (s *Store) Delete(k Key) error {
	if err := s.db.Delete(EntryKey(s.name, k)); err != nil {
		return fmt.Errorf("store %s: delete %s: %w", s.name, k, err)
	}
	if s.size > 0 {
		s.size--
	}
	return nil
}

// ListNames returns the names of all queues with a durable metadata record,
// sorted by name.
func ListNames(db *pebblestore.DB) ([]string, error) {
	lo, hi := keyRange([]byte(prefixMeta))
	it, err := db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, fmt.Errorf("store: list names: %w", err)
	}
	defer it.Close()
	var names []string
	for ok := it.First(); ok; ok = it.Next() {
		names = append(names, string(it.Key()[len(prefixMeta):]))
	}
	return names, nil
}
