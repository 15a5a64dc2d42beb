package store

import (
	"encoding/binary"
	"fmt"

	"github.com/duraq/duraq/pkg/seq"
)

// Key prefixes for queue data structures
const (
	prefixEntry = "entry/" // entry data, sorted by (priority, seq)
	prefixMeta  = "qmeta/" // per-queue metadata records
)

// Key orders entries for dequeue: priority ascending first (0 is most
// urgent), then arrival sequence ascending within a priority.
type Key struct {
	Priority uint32
	Seq      seq.Seq
}

// Compare returns -1, 0, 1 following the dequeue order.
func (k Key) Compare(other Key) int {
	if k.Priority < other.Priority {
		return -1
	}
	if k.Priority > other.Priority {
		return 1
	}
	return k.Seq.Compare(other.Seq)
}

// String renders the key for logs.
func (k Key) String() string {
	return fmt.Sprintf("p%d/%s", k.Priority, k.Seq)
}

// queuePrefix returns the base prefix for a queue.
// Format: q/{name}/
func queuePrefix(name string) string {
	return "q/" + name + "/"
}

// EntryPrefix returns the prefix under which all of a queue's entries live.
// Format: q/{name}/entry/
func EntryPrefix(name string) []byte {
	return []byte(queuePrefix(name) + prefixEntry)
}

// EntryKey encodes the full storage key for one entry. Both components are
// big-endian so Pebble's byte order equals the dequeue order.
// Format: q/{name}/entry/{priority:4B}{seq:16B}
func EntryKey(name string, k Key) []byte {
	prefix := EntryPrefix(name)
	key := make([]byte, len(prefix)+4+16)
	copy(key, prefix)
	binary.BigEndian.PutUint32(key[len(prefix):], k.Priority)
	copy(key[len(prefix)+4:], k.Seq[:])
	return key
}

// ParseEntryKey decodes the (priority, seq) pair out of a storage key that
// carries the given prefix.
func ParseEntryKey(prefix, key []byte) (Key, bool) {
	if len(key) != len(prefix)+4+16 {
		return Key{}, false
	}
	var k Key
	k.Priority = binary.BigEndian.Uint32(key[len(prefix):])
	s, ok := seq.FromBytes(key[len(prefix)+4:])
	if !ok {
		return Key{}, false
	}
	k.Seq = s
	return k, true
}

// MetaKey returns the metadata key for a queue.
// Format: qmeta/{name}
func MetaKey(name string) []byte {
	return []byte(prefixMeta + name)
}

// keyRange returns inclusive-lower/exclusive-upper bounds covering all keys
// under prefix. The upper bound is the prefix successor (last byte bumped,
// carrying over 0xFF), so suffixes starting with 0xFF, such as the highest
// priority values, stay in range.
func keyRange(prefix []byte) ([]byte, []byte) {
	hi := append([]byte(nil), prefix...)
	for i := len(hi) - 1; i >= 0; i-- {
		if hi[i] != 0xFF {
			hi[i]++
			return prefix, hi[:i+1]
		}
	}
	// all-0xFF prefix; no upper bound
	return prefix, nil
}
