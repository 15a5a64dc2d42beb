package seq

import (
	"encoding/binary"
	"math"
	"sync"
	"time"
)

// Seq is a 128-bit, lexicographically sortable arrival sequence encoded as
// 16 bytes big-endian: [8 bytes ms_timestamp][8 bytes counter]. Within a
// priority level, entries dequeue in ascending Seq order, so first-in is
// first-out among equal priorities.
type Seq [16]byte

// Bytes returns the raw 16-byte representation.
func (s Seq) Bytes() []byte { b := make([]byte, 16); copy(b, s[:]); return b }

// String returns a hex string.
func (s Seq) String() string { return fmtHex(s[:]) }

// Compare returns -1, 0, 1 based on lexical comparison.
func (s Seq) Compare(other Seq) int {
	for i := 0; i < 16; i++ {
		if s[i] < other[i] {
			return -1
		}
		if s[i] > other[i] {
			return 1
		}
	}
	return 0
}

// FromBytes decodes a Seq from a 16-byte slice.
func FromBytes(b []byte) (Seq, bool) {
	var s Seq
	if len(b) != 16 {
		return s, false
	}
	copy(s[:], b)
	return s, true
}

// Generator produces monotonically increasing sequences per process.
// Pairing a millisecond timestamp with a per-millisecond counter keeps
// sequences unique across restarts without persisting generator state,
// and avoids collisions when many arrivals share one clock tick.
type Generator struct {
	mu      sync.Mutex
	lastMs  int64
	counter uint64
}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator { return &Generator{} }

// NowMs returns current time in milliseconds since Unix epoch.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Next returns a new Seq. If the clock goes backwards, it reuses lastMs and
// increments the counter so sequences never rewind. If the counter overflows
// within the same millisecond, it waits for the next ms.
func (g *Generator) Next() Seq {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := NowMs()
	if ms < g.lastMs {
		ms = g.lastMs
	}

	if ms == g.lastMs {
		if g.counter == math.MaxUint64 {
			for {
				ms = NowMs()
				if ms > g.lastMs {
					break
				}
				time.Sleep(time.Millisecond / 8)
			}
			g.counter = 0
		} else {
			g.counter++
		}
	} else {
		g.counter = 0
	}

	g.lastMs = ms
	return make16(ms, g.counter)
}

func make16(ms int64, c uint64) Seq {
	var s Seq
	binary.BigEndian.PutUint64(s[0:8], uint64(ms))
	binary.BigEndian.PutUint64(s[8:16], c)
	return s
}

// fmtHex is a small, allocation-lean hex encoder for fixed-size sequences.
func fmtHex(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexdigits[v>>4]
		out[i*2+1] = hexdigits[v&0x0f]
	}
	return string(out)
}
