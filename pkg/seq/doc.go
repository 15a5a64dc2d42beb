// Package seq provides a 128-bit, lexicographically sortable arrival
// sequence used as the tie-breaker inside priority-queue keys.
//
// # Format
//
// A Seq is 16 bytes big-endian: [8 bytes ms_timestamp][8 bytes counter].
// Byte-wise comparison preserves arrival order, and sequences generated
// within the same millisecond remain strictly increasing by counter.
//
// # Monotonicity
//
// The Generator ensures per-process monotonicity:
//   - If the system clock regresses, it pins to the last seen millisecond and
//     increments the counter to avoid going backwards.
//   - If the counter would overflow within a millisecond, it waits for the
//     next millisecond before emitting the next sequence.
//
// Usage
//
//	g := seq.NewGenerator()
//	s := g.Next()
//	b := s.Bytes()   // 16-byte representation
//	h := s.String()  // hex string
package seq
