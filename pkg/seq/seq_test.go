package seq

import (
	"testing"
	"time"
)

func TestOrderingMonotonic(t *testing.T) {
	g := NewGenerator()
	NowMs = func() int64 { return 1000 }
	defer func() { NowMs = func() int64 { return time.Now().UnixMilli() } }()

	a := g.Next()
	b := g.Next()
	if a.Compare(b) >= 0 {
		t.Fatalf("expected a<b")
	}
}

func TestClockRegressionGuard(t *testing.T) {
	g := NewGenerator()
	now := int64(1000)
	NowMs = func() int64 { return now }
	defer func() { NowMs = func() int64 { return time.Now().UnixMilli() } }()

	a := g.Next() // uses 1000
	now = 900     // clock went backwards
	b := g.Next() // should still be > a
	if a.Compare(b) >= 0 {
		t.Fatalf("expected b>a despite clock regression")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	g := NewGenerator()
	a := g.Next()
	back, ok := FromBytes(a.Bytes())
	if !ok {
		t.Fatalf("decode failed")
	}
	if a.Compare(back) != 0 {
		t.Fatalf("round-trip mismatch: %s vs %s", a, back)
	}
	if _, ok := FromBytes([]byte{1, 2, 3}); ok {
		t.Fatalf("short slice should not decode")
	}
}

func TestDistinctAcrossMilliseconds(t *testing.T) {
	g := NewGenerator()
	now := int64(5000)
	NowMs = func() int64 { return now }
	defer func() { NowMs = func() int64 { return time.Now().UnixMilli() } }()

	a := g.Next()
	now = 5001
	b := g.Next()
	if a.Compare(b) >= 0 {
		t.Fatalf("expected strictly increasing across ms boundary")
	}
}
