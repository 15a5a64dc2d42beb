package queue

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	pebblestore "github.com/duraq/duraq/internal/storage/pebble"
	logpkg "github.com/duraq/duraq/pkg/log"
	"github.com/duraq/duraq/pkg/seq"
)

func testLogger() logpkg.Logger {
	return logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel))
}

func openTestDB(t *testing.T) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func startTestActor(t *testing.T, db *pebblestore.DB, name string) *Actor {
	t.Helper()
	a, err := StartActor(db, name, testLogger())
	if err != nil {
		t.Fatalf("start actor: %v", err)
	}
	t.Cleanup(a.Shutdown)
	return a
}

func TestDequeueFollowsPriorityThenArrival(t *testing.T) {
	a := startTestActor(t, openTestDB(t), "jobs")
	ctx := context.Background()

	priorities := []uint32{9, 9, 0, 8, 1, 7, 2, 6, 3, 5, 4}
	for i, p := range priorities {
		item := fmt.Sprintf("I%d", i+1)
		if err := a.Enqueue(ctx, p, []byte(item)); err != nil {
			t.Fatalf("enqueue %s: %v", item, err)
		}
	}

	// ascending priority, arrival order breaking the 9/9 tie: I1 before I2
	want := []string{"I3", "I5", "I7", "I9", "I11", "I10", "I8", "I6", "I4", "I1", "I2"}
	for i, w := range want {
		got, err := a.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		if string(got) != w {
			t.Fatalf("dequeue %d: got %s want %s", i, got, w)
		}
	}
	if _, err := a.Dequeue(ctx); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty after draining, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	a := startTestActor(t, openTestDB(t), "jobs")
	ctx := context.Background()

	payload := []byte{0x00, 0xFF, 0x10, 'x'}
	if err := a.Enqueue(ctx, 3, payload); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	got, err := a.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: %x vs %x", got, payload)
	}
}

func TestEmptyDequeueHasNoSideEffects(t *testing.T) {
	a := startTestActor(t, openTestDB(t), "jobs")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := a.Dequeue(ctx); !errors.Is(err, ErrEmpty) {
			t.Fatalf("dequeue %d: want ErrEmpty, got %v", i, err)
		}
	}
	stats, err := a.Info(ctx)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if stats.Length != 0 || stats.Enqueued != 0 || stats.Dequeued != 0 {
		t.Fatalf("empty dequeues must not move counters: %+v", stats)
	}
}

func TestCountersTrackOperations(t *testing.T) {
	a := startTestActor(t, openTestDB(t), "jobs")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := a.Enqueue(ctx, uint32(i), []byte{byte(i)}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := a.Dequeue(ctx); err != nil {
			t.Fatalf("dequeue: %v", err)
		}
	}
	stats, err := a.Info(ctx)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if stats.Length != 3 || stats.Enqueued != 5 || stats.Dequeued != 2 {
		t.Fatalf("stats: %+v", stats)
	}
}

func TestResetCountersKeepsLength(t *testing.T) {
	a := startTestActor(t, openTestDB(t), "jobs")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := a.Enqueue(ctx, 1, []byte{byte(i)}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if _, err := a.Dequeue(ctx); err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if err := a.ResetCounters(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	stats, err := a.Info(ctx)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if stats.Enqueued != 0 || stats.Dequeued != 0 {
		t.Fatalf("lifetime counters should be zero: %+v", stats)
	}
	if stats.Length != 3 {
		t.Fatalf("length must survive reset: %+v", stats)
	}
}

func TestRestartRestoresLengthButNotLifetimeCounters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a, err := StartActor(db, "jobs", testLogger())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, p := range []uint32{2, 0, 1} {
		if err := a.Enqueue(ctx, p, []byte{'a' + byte(i)}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	a.Shutdown()

	// same name, fresh actor over the same durable data
	b, err := StartActor(db, "jobs", testLogger())
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer b.Shutdown()

	stats, err := b.Info(ctx)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if stats.Length != 3 {
		t.Fatalf("length should survive restart: %+v", stats)
	}
	if stats.Enqueued != 0 || stats.Dequeued != 0 {
		t.Fatalf("lifetime counters should reset on restart: %+v", stats)
	}

	// original priority/arrival order preserved
	want := []string{"b", "c", "a"}
	for i, w := range want {
		got, err := b.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		if string(got) != w {
			t.Fatalf("dequeue %d: got %s want %s", i, got, w)
		}
	}
}

func TestEnqueueAfterRestartSameMillisecond(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// pin the clock so the restarted actor's sequence generator starts in
	// the very millisecond the first actor enqueued under
	seq.NowMs = func() int64 { return 1724400000000 }
	defer func() { seq.NowMs = func() int64 { return time.Now().UnixMilli() } }()

	a, err := StartActor(db, "jobs", testLogger())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := a.Enqueue(ctx, 1, []byte("before")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	a.Shutdown()

	b, err := StartActor(db, "jobs", testLogger())
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer b.Shutdown()

	if err := b.Enqueue(ctx, 1, []byte("after")); err != nil {
		t.Fatalf("valid enqueue after restart failed: %v", err)
	}

	stats, err := b.Info(ctx)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if stats.Length != 2 {
		t.Fatalf("both entries should be stored: %+v", stats)
	}
	for i, want := range []string{"before", "after"} {
		got, err := b.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		if string(got) != want {
			t.Fatalf("dequeue %d: got %s want %s", i, got, want)
		}
	}
}

func TestOperationsAfterShutdown(t *testing.T) {
	a := startTestActor(t, openTestDB(t), "jobs")
	a.Shutdown()
	if err := a.Enqueue(context.Background(), 0, []byte("x")); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("want ErrQueueClosed, got %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	a := startTestActor(t, openTestDB(t), "jobs")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Enqueue(ctx, 0, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestConcurrentCallersStayConsistent(t *testing.T) {
	a := startTestActor(t, openTestDB(t), "jobs")
	ctx := context.Background()

	const producers = 8
	const perProducer = 25
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := a.Enqueue(ctx, uint32(p%4), []byte{byte(p), byte(i)}); err != nil {
					t.Errorf("enqueue: %v", err)
					return
				}
			}
		}(p)
	}
	wg.Wait()

	stats, err := a.Info(ctx)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	total := producers * perProducer
	if stats.Length != total || stats.Enqueued != int64(total) {
		t.Fatalf("stats after concurrent enqueues: %+v", stats)
	}

	// drain and check priority levels never increase out of order
	last := uint32(0)
	for i := 0; i < total; i++ {
		payload, err := a.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		level := uint32(payload[0]) % 4
		if level < last {
			t.Fatalf("priority went backwards: %d after %d", level, last)
		}
		last = level
	}
}

func TestEnqueueDequeueUnderDeadline(t *testing.T) {
	a := startTestActor(t, openTestDB(t), "jobs")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Enqueue(ctx, 0, []byte("x")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := a.Dequeue(ctx); err != nil {
		t.Fatalf("dequeue: %v", err)
	}
}
