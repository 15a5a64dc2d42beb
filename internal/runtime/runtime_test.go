package runtime

import (
	"context"
	"reflect"
	"testing"

	cfgpkg "github.com/duraq/duraq/internal/config"
	pebblestore "github.com/duraq/duraq/internal/storage/pebble"
	"github.com/duraq/duraq/internal/store"
)

func openTestRuntime(t *testing.T, dir string) *Runtime {
	t.Helper()
	rt, err := Open(Options{
		DataDir: dir,
		Fsync:   pebblestore.FsyncModeAlways,
		Config:  cfgpkg.Default(),
	})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	return rt
}

func TestRuntimeOpenCloseAndHealth(t *testing.T) {
	rt := openTestRuntime(t, t.TempDir())
	defer rt.Close()

	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if rt.Queues() == nil {
		t.Fatal("registry not wired")
	}
}

func TestRuntimeListQueuesSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	rt := openTestRuntime(t, dir)
	for _, n := range []string{"orders", "billing"} {
		a, err := rt.Queues().Start(n)
		if err != nil {
			t.Fatalf("start %s: %v", n, err)
		}
		if err := a.Enqueue(ctx, 0, []byte(n)); err != nil {
			t.Fatalf("enqueue %s: %v", n, err)
		}
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rt2 := openTestRuntime(t, dir)
	defer rt2.Close()

	// no actors running, but the durable names are still listed
	if got := rt2.Queues().Names(); len(got) != 0 {
		t.Fatalf("expected no running actors after restart, got %v", got)
	}
	names, err := rt2.ListQueues()
	if err != nil {
		t.Fatalf("list queues: %v", err)
	}
	want := []string{"billing", "orders"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("durable names: got %v want %v", names, want)
	}

	// the listing is driven by durable metadata records
	if _, err := rt2.DB().Get(store.MetaKey("orders")); err != nil {
		t.Fatalf("meta record missing: %v", err)
	}
}

func TestRuntimeCloseStopsActors(t *testing.T) {
	rt := openTestRuntime(t, t.TempDir())
	a, err := rt.Queues().Start("orders")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := a.Enqueue(context.Background(), 0, []byte("x")); err == nil {
		t.Fatal("enqueue should fail after runtime close")
	}
}
