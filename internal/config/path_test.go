package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDataDirXDGOverride(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	got := DefaultDataDir()
	if filepath.Base(got) != "duraq" {
		t.Fatalf("expected duraq dir under XDG_DATA_HOME, got %s", got)
	}
}

func TestDefaultDataDirNonEmpty(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	got := DefaultDataDir()
	if strings.TrimSpace(got) == "" {
		t.Fatalf("data dir should never be empty")
	}
}
