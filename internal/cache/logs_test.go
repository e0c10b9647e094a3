package cache

import (
	"os"
	"testing"
	"time"
)

func TestLogCacheRoundTrip(t *testing.T) {
	lc, err := NewLogCache(t.TempDir(), 10, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := lc.Get(42, 1); ok {
		t.Fatal("Get() on empty cache reported a hit")
	}

	if err := lc.Put(42, 1, "log content"); err != nil {
		t.Fatal(err)
	}
	got, ok := lc.Get(42, 1)
	if !ok || got != "log content" {
		t.Errorf("Get() = %q, %v; want %q, true", got, ok, "log content")
	}

	// Different attempt is a different entry.
	if _, ok := lc.Get(42, 2); ok {
		t.Error("Get() hit for wrong attempt")
	}
}

func TestLogCacheTTLExpiry(t *testing.T) {
	dir := t.TempDir()
	lc, err := NewLogCache(dir, 10, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	if err := lc.Put(7, 1, "stale soon"); err != nil {
		t.Fatal(err)
	}

	// Backdate the entry past the TTL.
	old := time.Now().Add(-time.Minute)
	if err := os.Chtimes(lc.jobPath(7, 1), old, old); err != nil {
		t.Fatal(err)
	}

	if _, ok := lc.Get(7, 1); ok {
		t.Error("Get() returned an expired entry")
	}

	if err := lc.Evict(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(lc.jobPath(7, 1)); !os.IsNotExist(err) {
		t.Error("Evict() left an expired entry on disk")
	}
}

func TestLogCacheSizeEviction(t *testing.T) {
	dir := t.TempDir()
	lc, err := NewLogCache(dir, 10, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	// Shrink the cap so two small entries overflow it.
	lc.maxSize = 16

	if err := lc.Put(1, 1, "aaaaaaaaaaaa"); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-30 * time.Minute)
	if err := os.Chtimes(lc.jobPath(1, 1), old, old); err != nil {
		t.Fatal(err)
	}
	if err := lc.Put(2, 1, "bbbbbbbbbbbb"); err != nil {
		t.Fatal(err)
	}

	if err := lc.Evict(); err != nil {
		t.Fatal(err)
	}

	if _, ok := lc.Get(1, 1); ok {
		t.Error("oldest entry survived size eviction")
	}
	if _, ok := lc.Get(2, 1); !ok {
		t.Error("newest entry was evicted")
	}
}
