package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// exerciseCache runs the behaviour every backend must share.
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v1"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get(k) = %q, %v, %v; want v1, true, nil", data, hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v2"), 0); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	data, _, _ = c.Get(ctx, "k")
	if string(data) != "v2" {
		t.Errorf("after overwrite got %q, want v2", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("entry should be live before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should be expired")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, hit, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("corrupt entry should not error: %v", err)
	}
	if hit {
		t.Error("corrupt entry should be a miss")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entries should be gone after Clear")
	}
}

func TestBadgerCache(t *testing.T) {
	c, err := NewBadgerCache(BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestBadgerCacheRequiresPath(t *testing.T) {
	if _, err := NewBadgerCache(BadgerConfig{}); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("SAFEPHASE_TEST_REDIS")
	if addr == "" {
		t.Skip("SAFEPHASE_TEST_REDIS not set")
	}
	c, err := NewRedisCache(context.Background(), addr)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	canonical := []byte{3, 0b101}

	base := k.PhaseKey(canonical, PhaseKeyOpts{JunctionID: "C"})
	if !strings.HasPrefix(base, "phases:v1:") {
		t.Errorf("PhaseKey = %q, want phases:v1: prefix", base)
	}
	if base != k.PhaseKey(canonical, PhaseKeyOpts{JunctionID: "C"}) {
		t.Error("PhaseKey should be deterministic")
	}

	variants := []PhaseKeyOpts{
		{JunctionID: "D"},
		{JunctionID: "C", JunctionType: "priority"},
		{JunctionID: "C", MaxPhases: 10},
	}
	for _, opts := range variants {
		if k.PhaseKey(canonical, opts) == base {
			t.Errorf("PhaseKey(%+v) collides with base key", opts)
		}
	}
	if k.PhaseKey([]byte{3, 0b100}, PhaseKeyOpts{JunctionID: "C"}) == base {
		t.Error("different matrices should produce different keys")
	}

	if got := k.NetworkKey("abc"); got != "network:v1:abc" {
		t.Errorf("NetworkKey = %q", got)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(nil, "staging:")

	want := "staging:" + inner.PhaseKey([]byte{1}, PhaseKeyOpts{})
	if got := scoped.PhaseKey([]byte{1}, PhaseKeyOpts{}); got != want {
		t.Errorf("PhaseKey = %q, want %q", got, want)
	}
	if got := scoped.NetworkKey("abc"); got != "staging:network:v1:abc" {
		t.Errorf("NetworkKey = %q", got)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()

	ctx := context.Background()

	t.Run("retryable succeeds", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return Retryable(errors.New("flaky"))
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v, calls = %d; want nil, 3", err, calls)
		}
	})

	t.Run("permanent error", func(t *testing.T) {
		calls := 0
		perm := errors.New("permanent")
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return perm
		})
		if !errors.Is(err, perm) || calls != 1 {
			t.Errorf("err = %v, calls = %d; want permanent, 1", err, calls)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return Retryable(ErrBackend)
		})
		if !errors.Is(err, ErrBackend) || calls != 3 {
			t.Errorf("err = %v, calls = %d; want ErrBackend, 3", err, calls)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := RetryWithBackoff(cctx, func() error {
			return Retryable(ErrBackend)
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	if IsRetryable(errors.New("x")) {
		t.Error("plain error should not be retryable")
	}
	if !IsRetryable(Retryable(errors.New("x"))) {
		t.Error("wrapped error should be retryable")
	}
}
