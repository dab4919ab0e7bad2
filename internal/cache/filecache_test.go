package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestFileCache_MissOnEmpty(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	_, found, err := c.Get(context.Background(), "geo:puchong,MY")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true on empty cache")
	}
}

func TestFileCache_SetGet(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	ctx := context.Background()

	want := []byte(`{"lat":3.02,"lon":101.62}`)
	if err := c.Set(ctx, "geo:puchong,MY", want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, found, err := c.Get(ctx, "geo:puchong,MY")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false after Set")
	}
	if string(got) != string(want) {
		t.Errorf("Get() = %s, want %s", got, want)
	}
}

func TestFileCache_Expiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte(`1`), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	_, found, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true after expiry")
	}
}

func TestFileCache_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c1, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	if err := c1.Set(ctx, "report:london,GB", []byte(`{"t":12.5}`), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	c2, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	got, found, err := c2.Get(ctx, "report:london,GB")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("entry did not survive reopen")
	}
	if string(got) != `{"t":12.5}` {
		t.Errorf("Get() = %s", got)
	}
}

func TestFileCache_ExpiredEntriesDroppedOnLoad(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c1, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	if err := c1.Set(ctx, "short", []byte(`1`), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	c2, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	if _, found, _ := c2.Get(ctx, "short"); found {
		t.Error("expired entry survived reload")
	}
}

func TestFileCache_CorruptFileIgnored(t *testing.T) {
	dir := t.TempDir()
	c1, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c1.Path(), []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	c2, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() with corrupt file error = %v", err)
	}
	if _, found, _ := c2.Get(context.Background(), "anything"); found {
		t.Error("corrupt cache produced a hit")
	}
}

func TestFileCache_RejectsNonPositiveTTL(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	if err := c.Set(context.Background(), "k", []byte(`1`), 0); err == nil {
		t.Error("Set() with zero TTL succeeded, want error")
	}
}

func TestFileCache_ContextCanceled(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := c.Get(ctx, "k"); err == nil {
		t.Error("Get() with canceled context succeeded, want error")
	}
	if err := c.Set(ctx, "k", []byte(`1`), time.Minute); err == nil {
		t.Error("Set() with canceled context succeeded, want error")
	}
}
