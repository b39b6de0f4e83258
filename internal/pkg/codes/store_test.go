package codes

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStorePutGetInvalidate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "pwreset:a@example.com", "123456", time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "pwreset:a@example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "123456" {
		t.Fatalf("expected 123456, got %q", got)
	}

	if err := store.Invalidate(ctx, "pwreset:a@example.com"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := store.Get(ctx, "pwreset:a@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after invalidate, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Put: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired code to be gone, got %v", err)
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Put(ctx, "k", "first", time.Minute)
	_ = store.Put(ctx, "k", "second", time.Minute)

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "second" {
		t.Fatalf("expected latest code, got %q", got)
	}
}
