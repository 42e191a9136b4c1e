package state

import (
	"context"
	"testing"
)

func TestMemoryStoreDefaultsToIdle(t *testing.T) {
	store := NewMemoryStore()
	s, err := store.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Idle() {
		t.Fatalf("expected idle session, got step %q", s.Step)
	}
}

func TestMemoryStorePutGetClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	want := Session{Step: StepPhone, FullName: "Ivan Petrov"}
	if err := store.Put(ctx, 42, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, expected %+v", got, want)
	}

	// Other users remain untouched.
	other, _ := store.Get(ctx, 43)
	if !other.Idle() {
		t.Fatalf("expected idle for other user, got %+v", other)
	}

	if err := store.Clear(ctx, 42); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = store.Get(ctx, 42)
	if !got.Idle() {
		t.Fatalf("expected idle after clear, got %+v", got)
	}

	// Clearing twice is a no-op.
	if err := store.Clear(ctx, 42); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
