package errorlog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "bot.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return store
}

func TestRecordThenLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	details := "tool failed: ERROR: unable to download video data"
	before := time.Now().Unix()

	id, err := store.Record(ctx, details)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("Record returned nil id")
	}

	entry, err := store.Lookup(ctx, id)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry.ID != id {
		t.Errorf("entry id = %s, want %s", entry.ID, id)
	}
	if entry.Details != details {
		t.Errorf("details = %q, want %q", entry.Details, details)
	}
	after := time.Now().Unix()
	if entry.CreatedAt < before || entry.CreatedAt > after {
		t.Errorf("createdAt = %d, want within [%d, %d]", entry.CreatedAt, before, after)
	}
}

func TestLookupUnknownID(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Lookup(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestInitializeIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Record(ctx, "kept across re-init")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}

	if _, err := store.Lookup(ctx, id); err != nil {
		t.Errorf("entry lost after re-initialize: %v", err)
	}
}

func TestEntriesAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Record(ctx, "first failure")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	second, err := store.Record(ctx, "second failure")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if first == second {
		t.Fatal("two records share an id")
	}

	entry, err := store.Lookup(ctx, second)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry.Details != "second failure" {
		t.Errorf("details = %q, want %q", entry.Details, "second failure")
	}
}
