package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryPushAssignsDistinctIDs(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id1, err := m.Push(ctx, "ch", []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	id2, err := m.Push(ctx, "ch", []byte(`{"a":2}`))
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if id1 == "" || id1 == id2 {
		t.Fatalf("ids not distinct: %q, %q", id1, id2)
	}
}

func TestMemorySubscribeDeliversInitialAndChanges(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Push(ctx, "ch", []byte(`1`)); err != nil {
		t.Fatalf("push: %v", err)
	}

	var snaps []Snapshot
	cancel, err := m.Subscribe(ctx, "ch", func(s Snapshot) { snaps = append(snaps, s) })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if len(snaps) != 1 || len(snaps[0]) != 1 {
		t.Fatalf("no initial snapshot: %+v", snaps)
	}

	if _, err := m.Push(ctx, "ch", []byte(`2`)); err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(snaps) != 2 || len(snaps[1]) != 2 {
		t.Fatalf("change not delivered as full snapshot: %+v", snaps)
	}
}

func TestMemoryCancelIsIdempotent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	count := 0
	cancel, err := m.Subscribe(ctx, "ch", func(Snapshot) { count++ })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	cancel()
	cancel()

	before := count
	if _, err := m.Push(ctx, "ch", []byte(`1`)); err != nil {
		t.Fatalf("push: %v", err)
	}
	if count != before {
		t.Fatal("cancelled subscription still notified")
	}
}

func TestMemoryTombstoneKeepsSlot(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Push(ctx, "ch", []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := m.Tombstone(ctx, "ch", id); err != nil {
		t.Fatalf("tombstone: %v", err)
	}

	snap, err := m.Read(ctx, "ch")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(snap) != 1 {
		t.Fatalf("slot removed, want tombstone: %+v", snap)
	}
	if snap[0].ID != id || len(snap[0].Value) != 0 {
		t.Fatalf("tombstone shape wrong: %+v", snap[0])
	}

	if err := m.Tombstone(ctx, "ch", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("tombstone missing err = %v, want ErrNotFound", err)
	}
}

func TestMemoryMerge(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Push(ctx, "ch", []byte(`old`))
	if err != nil {
		t.Fatalf("push: %v", err)
	}

	err = m.Merge(ctx, "ch", id, func(old []byte) ([]byte, error) {
		if string(old) != "old" {
			t.Fatalf("merge saw %q, want old", old)
		}
		return []byte(`new`), nil
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	snap, _ := m.Read(ctx, "ch")
	if string(snap[0].Value) != "new" {
		t.Fatalf("merge not applied: %q", snap[0].Value)
	}

	if err := m.Merge(ctx, "ch", "missing", func(b []byte) ([]byte, error) { return b, nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("merge missing err = %v, want ErrNotFound", err)
	}

	// Merging a tombstoned record is refused — edits to deleted messages
	// must not resurrect them.
	if err := m.Tombstone(ctx, "ch", id); err != nil {
		t.Fatalf("tombstone: %v", err)
	}
	if err := m.Merge(ctx, "ch", id, func(b []byte) ([]byte, error) { return b, nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("merge tombstoned err = %v, want ErrNotFound", err)
	}
}

func TestMemoryChannelsAreIsolated(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	notified := 0
	cancel, err := m.Subscribe(ctx, "ch-a", func(Snapshot) { notified++ })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	before := notified
	if _, err := m.Push(ctx, "ch-b", []byte(`1`)); err != nil {
		t.Fatalf("push: %v", err)
	}
	if notified != before {
		t.Fatal("subscriber notified for a different channel")
	}
}
