package chat

import "testing"

func TestReconcileDedupesByID(t *testing.T) {
	// An optimistic local copy (client millis) and the server-confirmed
	// copy coexist momentarily; the confirmed one must win regardless of
	// snapshot order.
	optimistic := Message{ID: "m1", UserID: "u1", Content: "draft", Timestamp: EpochMillis(1000)}
	confirmed := Message{ID: "m1", UserID: "u1", Content: "final", Timestamp: ServerTime(1, 0)}

	for _, snap := range [][]Message{
		{optimistic, confirmed},
		{confirmed, optimistic},
	} {
		out := Reconcile(snap)
		if len(out) != 1 {
			t.Fatalf("Reconcile kept %d copies of m1, want 1", len(out))
		}
		if out[0].Content != "final" {
			t.Fatalf("Reconcile kept %q, want the server-confirmed copy", out[0].Content)
		}
	}
}

func TestReconcileOrdersByTimestamp(t *testing.T) {
	snap := []Message{
		{ID: "c", Timestamp: EpochMillis(3000)},
		{ID: "a", Timestamp: EpochMillis(1000)},
		{ID: "d", Timestamp: ServerTime(2, 0)}, // 2000ms, mixed variant
		{ID: "b", Timestamp: EpochMillis(1500)},
	}

	out := Reconcile(snap)
	for i := 1; i < len(out); i++ {
		if out[i].Timestamp.Millis() < out[i-1].Timestamp.Millis() {
			t.Fatalf("output not non-decreasing at %d: %d after %d",
				i, out[i].Timestamp.Millis(), out[i-1].Timestamp.Millis())
		}
	}
	if out[0].ID != "a" || out[3].ID != "c" {
		t.Fatalf("unexpected order: %s ... %s", out[0].ID, out[3].ID)
	}
}

func TestReconcileBreaksTiesByID(t *testing.T) {
	// Identical timestamps: order must not depend on arrival order.
	snap := []Message{
		{ID: "z", Timestamp: EpochMillis(1000)},
		{ID: "a", Timestamp: EpochMillis(1000)},
		{ID: "m", Timestamp: EpochMillis(1000)},
	}

	out := Reconcile(snap)
	if out[0].ID != "a" || out[1].ID != "m" || out[2].ID != "z" {
		t.Fatalf("tie order = %s, %s, %s; want a, m, z", out[0].ID, out[1].ID, out[2].ID)
	}
}

func TestReconcileDropsTombstones(t *testing.T) {
	snap := []Message{
		{ID: "m1", Timestamp: EpochMillis(1000)},
		{ID: "m2", Deleted: true},
	}

	out := Reconcile(snap)
	if len(out) != 1 || out[0].ID != "m1" {
		t.Fatalf("Reconcile = %+v, want only m1", out)
	}
}
