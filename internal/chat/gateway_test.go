package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lalith-99/relay/internal/store"
	"go.uber.org/zap"
)

// The memory store delivers snapshots synchronously, so these tests can
// assert on captured snapshots without sleeps or channels.

func newTestGateway() (*Gateway, *store.Memory) {
	mem := store.NewMemory()
	return NewGateway(mem, zap.NewNop()), mem
}

type snapshotLog struct {
	snaps [][]Message
}

func (l *snapshotLog) record(msgs []Message) {
	l.snaps = append(l.snaps, msgs)
}

func (l *snapshotLog) latest() []Message {
	if len(l.snaps) == 0 {
		return nil
	}
	return l.snaps[len(l.snaps)-1]
}

func TestSendDeleteEndToEnd(t *testing.T) {
	g, _ := newTestGateway()
	ctx := context.Background()

	var log snapshotLog
	sub, err := g.Subscribe(ctx, "general", log.record)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	sent, err := g.Send(ctx, "general", Draft{UserID: "u1", AccountID: "t1", Content: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.ID == "" {
		t.Fatal("send did not return a store-assigned id")
	}

	snap := log.latest()
	if len(snap) != 1 || snap[0].Content != "hi" || snap[0].ID != sent.ID {
		t.Fatalf("snapshot after send = %+v, want one message %q", snap, sent.ID)
	}

	if err := g.Delete(ctx, "general", sent.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The slot survives as a tombstone, distinguishable from absence...
	snap = log.latest()
	if len(snap) != 1 || !snap[0].Deleted {
		t.Fatalf("snapshot after delete = %+v, want one tombstone", snap)
	}

	// ...and nothing downstream renders it.
	days := GroupMessages(Reconcile(snap), time.UTC)
	if len(days) != 0 {
		t.Fatalf("grouping still shows the deleted message: %+v", days)
	}
}

func TestSendRejectsEmptyContentBeforeStore(t *testing.T) {
	g, mem := newTestGateway()
	ctx := context.Background()

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := g.Send(ctx, "general", Draft{UserID: "u1", Content: content})
		if !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("Send(%q) err = %v, want ErrEmptyMessage", content, err)
		}
	}

	snap, err := mem.Read(ctx, "general")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(snap) != 0 {
		t.Fatalf("invalid sends reached the store: %d records", len(snap))
	}
}

func TestSendTrimsContent(t *testing.T) {
	g, _ := newTestGateway()

	sent, err := g.Send(context.Background(), "general", Draft{UserID: "u1", Content: "  hello  "})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.Content != "hello" {
		t.Fatalf("content = %q, want trimmed %q", sent.Content, "hello")
	}
}

func TestEditPreservesConcurrentReactions(t *testing.T) {
	g, _ := newTestGateway()
	ctx := context.Background()

	sent, err := g.Send(ctx, "general", Draft{UserID: "u1", Content: "first"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	// Another client reacts, then the author edits. The edit's merge must
	// not clobber the reaction.
	if err := g.ToggleReaction(ctx, "general", sent.ID, "👍", "u2"); err != nil {
		t.Fatalf("react: %v", err)
	}
	if err := g.Edit(ctx, "general", sent.ID, "second"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	msgs, err := g.Fetch(ctx, "general")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	out := Reconcile(msgs)
	if len(out) != 1 {
		t.Fatalf("got %d messages, want 1", len(out))
	}
	m := out[0]
	if m.Content != "second" || !m.Edited || m.EditedAt == nil {
		t.Fatalf("edit fields wrong: %+v", m)
	}
	if !m.Reactions["👍"].HasUser("u2") {
		t.Fatalf("edit clobbered the reaction: %+v", m.Reactions)
	}
}

func TestToggleReactionSetSemantics(t *testing.T) {
	g, _ := newTestGateway()
	ctx := context.Background()

	sent, err := g.Send(ctx, "general", Draft{UserID: "u1", Content: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	fetchOne := func() Message {
		t.Helper()
		msgs, err := g.Fetch(ctx, "general")
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		out := Reconcile(msgs)
		if len(out) != 1 {
			t.Fatalf("got %d messages, want 1", len(out))
		}
		return out[0]
	}

	if err := g.ToggleReaction(ctx, "general", sent.ID, "🎉", "u2"); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !fetchOne().Reactions["🎉"].HasUser("u2") {
		t.Fatal("toggle on did not apply")
	}

	if err := g.ToggleReaction(ctx, "general", sent.ID, "🎉", "u2"); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if fetchOne().Reactions != nil {
		t.Fatalf("toggle off left reactions behind: %+v", fetchOne().Reactions)
	}
}

func TestMutationsOnMissingMessage(t *testing.T) {
	g, _ := newTestGateway()
	ctx := context.Background()

	if err := g.Edit(ctx, "general", "nope", "x"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("edit missing err = %v, want ErrMessageNotFound", err)
	}
	if err := g.Delete(ctx, "general", "nope"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("delete missing err = %v, want ErrMessageNotFound", err)
	}
	if err := g.ToggleReaction(ctx, "general", "nope", "👍", "u1"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("react missing err = %v, want ErrMessageNotFound", err)
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	g, _ := newTestGateway()
	ctx := context.Background()

	var log snapshotLog
	sub, err := g.Subscribe(ctx, "general", log.record)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sub.Close()
	sub.Close() // second close must be a no-op, not a panic

	before := len(log.snaps)
	if _, err := g.Send(ctx, "general", Draft{UserID: "u1", Content: "hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(log.snaps) != before {
		t.Fatal("closed subscription still received a snapshot")
	}
}

func TestChannelSwitchDropsStaleSnapshots(t *testing.T) {
	g, _ := newTestGateway()
	ctx := context.Background()

	// The unsubscribe-before-resubscribe discipline: after switching from
	// room-a to room-b, activity in room-a must not reach the view.
	var viewA, viewB snapshotLog
	subA, err := g.Subscribe(ctx, "room-a", viewA.record)
	if err != nil {
		t.Fatalf("subscribe a: %v", err)
	}

	subA.Close()
	subB, err := g.Subscribe(ctx, "room-b", viewB.record)
	if err != nil {
		t.Fatalf("subscribe b: %v", err)
	}
	defer subB.Close()

	seenA := len(viewA.snaps)
	if _, err := g.Send(ctx, "room-a", Draft{UserID: "u1", Content: "stale"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(viewA.snaps) != seenA {
		t.Fatal("superseded subscription observed the new channel era")
	}
	for _, snap := range viewB.snaps {
		for _, m := range snap {
			if m.Content == "stale" {
				t.Fatal("room-a message leaked into room-b's view")
			}
		}
	}
}

func TestMalformedRecordsAreSkipped(t *testing.T) {
	g, mem := newTestGateway()
	ctx := context.Background()

	if _, err := g.Send(ctx, "general", Draft{UserID: "u1", Content: "good"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := mem.Push(ctx, "general", []byte("{not json")); err != nil {
		t.Fatalf("push garbage: %v", err)
	}

	msgs, err := g.Fetch(ctx, "general")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "good" {
		t.Fatalf("fetch = %+v, want just the well-formed message", msgs)
	}
}
