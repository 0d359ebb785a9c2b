package chat

import (
	"testing"
	"time"
)

func msgAt(id, user string, millis int64) Message {
	return Message{ID: id, UserID: user, Content: "x", Timestamp: EpochMillis(millis)}
}

func TestBurstBoundaryAtFiveMinutes(t *testing.T) {
	const fiveMin = int64(5 * 60 * 1000)

	cases := []struct {
		name       string
		gap        int64
		wantBursts int
	}{
		{name: "gap exactly five minutes stays together", gap: fiveMin, wantBursts: 1},
		{name: "one millisecond over splits", gap: fiveMin + 1, wantBursts: 2},
		{name: "small gap stays together", gap: 1000, wantBursts: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msgs := []Message{
				msgAt("m1", "u1", 0),
				msgAt("m2", "u1", tc.gap),
			}
			days := GroupMessages(msgs, time.UTC)
			if len(days) != 1 {
				t.Fatalf("got %d date buckets, want 1", len(days))
			}
			if got := len(days[0].Bursts); got != tc.wantBursts {
				t.Fatalf("gap %dms: got %d bursts, want %d", tc.gap, got, tc.wantBursts)
			}
		})
	}
}

func TestAuthorChangeStartsBurst(t *testing.T) {
	msgs := []Message{
		msgAt("m1", "u1", 0),
		msgAt("m2", "u1", 1000),
		msgAt("m3", "u2", 2000),
		msgAt("m4", "u1", 3000),
	}

	days := GroupMessages(msgs, time.UTC)
	if len(days) != 1 {
		t.Fatalf("got %d date buckets, want 1", len(days))
	}
	bursts := days[0].Bursts
	if len(bursts) != 3 {
		t.Fatalf("got %d bursts, want 3", len(bursts))
	}
	if bursts[0].UserID != "u1" || bursts[1].UserID != "u2" || bursts[2].UserID != "u1" {
		t.Fatalf("burst authors = %s, %s, %s; want u1, u2, u1",
			bursts[0].UserID, bursts[1].UserID, bursts[2].UserID)
	}
	if len(bursts[0].Messages) != 2 {
		t.Fatalf("first burst has %d messages, want 2", len(bursts[0].Messages))
	}
}

func TestDateBucketsSortedOldestFirst(t *testing.T) {
	day := int64(24 * 60 * 60 * 1000)

	// Three distinct dates, deliberately out of chronological order.
	msgs := []Message{
		msgAt("m3", "u1", 2*day+1000),
		msgAt("m1", "u1", 1000),
		msgAt("m2", "u1", day+1000),
	}

	days := GroupMessages(msgs, time.UTC)
	if len(days) != 3 {
		t.Fatalf("got %d date buckets, want 3", len(days))
	}
	want := []string{"1970-01-01", "1970-01-02", "1970-01-03"}
	for i, w := range want {
		if days[i].Date != w {
			t.Fatalf("bucket %d = %s, want %s", i, days[i].Date, w)
		}
	}
}

func TestGroupingEdgeCases(t *testing.T) {
	t.Run("no messages, no buckets", func(t *testing.T) {
		if days := GroupMessages(nil, time.UTC); len(days) != 0 {
			t.Fatalf("got %d buckets for empty input", len(days))
		}
	})

	t.Run("single message, single single-message burst", func(t *testing.T) {
		days := GroupMessages([]Message{msgAt("m1", "u1", 1000)}, time.UTC)
		if len(days) != 1 || len(days[0].Bursts) != 1 || len(days[0].Bursts[0].Messages) != 1 {
			t.Fatalf("unexpected structure: %+v", days)
		}
	})

	t.Run("burst author is first message's author", func(t *testing.T) {
		days := GroupMessages([]Message{
			msgAt("m1", "u7", 0),
			msgAt("m2", "u7", 100),
		}, time.UTC)
		if days[0].Bursts[0].UserID != "u7" {
			t.Fatalf("burst author = %s, want u7", days[0].Bursts[0].UserID)
		}
	})

	t.Run("tombstones never render", func(t *testing.T) {
		days := GroupMessages([]Message{
			msgAt("m1", "u1", 0),
			{ID: "m2", Deleted: true},
		}, time.UTC)
		if len(days) != 1 || len(days[0].Bursts[0].Messages) != 1 {
			t.Fatalf("tombstone leaked into groups: %+v", days)
		}
	})
}
