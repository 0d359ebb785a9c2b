package chat

import (
	"encoding/json"
	"testing"
)

func TestMillisNormalizationIdempotent(t *testing.T) {
	cases := []int64{0, 1, 1000, 1700000000000, -5}

	for _, ms := range cases {
		ts := EpochMillis(ms)
		if got := ts.Millis(); got != ms {
			t.Fatalf("EpochMillis(%d).Millis() = %d, want %d", ms, got, ms)
		}
		// Normalizing an already-normalized value changes nothing.
		if got := EpochMillis(ts.Millis()).Millis(); got != ms {
			t.Fatalf("double normalize of %d = %d, want %d", ms, got, ms)
		}
	}
}

func TestServerTimeConversion(t *testing.T) {
	cases := []struct {
		name    string
		seconds int64
		nanos   int64
		want    int64
	}{
		{name: "whole second", seconds: 1, nanos: 0, want: 1000},
		{name: "sub-millisecond nanos truncate", seconds: 1, nanos: 500_000, want: 1000},
		{name: "two millis of nanos", seconds: 1, nanos: 2_000_000, want: 1002},
		{name: "epoch", seconds: 0, nanos: 0, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := ServerTime(tc.seconds, tc.nanos)
			if got := ts.Millis(); got != tc.want {
				t.Fatalf("ServerTime(%d, %d).Millis() = %d, want %d", tc.seconds, tc.nanos, got, tc.want)
			}
			if !ts.IsServer() {
				t.Fatalf("ServerTime(%d, %d).IsServer() = false", tc.seconds, tc.nanos)
			}
		})
	}
}

func TestTimestampJSONRoundTrip(t *testing.T) {
	t.Run("millis variant stays a number", func(t *testing.T) {
		data, err := json.Marshal(EpochMillis(1234))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(data) != "1234" {
			t.Fatalf("marshal millis = %s, want 1234", data)
		}

		var ts Timestamp
		if err := json.Unmarshal(data, &ts); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ts.IsServer() || ts.Millis() != 1234 {
			t.Fatalf("round trip = %+v, want millis 1234", ts)
		}
	})

	t.Run("server variant stays a handle", func(t *testing.T) {
		data, err := json.Marshal(ServerTime(7, 3_000_000))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var ts Timestamp
		if err := json.Unmarshal(data, &ts); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !ts.IsServer() {
			t.Fatal("round trip lost the server variant")
		}
		if got := ts.Millis(); got != 7003 {
			t.Fatalf("round trip millis = %d, want 7003", got)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		var ts Timestamp
		if err := json.Unmarshal([]byte(`"noon"`), &ts); err == nil {
			t.Fatal("unmarshal of a string succeeded, want error")
		}
	})
}
