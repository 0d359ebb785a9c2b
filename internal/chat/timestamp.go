package chat

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is the instant a message was created.
//
// The wire format has two shapes: a plain number (epoch milliseconds,
// written by clients) and a server-assigned handle {"seconds": s, "nanos": n}
// (written by the store when it stamps a message). Instead of duck-typing
// "does this look like a handle?" everywhere, the shape is decided once at
// the JSON boundary and carried as a closed two-variant value. Everything
// downstream calls Millis() and never looks at the variant again.
type Timestamp struct {
	kind    tsKind
	millis  int64
	seconds int64
	nanos   int64
}

type tsKind uint8

const (
	tsMillis tsKind = iota
	tsServer
)

// EpochMillis builds the client-clock variant.
func EpochMillis(ms int64) Timestamp {
	return Timestamp{kind: tsMillis, millis: ms}
}

// ServerTime builds the server-handle variant.
func ServerTime(seconds, nanos int64) Timestamp {
	return Timestamp{kind: tsServer, seconds: seconds, nanos: nanos}
}

// ServerNow stamps the current server clock as a server handle.
func ServerNow() Timestamp {
	now := time.Now()
	return ServerTime(now.Unix(), int64(now.Nanosecond()))
}

// Millis normalizes either variant to epoch milliseconds. This is the only
// representation used for ordering and grouping. Pure; for the millis
// variant it returns the stored value unchanged, so normalization is
// idempotent.
func (t Timestamp) Millis() int64 {
	if t.kind == tsServer {
		return t.seconds*1000 + t.nanos/int64(time.Millisecond)
	}
	return t.millis
}

// IsServer reports whether the timestamp was assigned by the store.
// The reconciler uses this to pick the authoritative copy when an
// optimistic client record and the confirmed record briefly coexist.
func (t Timestamp) IsServer() bool {
	return t.kind == tsServer
}

// Time converts to a time.Time (millisecond precision).
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(t.Millis())
}

type serverHandle struct {
	Seconds int64 `json:"seconds"`
	Nanos   int64 `json:"nanos"`
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.kind == tsServer {
		return json.Marshal(serverHandle{Seconds: t.seconds, Nanos: t.nanos})
	}
	return json.Marshal(t.millis)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '{' {
		var h serverHandle
		if err := json.Unmarshal(data, &h); err != nil {
			return fmt.Errorf("decode server timestamp: %w", err)
		}
		*t = ServerTime(h.Seconds, h.Nanos)
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("decode timestamp millis: %w", err)
	}
	*t = EpochMillis(ms)
	return nil
}
