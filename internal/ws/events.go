package ws

import (
	"encoding/json"
	"time"

	"github.com/lalith-99/relay/internal/chat"
)

// Event types — client → server
const (
	EventTypeChannelJoin  = "channel.join"
	EventTypeChannelLeave = "channel.leave"
	EventTypePing         = "ping"
)

// Event types — server → client
const (
	EventTypeSnapshot = "snapshot"
	EventTypePresence = "presence"
	EventTypePong     = "pong"
	EventTypeError    = "error"
)

// Event is the envelope for all websocket traffic, both directions.
type Event struct {
	Type      string          `json:"type"`
	ChannelID string          `json:"channel_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type JoinPayload struct {
	ChannelID string `json:"channel_id"`
}

// --- Server → Client payloads ---

// SnapshotPayload carries the full grouped view of the client's active
// channel. The server pushes one on join and again on every change —
// never deltas, so the client replaces its view wholesale and there is no
// incremental state to corrupt.
type SnapshotPayload struct {
	Days []chat.DayGroup `json:"days"`
}

type PresencePayload struct {
	UserID string `json:"user_id"`
	Status string `json:"status"` // "online" | "offline"
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent builds a server→client event stamped with the current time.
func NewEvent(eventType, channelID string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		ChannelID: channelID,
		Payload:   data,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}
