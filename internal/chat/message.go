package chat

import (
	"encoding/json"
	"fmt"
)

// Message is a single chat message in the live store.
//
// Unlike the directory entities, message IDs are strings rather than
// uuid.UUID: the live store assigns them, and DM channel IDs (which embed
// two user IDs) are strings too — the chat plane deals in opaque string
// identifiers throughout.
//
// A tombstoned message keeps its slot in the store with an empty value.
// The codec decodes that slot to a record with Deleted set, so consumers
// can tell "deleted" apart from "never existed". The reconciler drops
// tombstones before anything renders.
type Message struct {
	ID           string              `json:"id,omitempty"`
	ChannelID    string              `json:"channel_id"`
	AccountID    string              `json:"account_id"`
	UserID       string              `json:"user_id"`
	Content      string              `json:"content"`
	Timestamp    Timestamp           `json:"timestamp"`
	Participants []string            `json:"participants,omitempty"`
	Reactions    map[string]Reaction `json:"reactions,omitempty"`
	Edited       bool                `json:"edited,omitempty"`
	EditedAt     *Timestamp          `json:"edited_at,omitempty"`
	Deleted      bool                `json:"-"`
}

// Reaction is one emoji's reaction record on a message: the emoji itself
// plus the set of users who applied it. Users is a set — a user appears at
// most once per emoji.
type Reaction struct {
	Emoji string   `json:"emoji"`
	Users []string `json:"users"`
}

// HasUser reports whether userID is in the reaction's member set.
func (r Reaction) HasUser(userID string) bool {
	for _, u := range r.Users {
		if u == userID {
			return true
		}
	}
	return false
}

// AddReaction puts userID into emoji's reaction set. Idempotent: adding a
// user who already reacted with this emoji leaves the set unchanged.
func (m *Message) AddReaction(emoji, userID string) {
	r, ok := m.Reactions[emoji]
	if !ok {
		if m.Reactions == nil {
			m.Reactions = make(map[string]Reaction)
		}
		m.Reactions[emoji] = Reaction{Emoji: emoji, Users: []string{userID}}
		return
	}
	if r.HasUser(userID) {
		return
	}
	r.Users = append(r.Users, userID)
	m.Reactions[emoji] = r
}

// RemoveReaction takes userID out of emoji's reaction set. Removing a
// reaction that was never added is a no-op. A reaction whose member set
// empties is removed entirely, and an empty Reactions map collapses to
// nil so it drops off the wire.
func (m *Message) RemoveReaction(emoji, userID string) {
	r, ok := m.Reactions[emoji]
	if !ok || !r.HasUser(userID) {
		return
	}
	users := make([]string, 0, len(r.Users)-1)
	for _, u := range r.Users {
		if u != userID {
			users = append(users, u)
		}
	}
	if len(users) == 0 {
		delete(m.Reactions, emoji)
		if len(m.Reactions) == 0 {
			m.Reactions = nil
		}
		return
	}
	r.Users = users
	m.Reactions[emoji] = r
}

// ToggleReaction flips userID's membership in emoji's reaction set.
func (m *Message) ToggleReaction(emoji, userID string) {
	if r, ok := m.Reactions[emoji]; ok && r.HasUser(userID) {
		m.RemoveReaction(emoji, userID)
		return
	}
	m.AddReaction(emoji, userID)
}

// EncodeMessage serializes a message for the live store.
func EncodeMessage(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return data, nil
}

// DecodeMessage deserializes one store record. An empty value is a
// tombstone and decodes to a Deleted record carrying only the id.
func DecodeMessage(id string, value []byte) (Message, error) {
	if len(value) == 0 {
		return Message{ID: id, Deleted: true}, nil
	}
	var m Message
	if err := json.Unmarshal(value, &m); err != nil {
		return Message{}, fmt.Errorf("decode message %s: %w", id, err)
	}
	m.ID = id
	return m, nil
}
