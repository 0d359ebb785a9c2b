package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lalith-99/relay/internal/store"
	"go.uber.org/zap"
)

// ErrEmptyMessage is returned by Send when the trimmed content is empty.
// Known-invalid input never reaches the store.
var ErrEmptyMessage = errors.New("chat: message content is empty")

// ErrMessageNotFound is returned for edits, deletes, and reaction toggles
// against a missing or tombstoned message.
var ErrMessageNotFound = errors.New("chat: message not found")

// Gateway is the sole component that talks to the live store for channel
// message collections. Handlers and the websocket layer go through it —
// never through the store directly — so subscription lifecycle and the
// wire codec live in exactly one place.
//
// The gateway does not retry failed operations; store errors surface to
// the caller, and recovery (a retry button, a logged diagnostic) is the
// call site's decision.
type Gateway struct {
	store  store.LiveStore
	logger *zap.Logger
}

func NewGateway(s store.LiveStore, logger *zap.Logger) *Gateway {
	return &Gateway{store: s, logger: logger}
}

// Subscription is a live attachment to one channel's message collection.
// Close detaches it; closing more than once, or after the subscription was
// superseded by a channel switch, is safe. A snapshot that arrives after
// Close is dropped, never delivered.
type Subscription struct {
	cancel store.CancelFunc
	closed atomic.Bool
	once   sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.cancel()
	})
}

// Draft is a message as composed by a client, before the store assigns an
// id and timestamp.
type Draft struct {
	UserID       string
	AccountID    string
	Content      string
	Participants []string
}

// Subscribe attaches onSnapshot to channelID. The callback receives the
// full decoded message set — tombstones included — on every change, plus
// once immediately with the current contents. Records that fail to decode
// are skipped with a warning rather than failing the subscription.
func (g *Gateway) Subscribe(ctx context.Context, channelID string, onSnapshot func([]Message)) (*Subscription, error) {
	sub := &Subscription{}

	cancel, err := g.store.Subscribe(ctx, channelID, func(snap store.Snapshot) {
		if sub.closed.Load() {
			return
		}
		onSnapshot(g.decode(channelID, snap))
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe channel %s: %w", channelID, err)
	}

	sub.cancel = cancel
	return sub, nil
}

// Fetch reads the channel's current message set once, without subscribing.
func (g *Gateway) Fetch(ctx context.Context, channelID string) ([]Message, error) {
	snap, err := g.store.Read(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	return g.decode(channelID, snap), nil
}

// Send validates and appends a new message. Content is trimmed; an empty
// result is rejected before any store traffic. The returned message
// carries the store-assigned id and the server timestamp.
//
// Send resolving means the write is queued — the confirming snapshot may
// arrive before or after, and the reconciler's dedupe absorbs either
// ordering.
func (g *Gateway) Send(ctx context.Context, channelID string, draft Draft) (Message, error) {
	content := strings.TrimSpace(draft.Content)
	if content == "" {
		return Message{}, ErrEmptyMessage
	}

	msg := Message{
		ChannelID:    channelID,
		AccountID:    draft.AccountID,
		UserID:       draft.UserID,
		Content:      content,
		Timestamp:    ServerNow(),
		Participants: draft.Participants,
	}
	value, err := EncodeMessage(msg)
	if err != nil {
		return Message{}, err
	}

	id, err := g.store.Push(ctx, channelID, value)
	if err != nil {
		return Message{}, fmt.Errorf("send to channel %s: %w", channelID, err)
	}
	msg.ID = id
	return msg, nil
}

// Edit replaces a message's content and marks it edited. Only the content
// and edit fields are touched; reactions applied concurrently by other
// clients survive because the store merges at the field level.
func (g *Gateway) Edit(ctx context.Context, channelID, messageID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}
	return g.merge(ctx, channelID, messageID, func(m *Message) {
		m.Content = content
		m.Edited = true
		at := ServerNow()
		m.EditedAt = &at
	})
}

// ToggleReaction flips userID's membership in one emoji's reaction set.
// Set semantics: toggling on twice leaves one membership; toggling an
// absent reaction off is a no-op. The merge touches only that one emoji's
// member set.
func (g *Gateway) ToggleReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	return g.merge(ctx, channelID, messageID, func(m *Message) {
		m.ToggleReaction(emoji, userID)
	})
}

// Delete tombstones a message: the slot stays, its value is cleared, and
// subscribers observe a deletion distinguishable from "never existed".
func (g *Gateway) Delete(ctx context.Context, channelID, messageID string) error {
	err := g.store.Tombstone(ctx, channelID, messageID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("delete message %s/%s: %w", channelID, messageID, err)
	}
	return nil
}

func (g *Gateway) merge(ctx context.Context, channelID, messageID string, mutate func(*Message)) error {
	err := g.store.Merge(ctx, channelID, messageID, func(old []byte) ([]byte, error) {
		m, err := DecodeMessage(messageID, old)
		if err != nil {
			return nil, err
		}
		mutate(&m)
		return EncodeMessage(m)
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("update message %s/%s: %w", channelID, messageID, err)
	}
	return nil
}

func (g *Gateway) decode(channelID string, snap store.Snapshot) []Message {
	msgs := make([]Message, 0, len(snap))
	for _, rec := range snap {
		m, err := DecodeMessage(rec.ID, rec.Value)
		if err != nil {
			// One malformed record must not take down the whole channel.
			g.logger.Warn("skipping malformed message record",
				zap.String("channel", channelID),
				zap.String("message_id", rec.ID),
				zap.Error(err))
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs
}
