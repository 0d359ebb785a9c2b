package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/relay/internal/access"
	"github.com/lalith-99/relay/internal/chat"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256

	authorizeTimeout = 5 * time.Second
)

// Client is one websocket connection.
//
// A client views at most ONE channel at a time. Joining a channel closes
// the previous live-store subscription BEFORE opening the next one, so a
// late snapshot from the superseded channel can never land in the new
// channel's view — and the gateway's Subscription drops anything that
// fires after Close regardless.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	userID  uuid.UUID
	gateway *chat.Gateway
	access  *access.Checker
	logger  *zap.Logger

	send chan []byte

	mu      sync.Mutex
	sub     *chat.Subscription
	channel string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, gateway *chat.Gateway, checker *access.Checker, logger *zap.Logger) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		userID:  userID,
		gateway: gateway,
		access:  checker,
		logger:  logger,
		send:    make(chan []byte, sendBufSize),
	}
}

// ReadPump reads events from the socket until the connection dies.
// Leaving the pump detaches the channel subscription and unregisters from
// the hub — the subscription never outlives the connection.
func (c *Client) ReadPump() {
	defer func() {
		c.detach()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("ws read error",
					zap.String("user_id", c.userID.String()), zap.Error(err))
			}
			return
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			c.sendError("INVALID_EVENT", "malformed event")
			continue
		}
		c.handleEvent(&event)
	}
}

// WritePump drains the send queue to the socket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeChannelJoin:
		var p JoinPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ChannelID == "" {
			c.sendError("INVALID_PAYLOAD", "invalid channel.join payload")
			return
		}
		c.joinChannel(p.ChannelID)

	case EventTypeChannelLeave:
		c.detach()

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// joinChannel switches the client's view to channelID.
func (c *Client) joinChannel(channelID string) {
	ctx, cancel := context.WithTimeout(context.Background(), authorizeTimeout)
	ok, err := c.access.CanAccess(ctx, channelID, c.userID)
	cancel()
	if err != nil {
		c.logger.Error("ws channel access check failed",
			zap.String("channel", channelID), zap.Error(err))
		c.sendError("INTERNAL", "failed to check channel access")
		return
	}
	if !ok {
		c.sendError("FORBIDDEN", "not a member of this channel")
		return
	}

	// Detach before attaching: the old subscription must be gone before
	// the new channel's snapshots start flowing.
	c.detach()

	sub, err := c.gateway.Subscribe(context.Background(), channelID, func(msgs []chat.Message) {
		c.pushSnapshot(channelID, msgs)
	})
	if err != nil {
		c.logger.Error("ws subscribe failed",
			zap.String("channel", channelID), zap.Error(err))
		c.sendError("SUBSCRIBE_FAILED", "could not subscribe to channel")
		return
	}

	c.mu.Lock()
	c.sub = sub
	c.channel = channelID
	c.mu.Unlock()

	c.logger.Debug("ws channel joined",
		zap.String("user_id", c.userID.String()),
		zap.String("channel", channelID))
}

// detach closes the active subscription, if any. Safe to call when there
// is none, and safe to call repeatedly — Subscription.Close is idempotent.
func (c *Client) detach() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.channel = ""
	c.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// pushSnapshot reconciles and groups a raw snapshot and queues it for the
// client. Runs on the store's delivery goroutine.
func (c *Client) pushSnapshot(channelID string, msgs []chat.Message) {
	groups := chat.GroupMessages(chat.Reconcile(msgs), time.Local)
	evt, err := NewEvent(EventTypeSnapshot, channelID, SnapshotPayload{Days: groups})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		// Queue full. The next snapshot carries the full state anyway, so
		// dropping one loses nothing permanent.
		c.logger.Warn("ws send queue full, dropping snapshot",
			zap.String("user_id", c.userID.String()),
			zap.String("channel", channelID))
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong, Timestamp: time.Now().UnixMilli()})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, "", ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
