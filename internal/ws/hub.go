package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub tracks connected websocket clients and fans presence out to them.
//
// Message snapshots do NOT route through the hub: each client owns its
// live-store subscription for whichever channel it joined, and snapshots
// flow straight from that subscription into the client's send queue. The
// hub only knows who is online.
type Hub struct {
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run is the hub's event loop. Call it in a goroutine; all access to the
// clients map happens on this goroutine, so the map needs no lock.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.userID] = client
			h.logger.Info("ws client connected",
				zap.String("user_id", client.userID.String()),
				zap.Int("total", len(h.clients)))
			h.broadcastPresence(client.userID, "online")

		case client := <-h.unregister:
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
				h.logger.Info("ws client disconnected",
					zap.String("user_id", client.userID.String()),
					zap.Int("total", len(h.clients)))
				h.broadcastPresence(client.userID, "offline")
			}
		}
	}
}

func (h *Hub) broadcastPresence(userID uuid.UUID, status string) {
	evt, err := NewEvent(EventTypePresence, "", PresencePayload{
		UserID: userID.String(),
		Status: status,
	})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	for _, client := range h.clients {
		if client.userID == userID {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Slow consumer; presence is best-effort, drop it.
		}
	}
}
