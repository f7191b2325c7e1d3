// Package events pushes monitor transitions and notifications to connected WebSocket clients.
package events

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/steamstat/steamstat/internal/monitor"
	"github.com/steamstat/steamstat/internal/notify"
)

const (
	// MessageEvent carries a monitor.Event.
	MessageEvent = "event"

	// MessageNotification carries a notify.Notification.
	MessageNotification = "notification"

	broadcastBuffer = 256
)

// Message is the envelope written to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub tracks connected clients and fans messages out to them.
// NewHub should be used to create instances of Hub, and Run must be running for messages to flow.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     hclog.Logger
}

// NewHub creates a hub.
func NewHub(logger hclog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.Named("events"),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	h.logger.Info("Event hub started")
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client registered", "total_clients", total)

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client unregistered", "total_clients", total)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					h.drop(client)
					h.logger.Warn("Client channel full, disconnected")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues msg for every client, dropping it when the queue is full.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Broadcast channel full, dropping message", "type", msg.Type)
	}
}

// Dispatch implements notify.Dispatcher.
func (h *Hub) Dispatch(_ context.Context, n notify.Notification) error {
	h.Broadcast(Message{Type: MessageNotification, Data: n})
	return nil
}

// Relay forwards monitor events to clients until the channel closes or ctx is cancelled.
func (h *Hub) Relay(ctx context.Context, events <-chan monitor.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.Broadcast(Message{Type: MessageEvent, Data: ev})
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// drop must be called with mu held.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	for client := range h.clients {
		h.drop(client)
	}
	h.mu.Unlock()
	close(h.done)
	h.logger.Info("Event hub stopped")
}
