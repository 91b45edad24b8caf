// Package websocket pushes live snapshots to browsers over websocket
// connections. Each connection streams from its own source; the hub tracks
// the open connections per topic and closes them all on shutdown.
package websocket

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Hub maintains the set of active clients
type Hub struct {
	// Registered clients organized by topic
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// Closed once Run returns
	done chan struct{}

	// Guards clients for readers outside Run
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles client registrations until ctx ends, then closes every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes it
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.topic]; !ok {
		h.clients[client.topic] = make(map[*Client]bool)
	}
	h.clients[client.topic][client] = true

	h.logger.Info().
		Str("topic", client.topic).
		Str("userID", client.userID).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.topic]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	client.close()
	if len(clients) == 0 {
		delete(h.clients, client.topic)
	}

	h.logger.Info().
		Str("topic", client.topic).
		Str("userID", client.userID).
		Msg("Client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for topic, clients := range h.clients {
		for client := range clients {
			client.close()
		}
		delete(h.clients, topic)
	}
	h.logger.Info().Msg("All live clients closed")
}

// ClientsCount returns the number of connected clients for a topic
func (h *Hub) ClientsCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}
