package websocket

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler upgrades requests into live streams
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler. An empty allowedOrigins list
// or "*" accepts any origin.
func NewHandler(hub *Hub, allowedOrigins []string, logger zerolog.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	anyOrigin := len(allowed) == 0 || allowed["*"]

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return anyOrigin || origin == "" || allowed[origin]
			},
		},
		logger: logger,
	}
}

// Stream upgrades the request and pushes every message of src to the peer
// until either side ends. release is called exactly once, also when the
// upgrade fails.
func (h *Handler) Stream(c *gin.Context, topic, userID string, src Source, release func()) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		release()
		h.logger.Error().
			Err(err).
			Str("topic", topic).
			Str("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := newClient(h.hub, conn, topic, userID, h.logger)
	if !h.hub.Register(client) {
		release()
		conn.Close()
		return
	}

	// The request context ends when the handler returns.
	ctx, cancel := context.WithCancel(context.Background())

	go client.writePump()
	go client.readPump(cancel)
	go client.sourcePump(ctx, src, release)

	h.logger.Info().
		Str("topic", topic).
		Str("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
