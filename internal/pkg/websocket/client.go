package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Peers only send control frames
	maxMessageSize = 4 * 1024
)

// Source yields the next message to push. It blocks until one is ready and
// returns an error once the stream should end.
type Source func(ctx context.Context) (interface{}, error)

// Client is a middleman between the websocket connection and its source
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Holds at most the newest unsent message
	send chan []byte

	mu     sync.Mutex
	closed bool

	topic  string
	userID string
	logger zerolog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, topic, userID string, logger zerolog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 1),
		topic:  topic,
		userID: userID,
		logger: logger,
	}
}

// push queues data, replacing a message the writer has not picked up yet
func (c *Client) push(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	for {
		select {
		case c.send <- data:
			return true
		default:
			select {
			case <-c.send:
			default:
			}
		}
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// sourcePump forwards source messages until the source fails or ctx ends
func (c *Client) sourcePump(ctx context.Context, src Source, release func()) {
	defer func() {
		release()
		c.hub.Unregister(c)
	}()

	for {
		msg, err := src(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Debug().Err(err).Str("topic", c.topic).Msg("Live source ended")
			}
			return
		}

		data, err := json.Marshal(msg)
		if err != nil {
			c.logger.Error().Err(err).Str("topic", c.topic).Msg("Failed to marshal live message")
			return
		}
		if !c.push(data) {
			return
		}
	}
}

// readPump discards inbound frames and notices when the peer goes away
func (c *Client) readPump(cancel context.CancelFunc) {
	defer func() {
		cancel()
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn().Err(err).Str("userID", c.userID).Str("topic", c.topic).Msg("Unexpected WebSocket close")
			}
			return
		}
	}
}

// writePump pumps queued messages to the websocket connection
func (c *Client) writePump() {
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
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
