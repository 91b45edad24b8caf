package websocket

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Seq int `json:"seq"`
}

func startServer(t *testing.T, ctx context.Context, src Source, released *atomic.Int32) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	handler := NewHandler(hub, nil, zerolog.Nop())
	r := gin.New()
	r.GET("/live", func(c *gin.Context) {
		handler.Stream(c, "all", "u1", src, func() { released.Add(1) })
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
}

func TestHandler_StreamsSourceMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := make(chan int)
	src := func(ctx context.Context) (interface{}, error) {
		select {
		case n := <-feed:
			return snapshot{Seq: n}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	var released atomic.Int32
	hub, url := startServer(t, ctx, src, &released)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for i := 1; i <= 2; i++ {
		feed <- i
		var got snapshot
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, i, got.Seq)
	}
	assert.Equal(t, 1, hub.ClientsCount("all"))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	assert.Eventually(t, func() bool {
		return released.Load() == 1 && hub.ClientsCount("all") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_SourceErrorClosesConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("feed closed")
	}
	var released atomic.Int32
	hub, url := startServer(t, ctx, src, &released)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))

	assert.Eventually(t, func() bool {
		return released.Load() == 1 && hub.ClientsCount("all") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	src := func(ctx context.Context) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	var released atomic.Int32
	hub, url := startServer(t, ctx, src, &released)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientsCount("all") == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Eventually(t, func() bool { return released.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}
