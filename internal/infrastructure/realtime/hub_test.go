package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restopos/internal/domain/events"
)

func newTestServer(t *testing.T, hub *Hub) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastsToAllClients(t *testing.T) {
	hub := NewHub(nil)
	url := newTestServer(t, hub)

	a := dial(t, url)
	b := dial(t, url+"?role=kitchen")
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), events.OrderNew, map[string]string{"tableCode": "T1"}))

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Event string            `json:"event"`
			Data  map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, events.OrderNew, msg.Event)
		assert.Equal(t, "T1", msg.Data["tableCode"])
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(nil)
	url := newTestServer(t, hub)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	slow := &client{hub: hub, send: make(chan []byte, 1), role: "test"}
	hub.register(slow)

	require.NoError(t, hub.Publish(context.Background(), events.OrderUpdated, nil))
	assert.Equal(t, 1, hub.ClientCount())

	// Buffer is full now.
	require.NoError(t, hub.Publish(context.Background(), events.OrderUpdated, nil))
	assert.Equal(t, 0, hub.ClientCount())

	_, open := <-slow.send
	assert.True(t, open, "buffered message is still readable")
	_, open = <-slow.send
	assert.False(t, open)
}

func TestHub_PublishWithoutClients(t *testing.T) {
	hub := NewHub(nil)
	assert.NoError(t, hub.Publish(context.Background(), events.OrderStatusChanged, nil))
	hub.Close()
}
