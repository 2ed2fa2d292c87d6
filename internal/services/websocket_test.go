package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastToRoleAndUser(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	defer close(done)
	go hub.Run(done)

	adminID, userID := uuid.New(), uuid.New()
	admin := &Client{UserID: adminID, Role: "Admin", Send: make(chan []byte, 4), Hub: hub}
	member := &Client{UserID: userID, Role: "User", Send: make(chan []byte, 4), Hub: hub}
	hub.register <- admin
	hub.register <- member
	require.Eventually(t, func() bool { return hub.ConnectedClients() == 2 }, time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, hub.BroadcastToRole("Admin", "notification", map[string]string{"title": "New Booking"}))
	var msg WebSocketMessage
	require.NoError(t, json.Unmarshal(<-admin.Send, &msg))
	assert.Equal(t, "notification", msg.Type)
	assert.Empty(t, member.Send)

	assert.Equal(t, 1, hub.BroadcastToUser(userID, "notification", "hi"))
	assert.Len(t, member.Send, 1)

	hub.unregister <- member
	require.Eventually(t, func() bool { return hub.ConnectedClients() == 1 }, time.Second, 10*time.Millisecond)
	_, open := <-member.Send
	assert.True(t, open, "buffered message still readable")
	_, open = <-member.Send
	assert.False(t, open)
}

func TestHub_FullBufferDrops(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	defer close(done)
	go hub.Run(done)

	c := &Client{UserID: uuid.New(), Role: "Admin", Send: make(chan []byte, 1), Hub: hub}
	hub.register <- c
	require.Eventually(t, func() bool { return hub.ConnectedClients() == 1 }, time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, hub.BroadcastToRole("Admin", "notification", 1))
	assert.Equal(t, 0, hub.BroadcastToRole("Admin", "notification", 2))
}

func TestHandleWebSocket_DeliversToConnectedAdmin(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	defer close(done)
	go hub.Run(done)

	adminID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleWebSocket(hub, w, r, adminID, "Admin")
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ConnectedClients() == 1 }, time.Second, 10*time.Millisecond)
	hub.BroadcastToRole("Admin", "notification", map[string]string{"title": "Payment Failed"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WebSocketMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "notification", msg.Type)
	assert.Equal(t, "Payment Failed", msg.Data.(map[string]interface{})["title"])
}

func TestHub_StoppedHubDoesNotBlockPumps(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		hub.Run(done)
		close(stopped)
	}()

	c := &Client{UserID: uuid.New(), Role: "Admin", Send: make(chan []byte, 1), Hub: hub}
	require.True(t, hub.join(c))
	close(done)
	<-stopped

	left := make(chan struct{})
	go func() {
		hub.leave(c)
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after the hub stopped")
	}
	assert.False(t, hub.join(&Client{UserID: uuid.New(), Send: make(chan []byte, 1), Hub: hub}))
	assert.Equal(t, 0, hub.ConnectedClients())
}

func TestHandleWebSocket_ClosesWhenHubStopped(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	close(done)
	hub.Run(done)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleWebSocket(hub, w, r, uuid.New(), "Admin")
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
