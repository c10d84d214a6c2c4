package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTopic(t *testing.T, hub *Hub, topic string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, hub.Subscribe(w, r, topic))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHubDeliversToTopicSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTopic(t, hub, UserTopic("user-1"))
	// Registration races the publish without a short settle.
	time.Sleep(50 * time.Millisecond)

	hub.Publish(UserTopic("user-1"), Event{Type: "notification", Payload: map[string]any{"title": "سلام"}})

	ev := readEvent(t, conn)
	assert.Equal(t, "notification", ev.Type)
}

func TestHubIsolatesTopics(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userConn := dialTopic(t, hub, UserTopic("user-1"))
	ticketConn := dialTopic(t, hub, TicketTopic("t-1"))
	time.Sleep(50 * time.Millisecond)

	hub.Publish(TicketTopic("t-1"), Event{Type: "ticket_message", Payload: "m"})

	ev := readEvent(t, ticketConn)
	assert.Equal(t, "ticket_message", ev.Type)

	// The user feed subscriber must not receive the ticket event.
	userConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := userConn.ReadMessage()
	assert.Error(t, err)
}

func TestHubFansOutToAllSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn1 := dialTopic(t, hub, TicketTopic("t-1"))
	conn2 := dialTopic(t, hub, TicketTopic("t-1"))
	time.Sleep(50 * time.Millisecond)

	hub.Publish(TicketTopic("t-1"), Event{Type: "ticket_message", Payload: "m"})

	assert.Equal(t, "ticket_message", readEvent(t, conn1).Type)
	assert.Equal(t, "ticket_message", readEvent(t, conn2).Type)
}

func TestPublishWithoutSubscribersIsDiscarded(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Must not block or panic.
	hub.Publish(UserTopic("nobody"), Event{Type: "notification", Payload: "x"})
}

func TestTopicNames(t *testing.T) {
	assert.Equal(t, "user:u-1", UserTopic("u-1"))
	assert.Equal(t, "ticket:t-1", TicketTopic("t-1"))
}
