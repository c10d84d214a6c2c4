package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is one message pushed to subscribers of a topic.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client is one websocket subscriber bound to a single topic.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	topic string
}

// Hub routes events to websocket subscribers grouped by topic. Topics are
// plain strings: "user:<id>" for notification feeds, "ticket:<id>" for
// ticket message threads. A topic may have any number of subscribers.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	events     chan topicEvent
	mu         sync.Mutex
}

type topicEvent struct {
	topic string
	data  []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan topicEvent, 64),
	}
}

// Run owns the subscriber map. Call it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.topic] == nil {
				h.clients[client.topic] = make(map[*Client]struct{})
			}
			h.clients[client.topic][client] = struct{}{}
			h.mu.Unlock()
			slog.Info("feed subscriber registered", "topic", client.topic)

		case client := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.clients[client.topic]; ok {
				if _, ok := subs[client]; ok {
					delete(subs, client)
					close(client.send)
					if len(subs) == 0 {
						delete(h.clients, client.topic)
					}
				}
			}
			h.mu.Unlock()
			slog.Info("feed subscriber unregistered", "topic", client.topic)

		case ev := <-h.events:
			h.deliver(ev)
		}
	}
}

func (h *Hub) deliver(ev topicEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[ev.topic] {
		select {
		case client.send <- ev.data:
		default:
			// Slow consumer: drop it rather than block the hub.
			close(client.send)
			delete(h.clients[ev.topic], client)
		}
	}
}

// Publish pushes an event to every current subscriber of topic. Events
// published to a topic with no subscribers are discarded; the row in the
// notifications table remains the durable copy.
func (h *Hub) Publish(topic string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("failed to marshal feed event", "topic", topic, "error", err)
		return
	}
	h.events <- topicEvent{topic: topic, data: data}
}

// Subscribe upgrades the request to a websocket and streams the topic's
// events until the peer disconnects.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, topic string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, 16), topic: topic}
	h.register <- client

	go client.writePump()
	go client.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		// Subscribers are read-only; we only watch for disconnects.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("unexpected websocket close", "topic", c.topic, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Error("failed to write to websocket", "topic", c.topic, "error", err)
			return
		}
	}
}
