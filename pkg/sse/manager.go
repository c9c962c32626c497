package sse

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// event is one server-sent message addressed to a user.
type event struct {
	userID string
	name   string
	data   map[string]interface{}
}

// client is one open SSE connection.
type client struct {
	userID string
	send   chan []byte
}

// Manager fans server-sent events out to connected UI surfaces, one
// hub for the whole process.
type Manager struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	events     chan event
}

// NewManager creates the SSE hub. Call Run in a goroutine before
// serving connections.
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan event, 64),
	}
}

// Run dispatches events to connected clients until the process exits.
func (m *Manager) Run() {
	for {
		select {
		case c := <-m.register:
			m.mu.Lock()
			m.clients[c] = struct{}{}
			m.mu.Unlock()
		case c := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[c]; ok {
				delete(m.clients, c)
				close(c.send)
			}
			m.mu.Unlock()
		case ev := <-m.events:
			payload, err := json.Marshal(ev.data)
			if err != nil {
				logrus.WithError(err).Warn("[SSE] failed to marshal event payload")
				continue
			}
			frame := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", ev.name, payload))

			m.mu.RLock()
			for c := range m.clients {
				if c.userID != ev.userID {
					continue
				}
				select {
				case c.send <- frame:
				default: // slow client, drop the frame
				}
			}
			m.mu.RUnlock()
		}
	}
}

// SendToUser queues an event for every connection of userID.
// Non-blocking: if the hub is saturated the event is dropped.
func (m *Manager) SendToUser(userID, name string, data map[string]interface{}) {
	select {
	case m.events <- event{userID: userID, name: name, data: data}:
	default:
		logrus.WithField("event", name).Warn("[SSE] event queue full, dropping")
	}
}

// ServeHTTP holds the connection open and streams events for userID
// until the client disconnects.
func (m *Manager) ServeHTTP(c *gin.Context, userID string) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	cl := &client{userID: userID, send: make(chan []byte, 16)}
	m.register <- cl
	defer func() { m.unregister <- cl }()

	c.Writer.Flush()
	for {
		select {
		case frame, ok := <-cl.send:
			if !ok {
				return
			}
			if _, err := c.Writer.Write(frame); err != nil {
				return
			}
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
