package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message types of the websocket protocol
const (
	MsgSubscribe    = "subscribe"
	MsgUnsubscribe  = "unsubscribe"
	MsgSubscribed   = "subscribed"
	MsgUnsubscribed = "unsubscribed"
	MsgChange       = "change"
	MsgError        = "error"
)

// Message is one websocket frame in either direction. Clients send
// subscribe and unsubscribe; the server answers with subscribed,
// unsubscribed or error and pushes change frames per topic.
type Message struct {
	Type    string  `json:"type"`
	Topic   string  `json:"topic,omitempty"`
	Table   string  `json:"table,omitempty"`
	Event   string  `json:"event,omitempty"`
	Filter  string  `json:"filter,omitempty"`
	Change  *Change `json:"change,omitempty"`
	Message string  `json:"message,omitempty"`
}

const (
	wsWriteTimeout = 5 * time.Second
	wsReadTimeout  = 15 * time.Second
	wsPingInterval = 10 * time.Second
	wsMaxMessage   = 4 << 10
	wsOutBuffer    = 128
)

// WSHandler serves the websocket transport for hub subscriptions.
type WSHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWSHandler creates the websocket handler. Origin checks are left to the CORS layer.
func NewWSHandler(hub *Hub, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the connection and runs it until either side closes.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &wsConn{
		ws:     ws,
		hub:    h.hub,
		out:    make(chan Message, wsOutBuffer),
		done:   make(chan struct{}),
		topics: make(map[string]*Subscription),
		logger: h.logger.With("remote", r.RemoteAddr),
	}
	c.run()
}

type wsConn struct {
	ws     *websocket.Conn
	hub    *Hub
	out    chan Message
	done   chan struct{}
	logger *slog.Logger

	mu     sync.Mutex
	topics map[string]*Subscription
}

func (c *wsConn) run() {
	c.logger.Debug("websocket connected")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writeLoop()
	}()

	c.readLoop()

	close(c.done)
	c.closeAll()
	wg.Wait()
	c.ws.Close()
	c.logger.Debug("websocket disconnected")
}

func (c *wsConn) readLoop() {
	c.ws.SetReadLimit(wsMaxMessage)
	c.ws.SetReadDeadline(time.Now().Add(wsReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.send(Message{Type: MsgError, Message: "invalid message"})
			continue
		}
		c.handle(msg)
	}
}

func (c *wsConn) handle(msg Message) {
	if msg.Topic == "" {
		c.send(Message{Type: MsgError, Message: "topic is required"})
		return
	}

	switch msg.Type {
	case MsgSubscribe:
		filter, err := ParseFilter(msg.Table, msg.Event, msg.Filter)
		if err != nil {
			c.send(Message{Type: MsgError, Topic: msg.Topic, Message: err.Error()})
			return
		}

		c.mu.Lock()
		if _, exists := c.topics[msg.Topic]; exists {
			c.mu.Unlock()
			c.send(Message{Type: MsgError, Topic: msg.Topic, Message: "topic already subscribed"})
			return
		}
		topic := msg.Topic
		sub, err := c.hub.Subscribe(filter, func(ch Change) {
			c.send(Message{Type: MsgChange, Topic: topic, Change: &ch})
		})
		if err != nil {
			c.mu.Unlock()
			c.send(Message{Type: MsgError, Topic: msg.Topic, Message: err.Error()})
			return
		}
		c.topics[topic] = sub
		c.mu.Unlock()
		c.send(Message{Type: MsgSubscribed, Topic: topic})

	case MsgUnsubscribe:
		c.mu.Lock()
		sub, ok := c.topics[msg.Topic]
		delete(c.topics, msg.Topic)
		c.mu.Unlock()
		if ok {
			sub.Close()
		}
		c.send(Message{Type: MsgUnsubscribed, Topic: msg.Topic})

	default:
		c.send(Message{Type: MsgError, Topic: msg.Topic, Message: "unknown message type " + msg.Type})
	}
}

// send queues a frame without blocking; frames for a stalled connection are dropped.
func (c *wsConn) send(msg Message) {
	select {
	case <-c.done:
	case c.out <- msg:
	default:
		c.logger.Warn("websocket send buffer full, frame dropped", "type", msg.Type, "topic", msg.Topic)
	}
}

func (c *wsConn) writeLoop() {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.out:
			c.ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.ws.WriteJSON(msg); err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				// Unblock the read loop
				c.ws.Close()
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				c.ws.Close()
				return
			}
		}
	}
}

func (c *wsConn) closeAll() {
	c.mu.Lock()
	subs := c.topics
	c.topics = make(map[string]*Subscription)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}
