package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"agora/internal/realtime"
)

// ErrConnectionClosed is reported by subscriptions whose connection dropped
var ErrConnectionClosed = errors.New("realtime connection closed")

const writeTimeout = 5 * time.Second

// Realtime multiplexes subscriptions over one websocket. The connection is
// dialed on the first Subscribe. When it drops, every open subscription is
// ended with an error and the next Subscribe dials again; resubscribing is
// left to the caller.
type Realtime struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	logger *slog.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	subs      map[string]*RealtimeSubscription
	nextTopic uint64

	writeMu sync.Mutex
}

// NewRealtime creates a manager for the websocket at <baseURL>/api/realtime
func NewRealtime(baseURL, token string, logger *slog.Logger) *Realtime {
	u := strings.TrimRight(baseURL, "/") + "/api/realtime"
	u = strings.Replace(u, "http://", "ws://", 1)
	u = strings.Replace(u, "https://", "wss://", 1)

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return &Realtime{
		url:    u,
		header: header,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger: logger,
		subs:   make(map[string]*RealtimeSubscription),
	}
}

// RealtimeSubscription is the handle of one subscribed filter. It must be
// closed by the caller.
type RealtimeSubscription struct {
	rt      *Realtime
	conn    *websocket.Conn
	topic   string
	filter  realtime.Filter
	handler func(realtime.Change)
	ack     chan error

	once sync.Once
	done chan struct{}
	err  error
}

// Topic is the connection-local name of the subscription
func (s *RealtimeSubscription) Topic() string { return s.topic }

// Done is closed once the subscription has ended
func (s *RealtimeSubscription) Done() <-chan struct{} { return s.done }

// Err reports why the subscription ended: nil after Close, otherwise the
// connection error.
func (s *RealtimeSubscription) Err() error {
	<-s.done
	return s.err
}

// Close unsubscribes. Closing twice is a no-op.
func (s *RealtimeSubscription) Close() {
	s.end(nil, true)
}

func (s *RealtimeSubscription) end(err error, notify bool) {
	s.once.Do(func() {
		s.err = err
		s.rt.remove(s.conn, s.topic)
		if notify {
			// Best effort: the server also releases topics on disconnect
			_ = s.rt.write(s.conn, realtime.Message{Type: realtime.MsgUnsubscribe, Topic: s.topic})
		}
		close(s.done)
	})
}

// Subscribe registers handler for changes matching filter and waits for the
// server to acknowledge. Handlers run on the connection's read goroutine in
// arrival order and must not block.
func (r *Realtime) Subscribe(ctx context.Context, filter realtime.Filter, handler func(realtime.Change)) (*RealtimeSubscription, error) {
	conn, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.nextTopic++
	sub := &RealtimeSubscription{
		rt:      r,
		conn:    conn,
		topic:   fmt.Sprintf("%s-%d", filter.Table, r.nextTopic),
		filter:  filter,
		handler: handler,
		ack:     make(chan error, 1),
		done:    make(chan struct{}),
	}
	r.subs[sub.topic] = sub
	r.mu.Unlock()

	msg := realtime.Message{
		Type:  realtime.MsgSubscribe,
		Topic: sub.topic,
		Table: filter.Table,
		Event: string(filter.Event),
	}
	if filter.Column != "" {
		msg.Filter = filter.Column + "=eq." + filter.Value
	}
	if err := r.write(conn, msg); err != nil {
		sub.end(err, false)
		return nil, fmt.Errorf("subscribe %s: %w", filter, err)
	}

	select {
	case err := <-sub.ack:
		if err != nil {
			sub.end(err, false)
			return nil, fmt.Errorf("subscribe %s: %w", filter, err)
		}
		return sub, nil
	case <-sub.done:
		return nil, fmt.Errorf("subscribe %s: %w", filter, sub.err)
	case <-ctx.Done():
		sub.Close()
		return nil, ctx.Err()
	}
}

// Close drops the connection, ending every subscription
func (r *Realtime) Close() error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return nil
	}
	r.writeMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	r.writeMu.Unlock()
	return conn.Close()
}

func (r *Realtime) connect(ctx context.Context) (*websocket.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		return r.conn, nil
	}

	conn, resp, err := r.dialer.DialContext(ctx, r.url, r.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial realtime: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial realtime: %w", err)
	}
	r.conn = conn
	go r.readLoop(conn)
	r.logger.Debug("realtime connected", "url", r.url)
	return conn, nil
}

func (r *Realtime) write(conn *websocket.Conn, msg realtime.Message) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}

func (r *Realtime) remove(conn *websocket.Conn, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == conn {
		delete(r.subs, topic)
	}
}

func (r *Realtime) lookup(topic string) *RealtimeSubscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subs[topic]
}

func (r *Realtime) readLoop(conn *websocket.Conn) {
	var readErr error
	for {
		var msg realtime.Message
		if err := conn.ReadJSON(&msg); err != nil {
			readErr = err
			break
		}

		sub := r.lookup(msg.Topic)
		if sub == nil {
			if msg.Type == realtime.MsgError {
				r.logger.Warn("realtime error", "message", msg.Message)
			}
			continue
		}

		switch msg.Type {
		case realtime.MsgSubscribed:
			select {
			case sub.ack <- nil:
			default:
			}
		case realtime.MsgError:
			select {
			case sub.ack <- errors.New(msg.Message):
			default:
				r.logger.Warn("realtime error", "topic", msg.Topic, "message", msg.Message)
			}
		case realtime.MsgChange:
			if msg.Change != nil {
				select {
				case <-sub.done:
				default:
					sub.handler(*msg.Change)
				}
			}
		}
	}

	if websocket.IsUnexpectedCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		r.logger.Debug("realtime read failed", "error", readErr)
	}

	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]*RealtimeSubscription)
	if r.conn == conn {
		r.conn = nil
	}
	r.mu.Unlock()
	conn.Close()

	for _, sub := range subs {
		sub.end(fmt.Errorf("%w: %v", ErrConnectionClosed, readErr), false)
	}
}
