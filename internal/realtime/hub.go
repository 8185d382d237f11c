package realtime

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrHubClosed is returned by Subscribe after Close
var ErrHubClosed = errors.New("realtime hub closed")

// DefaultBuffer is the per-subscription event buffer
const DefaultBuffer = 64

// Handler receives matched events on the subscription's own goroutine
type Handler func(Change)

// Hub fans change events out to subscriptions
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool
	buffer int
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewHub creates a hub. buffer <= 0 uses DefaultBuffer.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
		logger: logger,
	}
}

// Subscription is the handle of one registered filter.
type Subscription struct {
	id      uint64
	filter  Filter
	hub     *Hub
	events  chan Change
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// ID identifies the subscription within its hub
func (s *Subscription) ID() uint64 { return s.id }

// Filter returns the subscription's filter
func (s *Subscription) Filter() Filter { return s.filter }

// Dropped returns how many events were discarded because the buffer was full
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

// Done is closed when the subscription is closed
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close unregisters the subscription. No handler call starts after Close
// returns; a call already running completes. Closing twice is a no-op.
// Close may be called from inside the handler.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
		close(s.done)
	})
}

// Subscribe registers handler for events matching filter. The returned
// handle must be closed by the caller.
func (h *Hub) Subscribe(filter Filter, handler Handler) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}

	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		filter: filter,
		hub:    h,
		events: make(chan Change, h.buffer),
		done:   make(chan struct{}),
	}
	h.subs[sub.id] = sub

	h.wg.Add(1)
	go h.deliver(sub, handler)

	h.logger.Debug("realtime subscription opened", "id", sub.id, "filter", filter.String())
	return sub, nil
}

func (h *Hub) deliver(sub *Subscription, handler Handler) {
	defer h.wg.Done()
	defer h.logger.Debug("realtime subscription closed", "id", sub.id, "dropped", sub.dropped.Load())

	for {
		select {
		case <-sub.done:
			return
		case ch := <-sub.events:
			// done wins over a buffered event
			select {
			case <-sub.done:
				return
			default:
			}
			handler(ch)
		}
	}
}

// Publish delivers ch to every matching subscription without blocking.
// A subscription whose buffer is full loses the event.
func (h *Hub) Publish(ch Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !sub.filter.Matches(ch) {
			continue
		}
		select {
		case sub.events <- ch:
		default:
			n := sub.dropped.Add(1)
			h.logger.Warn("realtime subscriber too slow, event dropped",
				"id", sub.id,
				"filter", sub.filter.String(),
				"table", ch.Table,
				"type", ch.Type,
				"dropped_total", n,
			)
		}
	}
}

// Len returns the number of open subscriptions
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close closes every subscription and waits for their goroutines to exit.
// It must not be called from a handler.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := make([]*Subscription, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
	h.wg.Wait()
}
