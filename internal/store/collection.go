package store

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by a load that a newer generation replaced
// while it was in flight. Its result was discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

// Collection is an ordered, id-unique list filled page by page.
//
// A Reset starts a new generation: it clears the items and cancels every
// load of the previous generation. Pages arriving for an older generation
// are dropped.
type Collection[T any] struct {
	id func(*T) string

	mu       sync.Mutex
	items    []*T
	index    map[string]int
	gen      uint64
	nextLoad uint64
	inflight map[uint64]context.CancelFunc
	state    OpState
}

// NewCollection creates an empty collection keyed by id
func NewCollection[T any](id func(*T) string) *Collection[T] {
	return &Collection[T]{
		id:       id,
		index:    make(map[string]int),
		inflight: make(map[uint64]context.CancelFunc),
		state:    OpState{Status: StatusIdle},
	}
}

// Reset starts a new generation and returns it
func (c *Collection[T]) Reset() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resetLocked()
}

func (c *Collection[T]) resetLocked() uint64 {
	for id, cancel := range c.inflight {
		cancel()
		delete(c.inflight, id)
	}
	c.gen++
	c.items = nil
	c.index = make(map[string]int)
	c.state = OpState{Status: StatusIdle}
	return c.gen
}

// Generation returns the current generation
func (c *Collection[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// AppendPage appends the items of page whose id is not present yet. A page
// for a generation other than the current one is discarded and ok is false.
func (c *Collection[T]) AppendPage(gen uint64, page []T) (added int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return 0, false
	}
	return c.appendLocked(page), true
}

func (c *Collection[T]) appendLocked(page []T) int {
	added := 0
	for i := range page {
		item := page[i]
		id := c.id(&item)
		if _, dup := c.index[id]; dup {
			continue
		}
		c.index[id] = len(c.items)
		c.items = append(c.items, &item)
		added++
	}
	return added
}

// Load fetches one page. reset starts a new generation first; otherwise
// the page continues at the current length. It returns the number of new
// items, or ErrSuperseded when a Reset happened while fetch ran.
func (c *Collection[T]) Load(ctx context.Context, reset bool, fetch func(ctx context.Context, offset int) ([]T, error)) (int, error) {
	c.mu.Lock()
	if reset {
		c.resetLocked()
	}
	gen := c.gen
	offset := len(c.items)
	c.nextLoad++
	load := c.nextLoad
	ctx, cancel := context.WithCancel(ctx)
	c.inflight[load] = cancel
	c.state = pending()
	c.mu.Unlock()

	page, err := fetch(ctx, offset)

	c.mu.Lock()
	defer c.mu.Unlock()
	cancel()
	delete(c.inflight, load)
	if gen != c.gen {
		return 0, ErrSuperseded
	}
	c.state = settled(err)
	if err != nil {
		return 0, err
	}
	return c.appendLocked(page), nil
}

// State is the state of the last load
func (c *Collection[T]) State() OpState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Len returns the number of items
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Items returns a copy of the items in order
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = *item
	}
	return out
}

// Get returns a copy of the item with id
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return *c.items[i], true
}

// Update runs fn on the item with id while holding the lock. It reports
// whether the item exists.
func (c *Collection[T]) Update(id string, fn func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return false
	}
	fn(c.items[i])
	return true
}

// Put replaces the item with the same id, or appends it
func (c *Collection[T]) Put(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[c.id(&item)]; ok {
		c.items[i] = &item
		return
	}
	c.appendLocked([]T{item})
}

// Remove deletes the item with id
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.id(c.items[j])] = j
	}
	return true
}
