package store

import (
	"context"
	"sync"

	"agora/internal/domain/models"
	"agora/internal/mapper"
	"agora/internal/realtime"
	"agora/internal/tree"
)

// Categories is the category hierarchy
type Categories struct {
	api API

	mu     sync.Mutex
	roots  []*models.Category
	gen    uint64
	cancel context.CancelFunc
	state  OpState
}

func newCategories(api API) *Categories {
	return &Categories{api: api, state: OpState{Status: StatusIdle}}
}

// Load fetches the assembled hierarchy. A newer Load cancels this one and
// its result is discarded with ErrSuperseded.
func (c *Categories) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = pending()
	c.mu.Unlock()
	defer cancel()

	roots, err := c.api.CategoryTree(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return ErrSuperseded
	}
	c.cancel = nil
	c.state = settled(err)
	if err != nil {
		return err
	}
	c.roots = roots
	return nil
}

func (c *Categories) State() OpState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Roots returns a deep copy of the hierarchy
func (c *Categories) Roots() []*models.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneCategories(c.roots)
}

func (c *Categories) apply(ch realtime.Change) bool {
	id := mapper.RecordID(ch.Row())
	if id == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch ch.Type {
	case realtime.EventDelete:
		var removed bool
		c.roots, removed = tree.Remove(c.roots, id)
		return removed
	case realtime.EventInsert:
		if tree.Find(c.roots, id) != nil {
			return false
		}
		cat, err := mapper.Decode(ch.Record, mapper.ToCategory)
		if err != nil {
			return false
		}
		c.roots = tree.InsertChild(c.roots, cat.ParentID, &cat)
		return true
	case realtime.EventUpdate:
		node := tree.Find(c.roots, id)
		if node == nil {
			return false
		}
		applied := mapper.PatchCategory(node, ch.Record)
		row, err := mapper.Decode(ch.Record, func(r mapper.CategoryRow) mapper.CategoryRow { return r })
		if err == nil && !samePtr(row.ParentID, node.ParentID) {
			// Re-parented: move the subtree
			c.roots, _ = tree.Remove(c.roots, id)
			node.ParentID = row.ParentID
			c.roots = tree.InsertChild(c.roots, node.ParentID, node)
			applied++
		}
		return applied > 0
	}
	return false
}

func cloneCategories(nodes []*models.Category) []*models.Category {
	out := make([]*models.Category, len(nodes))
	for i, n := range nodes {
		cp := *n
		cp.Children = cloneCategories(n.Children)
		out[i] = &cp
	}
	return out
}
