// Package tree assembles parent-pointer rows into nested forests.
//
// Rows arrive flat and unordered from the database. Build copies each row,
// indexes the copies by id, then links every copy under its parent. Rows whose
// parent is missing are promoted to roots so that every input row is reachable
// exactly once.
package tree

import "slices"

// Node is the constraint for tree-assembled records. P is the pointer type of
// the record, which owns the children slice.
type Node[V any] interface {
	*V
	NodeID() string
	NodeParentID() *string
	ChildNodes() []*V
	SetChildNodes(children []*V)
}

// Forest is the result of Assemble.
type Forest[V any] struct {
	Roots []*V
	// Orphans lists ids whose parent id did not resolve to a row in the input.
	// They are present in Roots.
	Orphans []string
	// Cycles lists ids that were cut loose from a parent cycle (or a self-parent).
	// They are present in Roots.
	Cycles []string
}

// Build returns the root list of the assembled forest.
func Build[V any, P Node[V]](items []V) []*V {
	return Assemble[V, P](items).Roots
}

// Assemble links items into a forest. It runs in O(n) and never mutates items.
// Sibling order follows input order.
func Assemble[V any, P Node[V]](items []V) Forest[V] {
	forest := Forest[V]{Roots: make([]*V, 0)}
	if len(items) == 0 {
		return forest
	}

	// Pass one: copy and index
	nodes := make([]*V, len(items))
	index := make(map[string]int, len(items))
	for i := range items {
		cp := items[i]
		P(&cp).SetChildNodes([]*V{})
		nodes[i] = &cp
		id := P(&cp).NodeID()
		if _, dup := index[id]; !dup {
			index[id] = i
		}
	}

	parent := make([]int, len(nodes))
	for i, n := range nodes {
		parent[i] = -1
		pid := P(n).NodeParentID()
		if pid == nil {
			continue
		}
		j, ok := index[*pid]
		if !ok {
			forest.Orphans = append(forest.Orphans, P(n).NodeID())
			continue
		}
		parent[i] = j
	}

	// Break cycles at the first node of each cycle in input order
	cut := breakCycles(parent)
	for _, i := range cut {
		forest.Cycles = append(forest.Cycles, P(nodes[i]).NodeID())
	}

	// Pass two: link
	for i, n := range nodes {
		if parent[i] < 0 {
			forest.Roots = append(forest.Roots, n)
			continue
		}
		p := P(nodes[parent[i]])
		p.SetChildNodes(append(p.ChildNodes(), n))
	}

	return forest
}

// breakCycles detaches one node per parent cycle and returns the detached
// indices in input order.
func breakCycles(parent []int) []int {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(parent))
	var cut []int

	for start := range parent {
		if state[start] != unvisited {
			continue
		}
		// Walk up the parent chain, marking the current path
		var path []int
		i := start
		for i >= 0 && state[i] == unvisited {
			state[i] = visiting
			path = append(path, i)
			i = parent[i]
		}
		if i >= 0 && state[i] == visiting {
			// Cycle: members are path[k:] where path[k] == i
			first := i
			for k := len(path) - 1; k >= 0; k-- {
				if path[k] < first {
					first = path[k]
				}
				if path[k] == i {
					break
				}
			}
			parent[first] = -1
			cut = append(cut, first)
		}
		for _, p := range path {
			state[p] = done
		}
	}

	slices.Sort(cut)
	return cut
}

// Find returns the node with the given id, searching depth first.
func Find[V any, P Node[V]](roots []*V, id string) *V {
	for _, n := range roots {
		if P(n).NodeID() == id {
			return n
		}
		if found := Find[V, P](P(n).ChildNodes(), id); found != nil {
			return found
		}
	}
	return nil
}

// InsertChild appends node under parentID. When parentID is nil or not in the
// forest, node is appended as a root. The returned slice is the new root list.
func InsertChild[V any, P Node[V]](roots []*V, parentID *string, node *V) []*V {
	if parentID != nil {
		if p := Find[V, P](roots, *parentID); p != nil {
			P(p).SetChildNodes(append(P(p).ChildNodes(), node))
			return roots
		}
	}
	return append(roots, node)
}

// Remove detaches the node with the given id (and its subtree). It reports
// whether a node was removed.
func Remove[V any, P Node[V]](roots []*V, id string) ([]*V, bool) {
	for i, n := range roots {
		if P(n).NodeID() == id {
			return append(roots[:i:i], roots[i+1:]...), true
		}
	}
	for _, n := range roots {
		if rest, ok := Remove[V, P](P(n).ChildNodes(), id); ok {
			P(n).SetChildNodes(rest)
			return roots, true
		}
	}
	return roots, false
}

// Count returns the number of nodes reachable from roots.
func Count[V any, P Node[V]](roots []*V) int {
	total := 0
	Walk[V, P](roots, func(*V, int) bool {
		total++
		return true
	})
	return total
}

// Walk visits nodes depth first, pre-order. Returning false from fn skips the
// node's subtree.
func Walk[V any, P Node[V]](roots []*V, fn func(node *V, depth int) bool) {
	walk[V, P](roots, 0, fn)
}

func walk[V any, P Node[V]](nodes []*V, depth int, fn func(*V, int) bool) {
	for _, n := range nodes {
		if fn(n, depth) {
			walk[V, P](P(n).ChildNodes(), depth+1, fn)
		}
	}
}
