// Package forest provides an append-only ordered multi-tree addressed by handles.
package forest

import (
	"errors"
	"sync/atomic"
)

// ErrInvalidHandle is returned when a handle does not belong to the forest.
var ErrInvalidHandle = errors.New("invalid forest handle")

var forestSeq atomic.Uint64

// Handle identifies a node inside the forest that created it.
type Handle struct {
	owner uint64
	idx   int
}

type node[T any] struct {
	parent      *Handle
	prevSibling *Handle
	nextSibling *Handle
	firstChild  *Handle
	lastChild   *Handle
	value       T
}

// Forest owns every node; callers only keep handles.
type Forest[T any] struct {
	id    uint64
	nodes []node[T]
	roots []Handle
}

// New creates an empty forest.
func New[T any]() *Forest[T] {
	return &Forest[T]{id: forestSeq.Add(1)}
}

// CreateRoot allocates a node without parent.
func (f *Forest[T]) CreateRoot(value T) Handle {
	h := f.alloc(value)
	f.roots = append(f.roots, h)
	return h
}

// AppendChild allocates a node as the new last child of parent.
func (f *Forest[T]) AppendChild(parent Handle, value T) (Handle, error) {
	if !f.owns(parent) {
		return Handle{}, ErrInvalidHandle
	}
	h := f.alloc(value)
	p := parent
	f.nodes[h.idx].parent = &p

	pn := &f.nodes[parent.idx]
	if last := pn.lastChild; last != nil {
		prev := *last
		f.nodes[prev.idx].nextSibling = &h
		f.nodes[h.idx].prevSibling = &prev
	} else {
		pn.firstChild = &h
	}
	pn.lastChild = &h
	return h, nil
}

// Value returns the payload stored at h.
func (f *Forest[T]) Value(h Handle) (T, error) {
	if !f.owns(h) {
		var zero T
		return zero, ErrInvalidHandle
	}
	return f.nodes[h.idx].value, nil
}

// Parent returns the parent of h; ok is false for roots.
func (f *Forest[T]) Parent(h Handle) (parent Handle, ok bool, err error) {
	if !f.owns(h) {
		return Handle{}, false, ErrInvalidHandle
	}
	if p := f.nodes[h.idx].parent; p != nil {
		return *p, true, nil
	}
	return Handle{}, false, nil
}

// Children returns the children of h in insertion order.
func (f *Forest[T]) Children(h Handle) ([]Handle, error) {
	if !f.owns(h) {
		return nil, ErrInvalidHandle
	}
	var out []Handle
	for c := f.nodes[h.idx].firstChild; c != nil; c = f.nodes[c.idx].nextSibling {
		out = append(out, *c)
	}
	return out, nil
}

// Roots returns root handles in creation order.
func (f *Forest[T]) Roots() []Handle {
	out := make([]Handle, len(f.roots))
	copy(out, f.roots)
	return out
}

// Len reports the number of nodes.
func (f *Forest[T]) Len() int {
	return len(f.nodes)
}

func (f *Forest[T]) alloc(value T) Handle {
	h := Handle{owner: f.id, idx: len(f.nodes)}
	f.nodes = append(f.nodes, node[T]{value: value})
	return h
}

func (f *Forest[T]) owns(h Handle) bool {
	return h.owner == f.id && h.idx >= 0 && h.idx < len(f.nodes)
}
