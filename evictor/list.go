/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2025 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package evictor implements the intrusive doubly-linked LRU list the
// servant registry uses to decide which active servant to passivate next.
// It is the arena-and-handle translation of a Rc<RefCell<>> linked list:
// nodes live in a map keyed by NodeID instead of behind reference-counted
// pointers, which keeps the list free of cycles a garbage collector would
// otherwise need to reason about, and lets a caller hold a NodeID across
// calls without borrowing anything.
//
// List is not safe for concurrent use; the servant registry guards all
// access with its own single mutex.
package evictor

import "github.com/sabouaram/icerpc/rpcerr"

// NodeID is a handle into a List, returned by Push and consumed by Top and
// Remove. The zero NodeID is never issued and can be used as a "no node"
// sentinel by callers.
type NodeID uint64

type node struct {
	value      interface{}
	prev, next NodeID
}

// List is a fixed-capacity, most-recently-used-at-the-head doubly-linked
// list. Pushing past capacity is the caller's bug, not the list's to paper
// over: call Evict to make room first.
type List struct {
	capacity  int
	nodes     map[NodeID]*node
	nextID    NodeID
	head      NodeID
	tail      NodeID
	count     int
}

// New returns an empty List admitting at most capacity nodes at once. A
// capacity of zero means unbounded.
func New(capacity int) *List {
	return &List{capacity: capacity, nodes: make(map[NodeID]*node)}
}

// Len returns the number of nodes currently in the list.
func (l *List) Len() int { return l.count }

// Full reports whether the list is at its configured capacity.
func (l *List) Full() bool {
	return l.capacity > 0 && l.count >= l.capacity
}

// Push inserts value at the head (the most-recently-used position) and
// returns its NodeID. Returns ErrEvictorFull if the list is already at
// capacity; callers evict before pushing to keep the list bounded.
func (l *List) Push(value interface{}) (NodeID, error) {
	if l.Full() {
		return 0, rpcerr.ErrEvictorFull.Error()
	}

	l.nextID++
	id := l.nextID
	n := &node{value: value, next: l.head}

	if l.head != 0 {
		l.nodes[l.head].prev = id
	} else {
		l.tail = id
	}
	l.head = id
	l.nodes[id] = n
	l.count++

	return id, nil
}

// Top moves an existing node to the head, marking it most recently used.
// Returns ErrEvictorUnknownNode if id is not in the list.
func (l *List) Top(id NodeID) error {
	n, ok := l.nodes[id]
	if !ok {
		return rpcerr.ErrEvictorUnknownNode.Error()
	}

	if id == l.head {
		return nil
	}

	l.unlink(id, n)

	n.prev, n.next = 0, l.head
	if l.head != 0 {
		l.nodes[l.head].prev = id
	} else {
		l.tail = id
	}
	l.head = id

	return nil
}

// Remove detaches id from the list regardless of its position. Returns
// ErrEvictorUnknownNode if id is not in the list.
func (l *List) Remove(id NodeID) error {
	n, ok := l.nodes[id]
	if !ok {
		return rpcerr.ErrEvictorUnknownNode.Error()
	}

	l.unlink(id, n)
	delete(l.nodes, id)
	l.count--

	return nil
}

// Evict removes and returns the tail node's value (the least-recently-used
// entry) only if the list is at capacity; otherwise it is a no-op, ok=false.
// This is what a caller should call before Push to make room: it only ever
// gives up an entry when the list genuinely needs to shrink.
func (l *List) Evict() (value interface{}, ok bool) {
	if !l.Full() {
		return nil, false
	}

	return l.Pop()
}

// Pop unconditionally removes and returns the tail node's value, or ok=false
// if the list is empty. Unlike Evict, it ignores capacity.
func (l *List) Pop() (value interface{}, ok bool) {
	if l.tail == 0 {
		return nil, false
	}

	id := l.tail
	n := l.nodes[id]
	value = n.value

	l.unlink(id, n)
	delete(l.nodes, id)
	l.count--

	return value, true
}

// unlink detaches n (currently at id) from its neighbors without touching
// n's own prev/next fields, so the caller can either discard n or relink it
// elsewhere.
func (l *List) unlink(id NodeID, n *node) {
	if n.prev != 0 {
		l.nodes[n.prev].next = n.next
	} else if l.head == id {
		l.head = n.next
	}

	if n.next != 0 {
		l.nodes[n.next].prev = n.prev
	} else if l.tail == id {
		l.tail = n.prev
	}
}

