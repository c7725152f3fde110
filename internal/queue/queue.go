/*
 * MIT License
 *
 * Copyright (c) 2022-2024  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package queue

import (
	"context"
	"errors"
	"sync"
)

// minQueueLen is the smallest capacity that queue may have.
// Must be power of 2 for bitwise modulus: x % n == x & (n - 1).
const minQueueLen = 16

// ErrClosed is returned by Wait when the queue is closed.
var ErrClosed = errors.New("queue is closed")

// Queue is an unbounded, thread-safe FIFO queue backed by a ring buffer.
//
// Many goroutines may Push concurrently. Wait is meant for a single consumer:
// it blocks until an item is available, the queue is closed or the context
// is done. An abandoned Wait never removes an item, so nothing already pushed
// is lost when the consumer is interrupted.
//
// reference: https://blog.dubbelboer.com/2015/04/25/go-faster-queue.html
type Queue[T any] struct {
	mu     sync.Mutex
	nodes  []*T
	head   int
	tail   int
	count  int
	closed bool
	// notify carries at most one pending wake-up for the consumer
	notify chan struct{}
	// done is closed when the queue is closed
	done chan struct{}
}

// New creates an instance of Queue
func New[T any]() *Queue[T] {
	return &Queue[T]{
		nodes:  make([]*T, minQueueLen),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push adds an item to the back of the queue.
// It returns false when the queue is closed, in which case the item is dropped.
func (q *Queue[T]) Push(i T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if q.count == len(q.nodes) {
		q.resize()
	}
	q.nodes[q.tail] = &i
	// bitwise modulus
	q.tail = (q.tail + 1) & (len(q.nodes) - 1)
	q.count++
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Pop removes the item from the front of the queue.
// If false is returned, it either means there were no items on the queue
// or the queue is closed.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pop()
}

// Wait returns the first item of the queue, blocking until one is pushed.
// It returns ErrClosed when the queue is closed and the context error when
// the context is done first.
func (q *Queue[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return zero, ErrClosed
		}
		if item, ok := q.pop(); ok {
			q.mu.Unlock()
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-q.done:
			return zero, ErrClosed
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Close closes the queue and discards all entries in the queue.
// Goroutines blocked in Wait return ErrClosed.
func (q *Queue[T]) Close() {
	q.CloseRemaining()
}

// CloseRemaining closes the queue and returns all entries still in the queue.
func (q *Queue[T]) CloseRemaining() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return []T{}
	}
	rem := make([]T, 0, q.count)
	for q.count > 0 {
		i := q.nodes[q.head]
		// bitwise modulus
		q.head = (q.head + 1) & (len(q.nodes) - 1)
		q.count--
		rem = append(rem, *i)
	}
	q.closed = true
	q.nodes = nil
	close(q.done)
	return rem
}

// IsClosed returns true if the queue has been closed
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	c := q.closed
	q.mu.Unlock()
	return c
}

// Len return the current length of the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	l := q.count
	q.mu.Unlock()
	return l
}

// IsEmpty returns true when the queue is empty
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// pop removes the front item. Callers must hold the lock.
func (q *Queue[T]) pop() (T, bool) {
	if q.count == 0 {
		var nilElt T
		return nilElt, false
	}
	i := q.nodes[q.head]
	q.nodes[q.head] = nil
	// bitwise modulus
	q.head = (q.head + 1) & (len(q.nodes) - 1)
	q.count--
	// Resize down if buffer 1/4 full.
	if len(q.nodes) > minQueueLen && (q.count<<2) == len(q.nodes) {
		q.resize()
	}
	return *i, true
}

// resize the queue
func (q *Queue[T]) resize() {
	size := q.count << 1
	if size < minQueueLen {
		size = minQueueLen
	}
	nodes := make([]*T, size)
	if q.tail > q.head {
		copy(nodes, q.nodes[q.head:q.tail])
	} else if q.count > 0 {
		n := copy(nodes, q.nodes[q.head:])
		copy(nodes[n:], q.nodes[:q.tail])
	}

	q.tail = q.count
	q.head = 0
	q.nodes = nodes
}
