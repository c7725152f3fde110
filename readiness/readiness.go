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

// Package readiness holds results computed ahead of time until the tick at
// which they may be emitted.
package readiness

import (
	"github.com/google/btree"
)

// degree of the underlying b-tree
const degree = 8

// slot groups the batches sharing the same readiness tick
type slot[B any] struct {
	readyAt int
	batches []B
}

// Buffer keeps result batches ordered by the tick at which they become
// eligible for emission. It is owned by a single actor and is not safe for
// concurrent use.
type Buffer[B any] struct {
	tree    *btree.BTreeG[*slot[B]]
	current int
	pending int
}

// New creates an empty Buffer at tick zero
func New[B any]() *Buffer[B] {
	return &Buffer[B]{
		tree: btree.NewG(degree, func(a, b *slot[B]) bool {
			return a.readyAt < b.readyAt
		}),
	}
}

// Schedule emits the batch right away when the current tick already reached
// readyAt and returns true. Otherwise the batch is kept until Advance reaches
// readyAt and false is returned.
func (x *Buffer[B]) Schedule(readyAt int, batch B, emit func(B)) bool {
	if x.current >= readyAt {
		emit(batch)
		return true
	}

	key := &slot[B]{readyAt: readyAt}
	if existing, ok := x.tree.Get(key); ok {
		existing.batches = append(existing.batches, batch)
	} else {
		key.batches = []B{batch}
		x.tree.ReplaceOrInsert(key)
	}
	x.pending++
	return false
}

// Advance moves the buffer to the given tick and emits, in ascending tick
// order, every batch whose readiness tick is lower or equal to it.
// Emitted batches are removed. It returns the number of emitted batches.
func (x *Buffer[B]) Advance(tick int, emit func(B)) int {
	if tick > x.current {
		x.current = tick
	}

	emitted := 0
	for {
		head, ok := x.tree.Min()
		if !ok || head.readyAt > tick {
			return emitted
		}
		x.tree.DeleteMin()
		emitted += x.flush(head, emit)
	}
}

// Drain emits every batch still held, in ascending tick order
func (x *Buffer[B]) Drain(emit func(B)) int {
	emitted := 0
	for x.tree.Len() > 0 {
		head, _ := x.tree.DeleteMin()
		emitted += x.flush(head, emit)
	}
	return emitted
}

// Pending returns the number of batches waiting for their tick
func (x *Buffer[B]) Pending() int {
	return x.pending
}

// Current returns the last tick the buffer advanced to
func (x *Buffer[B]) Current() int {
	return x.current
}

// NextReadyAt returns the smallest readiness tick held
func (x *Buffer[B]) NextReadyAt() (int, bool) {
	head, ok := x.tree.Min()
	if !ok {
		return 0, false
	}
	return head.readyAt, true
}

func (x *Buffer[B]) flush(s *slot[B], emit func(B)) int {
	for _, batch := range s.batches {
		emit(batch)
	}
	x.pending -= len(s.batches)
	return len(s.batches)
}
