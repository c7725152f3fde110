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

package xsync

import (
	"slices"
	"sync"
)

// Ring is a thread-safe, duplicate-free ordered collection whose front
// element can be rotated to the back in a single atomic step.
//
// Insertion order defines the initial rotation order. Every operation holds
// the ring's own lock for its whole duration, so a reader never observes a
// partially applied Append, Remove or Next.
type Ring[T comparable] struct {
	mu   sync.Mutex
	data []T
}

// NewRing creates an empty Ring.
func NewRing[T comparable]() *Ring[T] {
	return &Ring[T]{data: make([]T, 0, 4)}
}

// Append adds item at the back unless it is already present.
// It returns true when the item was added.
func (x *Ring[T]) Append(item T) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if slices.Contains(x.data, item) {
		return false
	}
	x.data = append(x.data, item)
	return true
}

// Remove deletes item from the ring. It returns true when the item was present.
func (x *Ring[T]) Remove(item T) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	index := slices.Index(x.data, item)
	if index < 0 {
		return false
	}
	x.data = slices.Delete(x.data, index, index+1)
	return true
}

// Next removes the front element, appends it to the back and returns it.
// It returns false when the ring is empty.
func (x *Ring[T]) Next() (T, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if len(x.data) == 0 {
		var zero T
		return zero, false
	}
	front := x.data[0]
	copy(x.data, x.data[1:])
	x.data[len(x.data)-1] = front
	return front, true
}

// Contains reports whether item is present in the ring.
func (x *Ring[T]) Contains(item T) bool {
	x.mu.Lock()
	found := slices.Contains(x.data, item)
	x.mu.Unlock()
	return found
}

// Len returns the number of items in the ring.
func (x *Ring[T]) Len() int {
	x.mu.Lock()
	l := len(x.data)
	x.mu.Unlock()
	return l
}

// Items returns a snapshot copy of all elements in rotation order.
func (x *Ring[T]) Items() []T {
	x.mu.Lock()
	out := slices.Clone(x.data)
	x.mu.Unlock()
	return out
}
