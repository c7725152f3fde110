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

package bus

import (
	"sync"

	"github.com/tochemey/gurionrock/internal/xsync"
)

// registry maps a type tag to its ordered subscriber sequence.
// The map itself is guarded by a RWMutex while each sequence carries its own
// lock, so rotating one tag never blocks another.
type registry struct {
	mu      sync.RWMutex
	entries map[string]*xsync.Ring[ActorID]
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[string]*xsync.Ring[ActorID]),
	}
}

// get returns the sequence of the given tag or nil
func (r *registry) get(topic string) *xsync.Ring[ActorID] {
	r.mu.RLock()
	entry := r.entries[topic]
	r.mu.RUnlock()
	return entry
}

// getOrCreate returns the sequence of the given tag, creating it when missing
func (r *registry) getOrCreate(topic string) *xsync.Ring[ActorID] {
	if entry := r.get(topic); entry != nil {
		return entry
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[topic]
	if !ok {
		entry = xsync.NewRing[ActorID]()
		r.entries[topic] = entry
	}
	return entry
}

// count returns the number of subscribers of the given tag
func (r *registry) count(topic string) int {
	if entry := r.get(topic); entry != nil {
		return entry.Len()
	}
	return 0
}
