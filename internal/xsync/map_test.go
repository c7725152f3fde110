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
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	sm := NewMap[string, int]()

	sm.Set("one", 1)
	sm.Set("two", 2)
	assert.EqualValues(t, 2, sm.Len())

	value, ok := sm.Get("one")
	require.True(t, ok)
	assert.Equal(t, 1, value)

	stored, inserted := sm.SetIfAbsent("one", 10)
	assert.False(t, inserted)
	assert.Equal(t, 1, stored)

	stored, inserted = sm.SetIfAbsent("three", 3)
	assert.True(t, inserted)
	assert.Equal(t, 3, stored)

	keys := sm.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"one", "three", "two"}, keys)
	assert.Len(t, sm.Values(), 3)

	count := 0
	sm.Range(func(string, int) { count++ })
	assert.Equal(t, 3, count)

	value, ok = sm.LoadAndDelete("two")
	require.True(t, ok)
	assert.Equal(t, 2, value)
	_, ok = sm.LoadAndDelete("two")
	assert.False(t, ok)

	sm.Delete("one")
	_, ok = sm.Get("one")
	assert.False(t, ok)

	sm.Reset()
	assert.Zero(t, sm.Len())
}

func TestMapLoadAndDeleteOnce(t *testing.T) {
	sm := NewMap[int, string]()
	sm.Set(1, "value")

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := sm.LoadAndDelete(1); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}
