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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	t.Run("With FIFO order", func(t *testing.T) {
		q := New[int]()
		for i := range 100 {
			require.True(t, q.Push(i))
		}
		assert.Equal(t, 100, q.Len())

		for i := range 100 {
			item, ok := q.Pop()
			require.True(t, ok)
			assert.Equal(t, i, item)
		}
		assert.True(t, q.IsEmpty())
		_, ok := q.Pop()
		assert.False(t, ok)
	})
	t.Run("With wrap around and resize", func(t *testing.T) {
		q := New[int]()
		next := 0
		expected := 0
		for round := range 10 {
			for range 20 + round {
				q.Push(next)
				next++
			}
			for range 15 {
				item, ok := q.Pop()
				require.True(t, ok)
				require.Equal(t, expected, item)
				expected++
			}
		}
		for !q.IsEmpty() {
			item, _ := q.Pop()
			require.Equal(t, expected, item)
			expected++
		}
		assert.Equal(t, next, expected)
	})
	t.Run("With Wait blocking until push", func(t *testing.T) {
		q := New[string]()
		go func() {
			time.Sleep(20 * time.Millisecond)
			q.Push("hello")
		}()

		item, err := q.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "hello", item)
	})
	t.Run("With Wait interrupted keeps items", func(t *testing.T) {
		q := New[string]()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := q.Wait(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)

		q.Push("kept")
		item, err := q.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "kept", item)
	})
	t.Run("With Close releasing waiters", func(t *testing.T) {
		q := New[int]()
		errCh := make(chan error, 1)
		go func() {
			_, err := q.Wait(context.Background())
			errCh <- err
		}()

		time.Sleep(10 * time.Millisecond)
		q.Close()

		select {
		case err := <-errCh:
			require.ErrorIs(t, err, ErrClosed)
		case <-time.After(time.Second):
			t.Fatal("waiter was not released")
		}

		assert.True(t, q.IsClosed())
		assert.False(t, q.Push(1))
	})
	t.Run("With CloseRemaining", func(t *testing.T) {
		q := New[int]()
		q.Push(1)
		q.Push(2)
		assert.Equal(t, []int{1, 2}, q.CloseRemaining())
		assert.Empty(t, q.CloseRemaining())
	})
	t.Run("With concurrent producers", func(t *testing.T) {
		q := New[int]()
		const producers = 8
		const perProducer = 500
		var wg sync.WaitGroup
		for p := range producers {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := range perProducer {
					q.Push(p*perProducer + i)
				}
			}(p)
		}

		seen := make(map[int]struct{}, producers*perProducer)
		last := make(map[int]int, producers)
		for len(seen) < producers*perProducer {
			item, err := q.Wait(context.Background())
			require.NoError(t, err)
			producer := item / perProducer
			if prev, ok := last[producer]; ok {
				// per producer FIFO
				require.Greater(t, item, prev)
			}
			last[producer] = item
			seen[item] = struct{}{}
		}
		wg.Wait()
		assert.True(t, q.IsEmpty())
	})
}
