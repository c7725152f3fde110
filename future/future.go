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

package future

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotReady is returned by GetWithin when the Future has not been
// resolved before the timeout elapsed.
var ErrNotReady = errors.New("future is not resolved yet")

// Future represents a value which may or may not currently be available,
// but will be available at some point in the future.
//
// A Future is a single-assignment container: it transitions from empty to
// resolved at most once, and the resolved value never changes afterwards.
// Any number of goroutines may wait on it; all of them are released when the
// Future is resolved.
//
// Example usage:
//
//	f := future.New[int]()
//	go f.Resolve(42)
//
//	value, err := f.GetWithin(time.Second)
//	if err != nil {
//	    // not resolved within a second
//	}
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
}

// New creates an unresolved Future.
func New[T any]() *Future[T] {
	return &Future[T]{
		done: make(chan struct{}),
	}
}

// Resolve sets the value of the Future and wakes up all waiters.
// It returns true when this call resolved the Future and false when the
// Future was already resolved, in which case the value is left untouched.
func (x *Future[T]) Resolve(value T) bool {
	resolved := false
	x.once.Do(func() {
		x.value = value
		close(x.done)
		resolved = true
	})
	return resolved
}

// IsDone reports whether the Future has been resolved. It never blocks.
func (x *Future[T]) IsDone() bool {
	select {
	case <-x.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed once the Future is resolved.
func (x *Future[T]) Done() <-chan struct{} {
	return x.done
}

// Get blocks until the Future is resolved and returns its value.
func (x *Future[T]) Get() T {
	<-x.done
	return x.value
}

// GetWithin returns the value when the Future is resolved within the given
// timeout. Otherwise it returns the zero value of T and ErrNotReady.
// A resolved zero value is returned with a nil error.
func (x *Future[T]) GetWithin(timeout time.Duration) (T, error) {
	if x.IsDone() {
		return x.value, nil
	}

	var zero T
	if timeout <= 0 {
		return zero, ErrNotReady
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-x.done:
		return x.value, nil
	case <-timer.C:
		// the Future may have been resolved while the timer fired
		if x.IsDone() {
			return x.value, nil
		}
		return zero, ErrNotReady
	}
}

// Await blocks until the Future is resolved or the context is done.
// When the context is done first the wait is abandoned and the context
// error is returned; the Future itself is not affected.
func (x *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-x.done:
		return x.value, nil
	default:
	}

	select {
	case <-x.done:
		return x.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
