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

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/atomic"
	"go.uber.org/goleak"

	"github.com/tochemey/gurionrock/bus"
	gerrors "github.com/tochemey/gurionrock/errors"
	"github.com/tochemey/gurionrock/log"
)

type echo struct {
	text string
}

type shout struct {
	text string
}

type stop struct{}

type boom struct{}

func newTestBus() *bus.Bus {
	return bus.New(
		bus.WithLogger(log.DiscardLogger),
		bus.WithMeter(noop.NewMeterProvider().Meter("test")))
}

func start(t *testing.T, ms *MicroService) <-chan error {
	t.Helper()
	errc := make(chan error, 1)
	go func() {
		errc <- ms.Run(context.Background())
	}()
	select {
	case <-ms.Ready():
	case <-time.After(time.Second):
		t.Fatal("service did not become ready")
	}
	return errc
}

func waitDone(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("service did not terminate")
		return nil
	}
}

func TestMicroService(t *testing.T) {
	t.Run("dispatches events and broadcasts", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		b := newTestBus()
		shouts := atomic.NewInt32(0)

		ms := New("echo", b, func(ms *MicroService) error {
			if err := OnEvent(ms, func(ctx *Context, msg echo) {
				ctx.Complete("echo: " + msg.text)
			}); err != nil {
				return err
			}
			if err := OnBroadcast(ms, func(_ *Context, _ shout) {
				shouts.Inc()
			}); err != nil {
				return err
			}
			return OnBroadcast(ms, func(ctx *Context, _ stop) {
				ctx.Self().SetStatus(StatusDown)
				ctx.Self().Terminate()
			})
		}, WithLogger(log.DiscardLogger))

		errc := start(t, ms)
		assert.Equal(t, StateRunning, ms.State())
		assert.Equal(t, StatusUp, ms.Status())
		assert.Equal(t, "echo", ms.Name())
		assert.Equal(t, b, ms.Bus())

		result, err := b.SendEvent(echo{text: "hi"})
		require.NoError(t, err)
		value, err := result.GetWithin(time.Second)
		require.NoError(t, err)
		assert.Equal(t, "echo: hi", value)

		require.Equal(t, 1, b.SendBroadcast(shout{}))
		require.Eventually(t, func() bool { return shouts.Load() == 1 }, time.Second, 5*time.Millisecond)

		b.SendBroadcast(stop{})
		require.NoError(t, waitDone(t, errc))

		<-ms.Done()
		assert.Equal(t, StatusDown, ms.Status())
		assert.Equal(t, StateTerminated, ms.State())
		assert.False(t, b.IsRegistered(ms.ID()))
		assert.Zero(t, b.SubscribersCount(bus.KindEvent, bus.TopicFor[echo]()))
	})
	t.Run("stops processing once terminated", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		b := newTestBus()
		processed := atomic.NewInt32(0)

		ms := New("worker", b, func(ms *MicroService) error {
			return OnBroadcast(ms, func(ctx *Context, _ shout) {
				processed.Inc()
				ctx.Self().Terminate()
			})
		}, WithLogger(log.DiscardLogger))

		// enqueue three broadcasts before the loop gets a chance to run
		errc := make(chan error, 1)
		registered := make(chan struct{})
		ms.init = func(init Initializer) Initializer {
			return func(ms *MicroService) error {
				if err := init(ms); err != nil {
					return err
				}
				for range 3 {
					ms.SendBroadcast(shout{})
				}
				close(registered)
				return nil
			}
		}(ms.init)

		go func() { errc <- ms.Run(context.Background()) }()
		<-registered
		require.NoError(t, waitDone(t, errc))
		assert.EqualValues(t, 1, processed.Load())
	})
	t.Run("recovers a panicking handler", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		b := newTestBus()

		ms := New("faulty", b, func(ms *MicroService) error {
			return OnBroadcast(ms, func(_ *Context, _ boom) {
				panic("boom")
			})
		}, WithLogger(log.DiscardLogger))

		errc := start(t, ms)
		b.SendBroadcast(boom{})

		err := waitDone(t, errc)
		var pe *gerrors.PanicError
		require.ErrorAs(t, err, &pe)
		assert.Contains(t, err.Error(), "boom")
		assert.Equal(t, StatusError, ms.Status())
		assert.False(t, b.IsRegistered(ms.ID()))
	})
	t.Run("recovers a handler panicking with an error", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		b := newTestBus()
		cause := errors.New("broken sensor")

		ms := New("faulty", b, func(ms *MicroService) error {
			return OnBroadcast(ms, func(_ *Context, _ boom) {
				panic(cause)
			})
		}, WithLogger(log.DiscardLogger))

		errc := start(t, ms)
		b.SendBroadcast(boom{})

		err := waitDone(t, errc)
		require.ErrorIs(t, err, cause)
	})
	t.Run("skips unknown message types", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		b := newTestBus()
		echoes := atomic.NewInt32(0)

		ms := New("picky", b, func(ms *MicroService) error {
			return OnEvent(ms, func(ctx *Context, _ echo) {
				echoes.Inc()
				ctx.Complete(nil)
			})
		}, WithLogger(log.DiscardLogger))

		errc := start(t, ms)
		// subscribe the service to a type it has no handler for
		require.NoError(t, b.SubscribeBroadcast(bus.TopicFor[shout](), ms.ID()))
		b.SendBroadcast(shout{})

		result, err := b.SendEvent(echo{})
		require.NoError(t, err)
		_, err = result.GetWithin(time.Second)
		require.NoError(t, err)
		assert.EqualValues(t, 1, echoes.Load())

		ms.Terminate()
		ms.Terminate()
		require.NoError(t, waitDone(t, errc))
	})
	t.Run("fails on initializer error", func(t *testing.T) {
		b := newTestBus()
		cause := errors.New("no data")
		ms := New("broken", b, func(*MicroService) error { return cause }, WithLogger(log.DiscardLogger))

		err := ms.Run(context.Background())
		require.ErrorIs(t, err, gerrors.ErrInitFailure)
		require.ErrorIs(t, err, cause)
		assert.Equal(t, StatusError, ms.Status())
		assert.Equal(t, StateTerminated, ms.State())
		assert.False(t, b.IsRegistered(ms.ID()))

		select {
		case <-ms.Ready():
		default:
			t.Fatal("ready must be released")
		}
	})
	t.Run("cannot run twice", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		b := newTestBus()
		ms := New("once", b, nil, WithLogger(log.DiscardLogger))
		errc := start(t, ms)

		require.ErrorIs(t, ms.Run(context.Background()), gerrors.ErrAlreadyStarted)
		ms.Terminate()
		require.NoError(t, waitDone(t, errc))
	})
	t.Run("stops with the parent context", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		b := newTestBus()
		ms := New("bound", b, nil, WithLogger(log.DiscardLogger))

		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error, 1)
		go func() { errc <- ms.Run(ctx) }()
		<-ms.Ready()

		cancel()
		require.NoError(t, waitDone(t, errc))
		assert.Equal(t, StatusDown, ms.Status())
	})
	t.Run("terminated before running", func(t *testing.T) {
		b := newTestBus()
		ms := New("early", b, nil, WithLogger(log.DiscardLogger))
		ms.Terminate()
		require.NoError(t, ms.Run(context.Background()))
		assert.True(t, ms.IsTerminated())
	})
	t.Run("rejects a nil handler", func(t *testing.T) {
		b := newTestBus()
		ms := New("nil", b, func(ms *MicroService) error {
			return OnEvent[echo](ms, nil)
		}, WithLogger(log.DiscardLogger))
		require.ErrorIs(t, ms.Run(context.Background()), gerrors.ErrInitFailure)
	})
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "UP", StatusUp.String())
	assert.Equal(t, "DOWN", StatusDown.String())
	assert.Equal(t, "ERROR", StatusError.String())
	assert.Equal(t, "UNKNOWN", Status(9).String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "unknown", State(9).String())
}
