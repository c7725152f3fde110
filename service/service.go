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
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/gurionrock/bus"
	gerrors "github.com/tochemey/gurionrock/errors"
	"github.com/tochemey/gurionrock/future"
	"github.com/tochemey/gurionrock/internal/types"
	"github.com/tochemey/gurionrock/log"
)

// Initializer subscribes the service handlers and prepares its state.
// It runs on the service goroutine before any message is processed.
type Initializer func(ms *MicroService) error

// MicroService is an actor: one goroutine blocking on its mailbox and
// dispatching every message to the handler registered for its type.
type MicroService struct {
	name   string
	id     bus.ActorID
	bus    *bus.Bus
	init   Initializer
	logger log.Logger

	state      *atomic.Int32
	status     *atomic.Int32
	started    *atomic.Bool
	terminated *atomic.Bool

	// handlers are only written by the initializer, before the loop starts
	eventHandlers     map[string]handlerFunc
	broadcastHandlers map[string]handlerFunc

	mu     sync.Mutex
	cancel context.CancelFunc

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
}

// New creates an instance of MicroService
func New(name string, messageBus *bus.Bus, init Initializer, opts ...Option) *MicroService {
	ms := &MicroService{
		name:              name,
		id:                bus.NewActorID(name),
		bus:               messageBus,
		init:              init,
		logger:            log.DefaultLogger,
		state:             atomic.NewInt32(int32(StateCreated)),
		status:            atomic.NewInt32(int32(StatusUp)),
		started:           atomic.NewBool(false),
		terminated:        atomic.NewBool(false),
		eventHandlers:     make(map[string]handlerFunc),
		broadcastHandlers: make(map[string]handlerFunc),
		ready:             make(chan struct{}),
		done:              make(chan struct{}),
	}

	for _, opt := range opts {
		opt.Apply(ms)
	}

	ms.logger = ms.logger.With("actor", name)
	return ms
}

// Name returns the service name
func (ms *MicroService) Name() string {
	return ms.name
}

// ID returns the service bus identity
func (ms *MicroService) ID() bus.ActorID {
	return ms.id
}

// Bus returns the bus the service is attached to
func (ms *MicroService) Bus() *bus.Bus {
	return ms.bus
}

// Logger returns the service logger
func (ms *MicroService) Logger() log.Logger {
	return ms.logger
}

// Status returns the current status
func (ms *MicroService) Status() Status {
	return Status(ms.status.Load())
}

// SetStatus sets the status the service will report
func (ms *MicroService) SetStatus(status Status) {
	ms.status.Store(int32(status))
}

// State returns the current lifecycle state
func (ms *MicroService) State() State {
	return State(ms.state.Load())
}

// Ready is closed once the service processes messages or has stopped
func (ms *MicroService) Ready() <-chan struct{} {
	return ms.ready
}

// Done is closed once the service is terminated
func (ms *MicroService) Done() <-chan struct{} {
	return ms.done
}

// IsTerminated reports whether the service was asked to terminate
func (ms *MicroService) IsTerminated() bool {
	return ms.terminated.Load()
}

// Terminate asks the service to stop. The handler currently running finishes
// and no further message is processed, even when already enqueued.
// It is safe to call from any goroutine and more than once.
func (ms *MicroService) Terminate() {
	if !ms.terminated.CompareAndSwap(false, true) {
		return
	}

	ms.mu.Lock()
	cancel := ms.cancel
	ms.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SendEvent sends an event through the bus
func (ms *MicroService) SendEvent(message any) (*future.Future[any], error) {
	return ms.bus.SendEvent(message)
}

// SendBroadcast sends a broadcast through the bus
func (ms *MicroService) SendBroadcast(message any) int {
	return ms.bus.SendBroadcast(message)
}

// Complete resolves the result of the given event
func (ms *MicroService) Complete(envelope *bus.Envelope, result any) bool {
	return ms.bus.Complete(envelope, result)
}

// Run registers the service, runs its initializer and processes messages
// until the service terminates or ctx is done. It blocks and is meant to be
// run on its own goroutine.
//
// A panicking handler sets the status to ERROR and Run returns a *PanicError.
func (ms *MicroService) Run(ctx context.Context) error {
	if !ms.started.CompareAndSwap(false, true) {
		return gerrors.ErrAlreadyStarted
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ms.mu.Lock()
	ms.cancel = cancel
	ms.mu.Unlock()
	if ms.terminated.Load() {
		cancel()
	}

	ms.state.Store(int32(StateInitializing))
	ms.bus.Register(ms.id)
	ms.logger.Debug("initializing")

	if ms.init != nil {
		if err := ms.init(ms); err != nil {
			ms.logger.Errorf("initialization failed: %v", err)
			ms.SetStatus(StatusError)
			ms.finish()
			return gerrors.NewErrInitFailure(err)
		}
	}

	ms.state.Store(int32(StateRunning))
	ms.readyOnce.Do(func() { close(ms.ready) })
	ms.logger.Debug("running")

	err := ms.loop(loopCtx)
	ms.finish()
	return err
}

func (ms *MicroService) loop(ctx context.Context) error {
	for !ms.terminated.Load() {
		envelope, err := ms.bus.AwaitMessage(ctx, ms.id)
		if err != nil {
			switch {
			case ms.terminated.Load():
				return nil
			case ctx.Err() != nil:
				ms.logger.Debugf("stopping: %v", ctx.Err())
				ms.status.CompareAndSwap(int32(StatusUp), int32(StatusDown))
				return nil
			case errors.Is(err, gerrors.ErrMailboxClosed):
				ms.logger.Warn("mailbox closed by a third party")
				return nil
			default:
				ms.SetStatus(StatusError)
				return err
			}
		}

		if err := ms.dispatch(ctx, envelope); err != nil {
			ms.logger.Errorf("handler of %s failed: %v", types.Short(envelope.Topic()), err)
			ms.SetStatus(StatusError)
			return err
		}
	}
	return nil
}

func (ms *MicroService) dispatch(ctx context.Context, envelope *bus.Envelope) (err error) {
	handlers := ms.eventHandlers
	if envelope.Kind() == bus.KindBroadcast {
		handlers = ms.broadcastHandlers
	}

	handler, ok := handlers[envelope.Topic()]
	if !ok {
		ms.logger.Warnf("no handler for %s %s", envelope.Kind(), types.Short(envelope.Topic()))
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()

	handler(&Context{
		ctx:      ctx,
		self:     ms,
		envelope: envelope,
	})
	return nil
}

// finish unregisters the service and releases anyone waiting on it
func (ms *MicroService) finish() {
	ms.terminated.Store(true)
	ms.state.Store(int32(StateTerminating))
	ms.bus.Unregister(ms.id)
	ms.state.Store(int32(StateTerminated))
	ms.readyOnce.Do(func() { close(ms.ready) })
	close(ms.done)
	ms.logger.Debugf("terminated with status %s", ms.Status())
}

// recovered turns a recovered panic value into a PanicError enriched with
// the location of the panic
func recovered(r any) error {
	var pe *gerrors.PanicError
	if err, ok := r.(error); ok && errors.As(err, &pe) {
		return pe
	}

	pc, fn, line, _ := runtime.Caller(3)
	if err, ok := r.(error); ok {
		return gerrors.NewPanicError(fmt.Errorf("%w at %s[%s:%d]", err, runtime.FuncForPC(pc).Name(), fn, line))
	}
	return gerrors.NewPanicError(fmt.Errorf("%#v at %s[%s:%d]", r, runtime.FuncForPC(pc).Name(), fn, line))
}
