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

// Package clock implements the tick source of the simulation.
package clock

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/gurionrock/bus"
	"github.com/tochemey/gurionrock/errors"
	"github.com/tochemey/gurionrock/messages"
	"github.com/tochemey/gurionrock/service"
	"github.com/tochemey/gurionrock/stats"
)

// Name is the tick source service name
const Name = "time-service"

// TimeService broadcasts a Tick every interval, from 1 to duration, then
// broadcasts Terminated and stops. The timer runs on its own goroutine and is
// cancelled as soon as a Crashed or Terminated broadcast is received.
type TimeService struct {
	*service.MicroService

	interval time.Duration
	duration int
	current  *atomic.Int64
	stats    *stats.Client
	cancel   context.CancelFunc
	stopped  chan struct{}
}

// NewTimeService creates the tick source. The interval must be positive.
func NewTimeService(messageBus *bus.Bus, interval time.Duration, duration int, opts ...service.Option) (*TimeService, error) {
	if interval <= 0 {
		return nil, errors.NewErrInvalidConfig(fmt.Errorf("tick interval (%s) must be positive", interval))
	}

	ts := &TimeService{
		interval: interval,
		duration: duration,
		current:  atomic.NewInt64(0),
		stopped:  make(chan struct{}),
	}
	ts.MicroService = service.New(Name, messageBus, ts.initialize, opts...)
	ts.stats = stats.NewClient(ts.SendEvent, ts.Logger())
	return ts, nil
}

// CurrentTick returns the last tick broadcast
func (ts *TimeService) CurrentTick() int {
	return int(ts.current.Load())
}

// Stopped is closed once the timer goroutine returned, or right away when the
// service failed to initialize
func (ts *TimeService) Stopped() <-chan struct{} {
	return ts.stopped
}

func (ts *TimeService) initialize(ms *service.MicroService) error {
	ctx, cancel := context.WithCancel(context.Background())
	ts.cancel = cancel

	if err := service.OnBroadcast(ms, func(c *service.Context, msg messages.Crashed) {
		c.Logger().Infof("stopping the clock at tick %d: %s crashed", ts.CurrentTick(), msg.Sender)
		cancel()
		c.Self().SetStatus(service.StatusError)
		c.Self().Terminate()
	}); err != nil {
		cancel()
		close(ts.stopped)
		return err
	}

	if err := service.OnBroadcast(ms, func(c *service.Context, msg messages.Terminated) {
		if msg.Sender == Name {
			return
		}
		c.Logger().Infof("stopping the clock at tick %d: terminated by %s", ts.CurrentTick(), msg.Sender)
		cancel()
		c.Self().SetStatus(service.StatusDown)
		c.Self().Terminate()
	}); err != nil {
		cancel()
		close(ts.stopped)
		return err
	}

	go ts.run(ctx)
	return nil
}

func (ts *TimeService) run(ctx context.Context) {
	defer close(ts.stopped)
	defer ts.cancel()

	ticker := time.NewTicker(ts.interval)
	defer ticker.Stop()

	for tick := 1; tick <= ts.duration; tick++ {
		ts.current.Store(int64(tick))
		ts.SendBroadcast(messages.Tick{Tick: tick})
		ts.stats.Increment(stats.SystemRuntime, 1)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-ts.Done():
			return
		}
	}

	if ctx.Err() != nil {
		return
	}

	ts.Logger().Infof("duration of %d ticks reached", ts.duration)
	ts.SendBroadcast(messages.Terminated{Sender: Name})
	ts.SetStatus(service.StatusDown)
	ts.Terminate()
}
