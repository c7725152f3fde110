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

// Package coordinator decides when the simulation is over.
//
// The coordinator counts the outstanding units of work of every pipeline
// stage and the sensors still alive. It broadcasts the shutdown exactly once,
// when every unit of work is accounted for, when no sensor is left, or when a
// sensor crashed.
package coordinator

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/gurionrock/bus"
	"github.com/tochemey/gurionrock/messages"
	"github.com/tochemey/gurionrock/service"
)

// Name is the coordinator service name
const Name = "coordinator"

// Stage is a pipeline stage and the units of work expected from it
type Stage struct {
	Category string
	Expected int
}

// Coordinator is the termination coordinator actor
type Coordinator struct {
	*service.MicroService

	// owned by the actor goroutine
	stages    []Stage
	remaining map[string]int
	announced map[string]bool
	live      int

	shutdown *atomic.Bool

	mu    sync.Mutex
	crash *messages.Crashed
}

// New creates a coordinator expecting the given stages, in pipeline order,
// and the given number of live sensors. A liveness of zero disables the
// liveness check.
func New(messageBus *bus.Bus, stages []Stage, liveSensors int, opts ...service.Option) *Coordinator {
	c := &Coordinator{
		stages:    stages,
		remaining: make(map[string]int, len(stages)),
		announced: make(map[string]bool, len(stages)),
		live:      liveSensors,
		shutdown:  atomic.NewBool(false),
	}

	for _, stage := range stages {
		c.remaining[stage.Category] += stage.Expected
	}

	c.MicroService = service.New(Name, messageBus, c.initialize, opts...)
	return c
}

// Crash returns the first crash observed
func (c *Coordinator) Crash() (messages.Crashed, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crash == nil {
		return messages.Crashed{}, false
	}
	return *c.crash, true
}

// ShutdownSent reports whether the coordinator broadcast the shutdown
func (c *Coordinator) ShutdownSent() bool {
	return c.shutdown.Load()
}

func (c *Coordinator) initialize(ms *service.MicroService) error {
	if err := service.OnBroadcast(ms, c.handleMilestone); err != nil {
		return err
	}
	if err := service.OnBroadcast(ms, c.handleSensorDown); err != nil {
		return err
	}
	if err := service.OnBroadcast(ms, c.handleCrashed); err != nil {
		return err
	}
	if err := service.OnBroadcast(ms, c.handleTerminated); err != nil {
		return err
	}

	// nothing to wait for
	if c.allDone() {
		ms.Logger().Info("no work expected")
		c.shutdownOnce(ms)
	}
	return nil
}

func (c *Coordinator) handleMilestone(ctx *service.Context, msg messages.Milestone) {
	remaining, ok := c.remaining[msg.Category]
	if !ok {
		ctx.Logger().Warnf("milestone of unknown category %q", msg.Category)
		return
	}

	if remaining == 0 {
		ctx.Logger().Warnf("unexpected %q milestone", msg.Category)
		return
	}

	remaining--
	c.remaining[msg.Category] = remaining
	ctx.Logger().Debugf("%d %q milestone(s) left", remaining, msg.Category)

	if remaining == 0 {
		c.announce(ctx.Self(), msg.Category)
	}

	if c.allDone() {
		ctx.Logger().Info("all work accounted for")
		c.shutdownOnce(ctx.Self())
	}
}

func (c *Coordinator) handleSensorDown(ctx *service.Context, msg messages.SensorDown) {
	if c.live <= 0 {
		return
	}

	c.live--
	ctx.Logger().Debugf("sensor %s is down, %d left", msg.Sensor, c.live)
	if c.live == 0 {
		ctx.Logger().Info("no sensor left")
		c.shutdownOnce(ctx.Self())
	}
}

func (c *Coordinator) handleCrashed(ctx *service.Context, msg messages.Crashed) {
	c.mu.Lock()
	if c.crash == nil {
		crash := msg
		c.crash = &crash
	}
	c.mu.Unlock()

	ctx.Logger().Errorf("%s crashed: %s", msg.Sender, msg.Description)
	ctx.Self().SetStatus(service.StatusError)
	c.shutdownOnce(ctx.Self())
}

func (c *Coordinator) handleTerminated(ctx *service.Context, msg messages.Terminated) {
	if msg.Sender == Name {
		return
	}
	ctx.Logger().Infof("terminated by %s", msg.Sender)
	ctx.Self().SetStatus(service.StatusDown)
	ctx.Self().Terminate()
}

// announce broadcasts the completion of a stage that is not the last one
func (c *Coordinator) announce(ms *service.MicroService, category string) {
	if c.announced[category] || c.isFinal(category) {
		return
	}
	c.announced[category] = true
	ms.SendBroadcast(messages.StageComplete{Category: category})
}

// shutdownOnce broadcasts Terminated the first time it is called and stops
// the coordinator
func (c *Coordinator) shutdownOnce(ms *service.MicroService) {
	if c.shutdown.CompareAndSwap(false, true) {
		ms.SendBroadcast(messages.Terminated{Sender: Name})
	}
	if ms.Status() == service.StatusUp {
		ms.SetStatus(service.StatusDown)
	}
	ms.Terminate()
}

func (c *Coordinator) allDone() bool {
	for _, remaining := range c.remaining {
		if remaining > 0 {
			return false
		}
	}
	return true
}

func (c *Coordinator) isFinal(category string) bool {
	return len(c.stages) > 0 && c.stages[len(c.stages)-1].Category == category
}
