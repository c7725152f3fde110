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

// Package sensors implements the worker actors of the perception pipeline.
package sensors

import (
	"github.com/tochemey/gurionrock/messages"
	"github.com/tochemey/gurionrock/service"
)

// onShutdown registers the handlers shared by every worker: a Terminated
// broadcast stops it gracefully and a Crashed broadcast stops it in error.
func onShutdown(ms *service.MicroService) error {
	if err := service.OnBroadcast(ms, func(ctx *service.Context, msg messages.Terminated) {
		ctx.Logger().Debugf("terminated by %s", msg.Sender)
		ctx.Self().SetStatus(service.StatusDown)
		ctx.Self().Terminate()
	}); err != nil {
		return err
	}

	return service.OnBroadcast(ms, func(ctx *service.Context, msg messages.Crashed) {
		if msg.Sender == ctx.Self().Name() {
			return
		}
		ctx.Logger().Debugf("stopping, %s crashed", msg.Sender)
		ctx.Self().SetStatus(service.StatusError)
		ctx.Self().Terminate()
	})
}

// signalDown stops a sensor that completed its work and tells the coordinator
func signalDown(ms *service.MicroService, sensor string) {
	if ms.IsTerminated() {
		return
	}
	ms.Logger().Infof("%s has no more data", sensor)
	ms.SetStatus(service.StatusDown)
	ms.SendBroadcast(messages.SensorDown{Sensor: sensor})
	ms.Terminate()
}

// signalCrash stops a sensor that detected a fault and starts the crash cascade
func signalCrash(ms *service.MicroService, sensor, description string) {
	if ms.IsTerminated() {
		return
	}
	ms.Logger().Errorf("%s failed: %s", sensor, description)
	ms.SetStatus(service.StatusError)
	ms.SendBroadcast(messages.Crashed{
		Sender:      ms.Name(),
		Sensor:      sensor,
		Description: description,
	})
	ms.Terminate()
}
