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

package sensors

import (
	"github.com/tochemey/gurionrock/bus"
	"github.com/tochemey/gurionrock/messages"
	"github.com/tochemey/gurionrock/readiness"
	"github.com/tochemey/gurionrock/service"
	"github.com/tochemey/gurionrock/slam"
	"github.com/tochemey/gurionrock/stats"
)

// Camera emits the objects it detected at tick t once tick t+frequency is
// reached, as a DetectObjects event for the LiDAR workers.
type Camera struct {
	*service.MicroService

	sensor    string
	frequency int
	frames    *slam.CameraFrames
	buffer    *readiness.Buffer[slam.StampedDetectedObjects]
	stats     *stats.Client
	emitted   int
}

// NewCamera creates a camera service. The sensor name identifies the camera
// in the statistics and in crash reports.
func NewCamera(messageBus *bus.Bus, sensor string, frequency int, frames *slam.CameraFrames, opts ...service.Option) *Camera {
	camera := &Camera{
		sensor:    sensor,
		frequency: frequency,
		frames:    frames,
		buffer:    readiness.New[slam.StampedDetectedObjects](),
	}
	camera.MicroService = service.New(sensor, messageBus, camera.initialize, opts...)
	camera.stats = stats.NewClient(camera.SendEvent, camera.Logger())
	return camera
}

// Sensor returns the sensor name
func (c *Camera) Sensor() string {
	return c.sensor
}

func (c *Camera) initialize(ms *service.MicroService) error {
	if err := service.OnBroadcast(ms, c.handleTick); err != nil {
		return err
	}
	if err := service.OnBroadcast(ms, func(ctx *service.Context, msg messages.StageComplete) {
		if msg.Category == messages.CategoryDetect {
			signalDown(ctx.Self(), c.sensor)
		}
	}); err != nil {
		return err
	}
	return onShutdown(ms)
}

func (c *Camera) handleTick(ctx *service.Context, msg messages.Tick) {
	c.buffer.Advance(msg.Tick, c.emit)
	if frame, ok := c.frames.At(msg.Tick); ok {
		c.buffer.Schedule(msg.Tick+c.frequency, frame, c.emit)
	}

	if !ctx.Self().IsTerminated() && c.emitted >= c.frames.Len() {
		signalDown(ctx.Self(), c.sensor)
	}
}

func (c *Camera) emit(frame slam.StampedDetectedObjects) {
	if c.IsTerminated() {
		return
	}

	c.stats.RecordCameraFrame(c.sensor, frame)
	if fault, ok := frame.Fault(); ok {
		signalCrash(c.MicroService, c.sensor, fault.Description)
		return
	}

	c.stats.Increment(stats.DetectedObjects, len(frame.DetectedObjects))
	if _, err := c.SendEvent(messages.DetectObjects{
		Camera: c.sensor,
		Frame:  frame,
		SentAt: c.buffer.Current(),
	}); err != nil {
		c.Logger().Warnf("frame of tick %d not tracked: %v", frame.Time, err)
	}

	c.emitted++
	c.SendBroadcast(messages.Milestone{Category: messages.CategoryDetect})
}
