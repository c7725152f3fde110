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

// LidarLost describes the fault of a LiDAR worker
const LidarLost = "connection to LiDAR lost"

// LidarWorker locates the objects detected by the cameras and hands them to
// the fusion service frequency ticks after their detection.
type LidarWorker struct {
	*service.MicroService

	sensor    string
	frequency int
	database  *slam.LidarDatabase
	buffer    *readiness.Buffer[messages.TrackedObjects]
	stats     *stats.Client
}

// NewLidarWorker creates a LiDAR worker service
func NewLidarWorker(messageBus *bus.Bus, sensor string, frequency int, database *slam.LidarDatabase, opts ...service.Option) *LidarWorker {
	worker := &LidarWorker{
		sensor:    sensor,
		frequency: frequency,
		database:  database,
		buffer:    readiness.New[messages.TrackedObjects](),
	}
	worker.MicroService = service.New(sensor, messageBus, worker.initialize, opts...)
	worker.stats = stats.NewClient(worker.SendEvent, worker.Logger())
	return worker
}

// Sensor returns the sensor name
func (l *LidarWorker) Sensor() string {
	return l.sensor
}

func (l *LidarWorker) initialize(ms *service.MicroService) error {
	if err := service.OnEvent(ms, l.handleDetection); err != nil {
		return err
	}
	if err := service.OnBroadcast(ms, l.handleTick); err != nil {
		return err
	}
	if err := service.OnBroadcast(ms, func(ctx *service.Context, msg messages.StageComplete) {
		if msg.Category != messages.CategoryTrack {
			return
		}
		if pending := l.buffer.Drain(l.emit); pending > 0 {
			ctx.Logger().Warnf("flushed %d batch(es) ahead of time", pending)
		}
		signalDown(ctx.Self(), l.sensor)
	}); err != nil {
		return err
	}
	return onShutdown(ms)
}

func (l *LidarWorker) handleDetection(ctx *service.Context, msg messages.DetectObjects) {
	batch := messages.TrackedObjects{
		Lidar:         l.sensor,
		DetectionTick: msg.Frame.Time,
		Objects:       l.database.Track(msg.Frame),
	}
	l.buffer.Schedule(msg.Frame.Time+l.frequency, batch, l.emit)
	ctx.Complete(true)
}

func (l *LidarWorker) handleTick(ctx *service.Context, msg messages.Tick) {
	if l.database.ErrorAt(msg.Tick) {
		signalCrash(ctx.Self(), l.sensor, LidarLost)
		return
	}
	l.buffer.Advance(msg.Tick, l.emit)
}

func (l *LidarWorker) emit(batch messages.TrackedObjects) {
	if l.IsTerminated() {
		return
	}

	l.stats.Increment(stats.TrackedObjects, len(batch.Objects))
	l.stats.RecordLidarFrame(l.sensor, batch.Objects)
	if _, err := l.SendEvent(batch); err != nil {
		l.Logger().Warnf("objects detected at tick %d not fused: %v", batch.DetectionTick, err)
	}
	l.SendBroadcast(messages.Milestone{Category: messages.CategoryTrack})
}
