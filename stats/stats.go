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

// Package stats owns the run statistics. Counters are only mutated by the
// aggregator actor, in response to its events.
package stats

import (
	"maps"

	"github.com/tochemey/gurionrock/bus"
	"github.com/tochemey/gurionrock/log"
	"github.com/tochemey/gurionrock/service"
	"github.com/tochemey/gurionrock/slam"
)

// Name is the aggregator service name
const Name = "statistics"

type aggregator struct {
	statistics  slam.Statistics
	lastCameras map[string]slam.StampedDetectedObjects
	lastLidars  map[string][]slam.TrackedObject
}

// New creates the aggregator service
func New(messageBus *bus.Bus, logger log.Logger) *service.MicroService {
	state := &aggregator{
		lastCameras: make(map[string]slam.StampedDetectedObjects),
		lastLidars:  make(map[string][]slam.TrackedObject),
	}

	return service.New(Name, messageBus, func(ms *service.MicroService) error {
		if err := service.OnEvent(ms, state.increment); err != nil {
			return err
		}
		if err := service.OnEvent(ms, state.recordCamera); err != nil {
			return err
		}
		if err := service.OnEvent(ms, state.recordLidar); err != nil {
			return err
		}
		return service.OnEvent(ms, state.query)
	}, service.WithLogger(logger))
}

func (x *aggregator) increment(ctx *service.Context, msg Increment) {
	switch msg.Counter {
	case SystemRuntime:
		x.statistics.SystemRuntime += msg.Delta
	case DetectedObjects:
		x.statistics.NumDetectedObjects += msg.Delta
	case TrackedObjects:
		x.statistics.NumTrackedObjects += msg.Delta
	case Landmarks:
		x.statistics.NumLandmarks += msg.Delta
	default:
		ctx.Logger().Warnf("unknown counter %d", msg.Counter)
	}
	ctx.Complete(nil)
}

func (x *aggregator) recordCamera(ctx *service.Context, msg RecordCameraFrame) {
	x.lastCameras[msg.Camera] = msg.Frame
	ctx.Complete(nil)
}

func (x *aggregator) recordLidar(ctx *service.Context, msg RecordLidarFrame) {
	x.lastLidars[msg.Lidar] = msg.Objects
	ctx.Complete(nil)
}

func (x *aggregator) query(ctx *service.Context, _ Query) {
	ctx.Complete(&Snapshot{
		Statistics:  x.statistics,
		LastCameras: maps.Clone(x.lastCameras),
		LastLidars:  maps.Clone(x.lastLidars),
	})
}
