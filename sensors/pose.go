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
	"github.com/tochemey/gurionrock/service"
	"github.com/tochemey/gurionrock/slam"
)

// PoseServiceName is the GPS/IMU service name
const PoseServiceName = "pose-service"

// PoseService sends the robot pose of every tick to the fusion service
type PoseService struct {
	*service.MicroService
	track *slam.PoseTrack
}

// NewPoseService creates the GPS/IMU service
func NewPoseService(messageBus *bus.Bus, track *slam.PoseTrack, opts ...service.Option) *PoseService {
	ps := &PoseService{track: track}
	ps.MicroService = service.New(PoseServiceName, messageBus, ps.initialize, opts...)
	return ps
}

func (p *PoseService) initialize(ms *service.MicroService) error {
	if err := service.OnBroadcast(ms, func(ctx *service.Context, msg messages.Tick) {
		pose, ok := p.track.At(msg.Tick)
		if !ok {
			return
		}
		if _, err := ctx.Self().SendEvent(messages.PoseUpdate{Pose: pose}); err != nil {
			ctx.Logger().Warnf("pose of tick %d dropped: %v", msg.Tick, err)
		}
	}); err != nil {
		return err
	}
	return onShutdown(ms)
}
