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
	"slices"

	"github.com/tochemey/gurionrock/bus"
	"github.com/tochemey/gurionrock/messages"
	"github.com/tochemey/gurionrock/service"
	"github.com/tochemey/gurionrock/slam"
	"github.com/tochemey/gurionrock/stats"
)

// FusionServiceName is the fusion SLAM service name
const FusionServiceName = "fusion-slam"

// parked is a tracked batch waiting for the pose of its detection tick
type parked struct {
	envelope *bus.Envelope
	batch    messages.TrackedObjects
}

// FusionSlam builds the global map from the tracked objects, using the robot
// pose at the tick the objects were detected.
type FusionSlam struct {
	*service.MicroService

	poses     map[int]slam.Pose
	history   []slam.Pose
	landmarks *slam.Map
	parked    map[int][]parked
	stats     *stats.Client
	tracked   bool
}

// NewFusionSlam creates the fusion SLAM service
func NewFusionSlam(messageBus *bus.Bus, opts ...service.Option) *FusionSlam {
	fusion := &FusionSlam{
		poses:     make(map[int]slam.Pose),
		landmarks: slam.NewMap(),
		parked:    make(map[int][]parked),
	}
	fusion.MicroService = service.New(FusionServiceName, messageBus, fusion.initialize, opts...)
	fusion.stats = stats.NewClient(fusion.SendEvent, fusion.Logger())
	return fusion
}

// Landmarks returns the global map ordered by id.
// It must only be called once the service is done.
func (f *FusionSlam) Landmarks() []slam.Landmark {
	return f.landmarks.Landmarks()
}

// Poses returns the poses received in arrival order.
// It must only be called once the service is done.
func (f *FusionSlam) Poses() []slam.Pose {
	return slices.Clone(f.history)
}

// Parked returns the number of batches waiting for a pose.
// It must only be called once the service is done.
func (f *FusionSlam) Parked() int {
	count := 0
	for _, batches := range f.parked {
		count += len(batches)
	}
	return count
}

func (f *FusionSlam) initialize(ms *service.MicroService) error {
	if err := service.OnEvent(ms, f.handlePose); err != nil {
		return err
	}
	if err := service.OnEvent(ms, f.handleTracked); err != nil {
		return err
	}
	if err := service.OnBroadcast(ms, func(ctx *service.Context, msg messages.StageComplete) {
		if msg.Category == messages.CategoryTrack {
			f.tracked = true
			f.downWhenIdle(ctx.Self())
		}
	}); err != nil {
		return err
	}
	return onShutdown(ms)
}

func (f *FusionSlam) handlePose(ctx *service.Context, msg messages.PoseUpdate) {
	pose := msg.Pose
	f.poses[pose.Time] = pose
	f.history = append(f.history, pose)
	ctx.Complete(true)

	waiting, ok := f.parked[pose.Time]
	if !ok {
		return
	}
	delete(f.parked, pose.Time)
	for _, item := range waiting {
		f.fuse(item.batch, pose)
		ctx.Self().Complete(item.envelope, true)
	}
	f.downWhenIdle(ctx.Self())
}

func (f *FusionSlam) handleTracked(ctx *service.Context, msg messages.TrackedObjects) {
	pose, ok := f.poses[msg.DetectionTick]
	if !ok {
		ctx.Logger().Debugf("parking objects of tick %d until its pose arrives", msg.DetectionTick)
		f.parked[msg.DetectionTick] = append(f.parked[msg.DetectionTick], parked{
			envelope: ctx.Envelope(),
			batch:    msg,
		})
		return
	}

	f.fuse(msg, pose)
	ctx.Complete(true)
}

// downWhenIdle stops the service once tracking is over and no batch waits
// for its pose. Every tracked batch is in the mailbox before the track stage
// completes.
func (f *FusionSlam) downWhenIdle(ms *service.MicroService) {
	if f.tracked && len(f.parked) == 0 {
		signalDown(ms, FusionServiceName)
	}
}

func (f *FusionSlam) fuse(batch messages.TrackedObjects, pose slam.Pose) {
	added := f.landmarks.Merge(slam.ToGlobal(batch.Objects, pose))
	f.stats.Increment(stats.Landmarks, added)
	f.SendBroadcast(messages.Milestone{Category: messages.CategoryFuse})
}
