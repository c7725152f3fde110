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

// Package messages defines the events and broadcasts exchanged by the
// simulation actors.
package messages

import (
	"github.com/tochemey/gurionrock/slam"
)

// Milestone categories tracked by the coordinator, in pipeline order
const (
	CategoryDetect = "detect"
	CategoryTrack  = "track"
	CategoryFuse   = "fuse"
)

// Tick is broadcast by the tick source once per tick, starting at 1
type Tick struct {
	Tick int
}

// Terminated is broadcast once to shut the simulation down gracefully
type Terminated struct {
	Sender string
}

// Crashed is broadcast by a sensor detecting a fault
type Crashed struct {
	Sender      string
	Sensor      string
	Description string
}

// Milestone is broadcast when one unit of tracked work completes
type Milestone struct {
	Category string
}

// StageComplete is broadcast once every unit of work of a category is done
type StageComplete struct {
	Category string
}

// SensorDown is broadcast by a sensor that stopped gracefully
type SensorDown struct {
	Sensor string
}

// DetectObjects is sent by a camera to the LiDAR workers
type DetectObjects struct {
	Camera string
	// Frame is the camera frame. Its Time is the detection tick.
	Frame slam.StampedDetectedObjects
	// SentAt is the tick the frame was emitted at
	SentAt int
}

// TrackedObjects is sent by a LiDAR worker to the fusion service
type TrackedObjects struct {
	Lidar         string
	DetectionTick int
	Objects       []slam.TrackedObject
}

// PoseUpdate is sent by the pose service to the fusion service
type PoseUpdate struct {
	Pose slam.Pose
}
