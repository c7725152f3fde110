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

package stats

import "github.com/tochemey/gurionrock/slam"

// Counter names a statistic
type Counter int

const (
	SystemRuntime Counter = iota
	DetectedObjects
	TrackedObjects
	Landmarks
)

// String returns the counter name
func (c Counter) String() string {
	switch c {
	case SystemRuntime:
		return "systemRuntime"
	case DetectedObjects:
		return "numDetectedObjects"
	case TrackedObjects:
		return "numTrackedObjects"
	case Landmarks:
		return "numLandmarks"
	default:
		return "unknown"
	}
}

// Increment adds Delta to a counter
type Increment struct {
	Counter Counter
	Delta   int
}

// RecordCameraFrame stores the last frame emitted by a camera
type RecordCameraFrame struct {
	Camera string
	Frame  slam.StampedDetectedObjects
}

// RecordLidarFrame stores the last batch emitted by a LiDAR worker
type RecordLidarFrame struct {
	Lidar   string
	Objects []slam.TrackedObject
}

// Query asks for a Snapshot
type Query struct{}

// Snapshot is the answer to a Query
type Snapshot struct {
	Statistics  slam.Statistics
	LastCameras map[string]slam.StampedDetectedObjects
	LastLidars  map[string][]slam.TrackedObject
}
