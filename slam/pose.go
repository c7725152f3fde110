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

package slam

// PoseTrack indexes the robot poses by tick
type PoseTrack struct {
	poses map[int]Pose
	last  Pose
}

// NewPoseTrack indexes the given poses. The last pose for a tick wins.
func NewPoseTrack(poses []Pose) *PoseTrack {
	track := &PoseTrack{
		poses: make(map[int]Pose, len(poses)),
	}
	for _, pose := range poses {
		track.poses[pose.Time] = pose
		if pose.Time >= track.last.Time {
			track.last = pose
		}
	}
	return track
}

// At returns the pose at the given tick
func (x *PoseTrack) At(tick int) (Pose, bool) {
	pose, ok := x.poses[tick]
	return pose, ok
}

// Last returns the pose with the highest tick
func (x *PoseTrack) Last() (Pose, bool) {
	return x.last, len(x.poses) > 0
}

// Len returns the number of poses
func (x *PoseTrack) Len() int {
	return len(x.poses)
}
