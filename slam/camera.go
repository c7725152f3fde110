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

import (
	"slices"
)

// CameraFrames indexes the frames of one camera by tick
type CameraFrames struct {
	frames map[int]StampedDetectedObjects
	last   int
}

// NewCameraFrames indexes the given frames. Frames sharing a tick are merged.
func NewCameraFrames(frames []StampedDetectedObjects) *CameraFrames {
	index := &CameraFrames{
		frames: make(map[int]StampedDetectedObjects, len(frames)),
	}

	for _, frame := range frames {
		if existing, ok := index.frames[frame.Time]; ok {
			existing.DetectedObjects = append(existing.DetectedObjects, frame.DetectedObjects...)
			index.frames[frame.Time] = existing
		} else {
			index.frames[frame.Time] = frame
		}
		index.last = max(index.last, frame.Time)
	}
	return index
}

// At returns the frame captured at the given tick
func (x *CameraFrames) At(tick int) (StampedDetectedObjects, bool) {
	frame, ok := x.frames[tick]
	return frame, ok
}

// LastTime returns the tick of the last frame
func (x *CameraFrames) LastTime() int {
	return x.last
}

// Len returns the number of frames
func (x *CameraFrames) Len() int {
	return len(x.frames)
}

// Times returns the ticks of every frame in ascending order
func (x *CameraFrames) Times() []int {
	times := make([]int, 0, len(x.frames))
	for tick := range x.frames {
		times = append(times, tick)
	}
	slices.Sort(times)
	return times
}
