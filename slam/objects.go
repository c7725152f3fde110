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

// Package slam holds the perception domain objects and the numeric
// transforms applied to them.
package slam

// ErrorObjectID marks a detected object standing for a device fault
const ErrorObjectID = "ERROR"

// CloudPoint is a point of the plane. Heights reported by the LiDAR are dropped.
type CloudPoint struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// DetectedObject is an object recognized by a camera
type DetectedObject struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
}

// IsError reports whether the object stands for a camera fault
func (o DetectedObject) IsError() bool {
	return o.ID == ErrorObjectID
}

// StampedDetectedObjects is one camera frame: the objects seen at a given tick
type StampedDetectedObjects struct {
	Time            int              `json:"time" yaml:"time"`
	DetectedObjects []DetectedObject `json:"detectedObjects" yaml:"detectedObjects"`
}

// Fault returns the first object standing for a camera fault
func (s StampedDetectedObjects) Fault() (DetectedObject, bool) {
	for _, object := range s.DetectedObjects {
		if object.IsError() {
			return object, true
		}
	}
	return DetectedObject{}, false
}

// StampedCloudPoints is the LiDAR measurement of one object at a given tick.
// Each point is [x, y, z].
type StampedCloudPoints struct {
	ID          string      `json:"id" yaml:"id"`
	Time        int         `json:"time" yaml:"time"`
	CloudPoints [][]float64 `json:"cloudPoints" yaml:"cloudPoints"`
}

// TrackedObject is a detected object located by a LiDAR worker, in the
// robot's local frame
type TrackedObject struct {
	ID          string       `json:"id"`
	Time        int          `json:"time"`
	Description string       `json:"description"`
	Coordinates []CloudPoint `json:"coordinates"`
}

// Pose is the position and heading of the robot at a given tick.
// Yaw is expressed in degrees.
type Pose struct {
	Time int     `json:"time" yaml:"time"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	Yaw  float64 `json:"yaw" yaml:"yaw"`
}

// Landmark is an object located in the global frame
type Landmark struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Coordinates []CloudPoint `json:"coordinates"`
}
