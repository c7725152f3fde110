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

// Statistics summarizes a run
type Statistics struct {
	SystemRuntime      int `json:"systemRuntime"`
	NumDetectedObjects int `json:"numDetectedObjects"`
	NumTrackedObjects  int `json:"numTrackedObjects"`
	NumLandmarks       int `json:"numLandmarks"`
}

// Output is written when a run completes normally
type Output struct {
	Statistics Statistics          `json:"statistics"`
	Landmarks  map[string]Landmark `json:"landMarks"`
}

// ErrorOutput is written when a sensor crashed
type ErrorOutput struct {
	Error        string                            `json:"error"`
	FaultySensor string                            `json:"faultySensor"`
	LastCameras  map[string]StampedDetectedObjects `json:"lastCamerasFrame"`
	LastLidars   map[string][]TrackedObject        `json:"lastLiDarWorkerTrackersFrame"`
	Poses        []Pose                            `json:"poses"`
	Statistics   Statistics                        `json:"statistics"`
	Landmarks    map[string]Landmark               `json:"landMarks"`
}

// LandmarksByID indexes landmarks by id
func LandmarksByID(landmarks []Landmark) map[string]Landmark {
	index := make(map[string]Landmark, len(landmarks))
	for _, landmark := range landmarks {
		index[landmark.ID] = landmark
	}
	return index
}
