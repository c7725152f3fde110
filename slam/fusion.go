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
	"math"
	"slices"
	"strings"
)

// ToGlobal converts tracked objects from the robot's frame to the global
// frame using the robot pose: rotation by the yaw then translation.
func ToGlobal(tracked []TrackedObject, pose Pose) []Landmark {
	yaw := pose.Yaw * math.Pi / 180
	cos, sin := math.Cos(yaw), math.Sin(yaw)

	landmarks := make([]Landmark, 0, len(tracked))
	for _, object := range tracked {
		points := make([]CloudPoint, 0, len(object.Coordinates))
		for _, point := range object.Coordinates {
			points = append(points, CloudPoint{
				X: point.X*cos - point.Y*sin + pose.X,
				Y: point.X*sin + point.Y*cos + pose.Y,
			})
		}
		landmarks = append(landmarks, Landmark{
			ID:          object.ID,
			Description: object.Description,
			Coordinates: points,
		})
	}
	return landmarks
}

// Refine averages the landmark coordinates point-wise with a new measurement.
// Points without a counterpart are kept as they are.
func (l *Landmark) Refine(points []CloudPoint) {
	refined := make([]CloudPoint, max(len(l.Coordinates), len(points)))
	for index := range refined {
		switch {
		case index >= len(points):
			refined[index] = l.Coordinates[index]
		case index >= len(l.Coordinates):
			refined[index] = points[index]
		default:
			refined[index] = CloudPoint{
				X: (l.Coordinates[index].X + points[index].X) / 2,
				Y: (l.Coordinates[index].Y + points[index].Y) / 2,
			}
		}
	}
	l.Coordinates = refined
}

// Map is the global map of landmarks. It is owned by the fusion service and
// is not safe for concurrent use.
type Map struct {
	landmarks map[string]*Landmark
}

// NewMap creates an empty map
func NewMap() *Map {
	return &Map{
		landmarks: make(map[string]*Landmark),
	}
}

// Merge adds new landmarks and refines the known ones.
// It returns the number of landmarks added.
func (m *Map) Merge(landmarks []Landmark) int {
	added := 0
	for _, landmark := range landmarks {
		if existing, ok := m.landmarks[landmark.ID]; ok {
			existing.Refine(landmark.Coordinates)
			continue
		}
		copied := landmark
		copied.Coordinates = slices.Clone(landmark.Coordinates)
		m.landmarks[landmark.ID] = &copied
		added++
	}
	return added
}

// Get returns the landmark with the given id
func (m *Map) Get(id string) (Landmark, bool) {
	landmark, ok := m.landmarks[id]
	if !ok {
		return Landmark{}, false
	}
	return *landmark, true
}

// Len returns the number of landmarks
func (m *Map) Len() int {
	return len(m.landmarks)
}

// Landmarks returns a copy of every landmark ordered by id
func (m *Map) Landmarks() []Landmark {
	landmarks := make([]Landmark, 0, len(m.landmarks))
	for _, landmark := range m.landmarks {
		copied := *landmark
		copied.Coordinates = slices.Clone(landmark.Coordinates)
		landmarks = append(landmarks, copied)
	}
	slices.SortFunc(landmarks, func(a, b Landmark) int {
		return strings.Compare(a.ID, b.ID)
	})
	return landmarks
}
