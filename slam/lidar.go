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

// LidarDatabase holds every cloud point measurement shared by the LiDAR workers
type LidarDatabase struct {
	points map[lidarKey][]CloudPoint
	faults map[int]struct{}
}

type lidarKey struct {
	id   string
	time int
}

// NewLidarDatabase indexes the given measurements. An entry whose id is
// ErrorObjectID marks a LiDAR fault at its tick.
func NewLidarDatabase(records []StampedCloudPoints) *LidarDatabase {
	db := &LidarDatabase{
		points: make(map[lidarKey][]CloudPoint, len(records)),
		faults: make(map[int]struct{}),
	}

	for _, record := range records {
		if record.ID == ErrorObjectID {
			db.faults[record.Time] = struct{}{}
			continue
		}

		points := make([]CloudPoint, 0, len(record.CloudPoints))
		for _, point := range record.CloudPoints {
			if len(point) < 2 {
				continue
			}
			points = append(points, CloudPoint{X: point[0], Y: point[1]})
		}
		db.points[lidarKey{id: record.ID, time: record.Time}] = points
	}
	return db
}

// CloudPoints returns the points measured for the object at the given tick
func (x *LidarDatabase) CloudPoints(id string, tick int) ([]CloudPoint, bool) {
	points, ok := x.points[lidarKey{id: id, time: tick}]
	return points, ok
}

// ErrorAt reports whether the LiDAR fails at the given tick
func (x *LidarDatabase) ErrorAt(tick int) bool {
	_, ok := x.faults[tick]
	return ok
}

// Len returns the number of measurements
func (x *LidarDatabase) Len() int {
	return len(x.points)
}

// Track locates the objects of a camera frame. Objects the database has no
// measurement for are tracked without coordinates.
func (x *LidarDatabase) Track(frame StampedDetectedObjects) []TrackedObject {
	tracked := make([]TrackedObject, 0, len(frame.DetectedObjects))
	for _, object := range frame.DetectedObjects {
		points, _ := x.CloudPoints(object.ID, frame.Time)
		tracked = append(tracked, TrackedObject{
			ID:          object.ID,
			Time:        frame.Time,
			Description: object.Description,
			Coordinates: points,
		})
	}
	return tracked
}
