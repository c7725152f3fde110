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

// Package dataset loads the recorded sensor data a simulation replays.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tochemey/gurionrock/config"
	"github.com/tochemey/gurionrock/errors"
	"github.com/tochemey/gurionrock/slam"
)

// Dataset is the whole recording of a run
type Dataset struct {
	// Cameras holds the frames of every configured camera keyed by sensor name
	Cameras map[string]*slam.CameraFrames
	// Lidar is the cloud point database shared by the LiDAR workers
	Lidar *slam.LidarDatabase
	// Poses is the robot pose track
	Poses *slam.PoseTrack
}

// TotalFrames returns the number of camera frames of the recording
func (d *Dataset) TotalFrames() int {
	total := 0
	for _, frames := range d.Cameras {
		total += frames.Len()
	}
	return total
}

// Load reads every file the configuration points at. A camera without
// recording gets an empty frame list.
func Load(cfg *config.Config) (*Dataset, error) {
	dataset := &Dataset{
		Cameras: make(map[string]*slam.CameraFrames, len(cfg.Cameras.Configurations)),
		Lidar:   slam.NewLidarDatabase(nil),
	}

	if len(cfg.Cameras.Configurations) > 0 {
		recordings, err := LoadCameraData(cfg.Cameras.DataPath)
		if err != nil {
			return nil, err
		}

		for _, camera := range cfg.Cameras.Configurations {
			dataset.Cameras[camera.Name()] = slam.NewCameraFrames(recordings[camera.Name()])
		}
	}

	if len(cfg.LidarWorkers.Configurations) > 0 {
		database, err := LoadLidarData(cfg.LidarWorkers.DataPath)
		if err != nil {
			return nil, err
		}
		dataset.Lidar = database
	}

	poses, err := LoadPoseData(cfg.PoseFile)
	if err != nil {
		return nil, err
	}
	dataset.Poses = poses
	return dataset, nil
}

// LoadCameraData reads the camera recording file. Frames are keyed by camera key.
func LoadCameraData(path string) (map[string][]slam.StampedDetectedObjects, error) {
	recordings := make(map[string][]slam.StampedDetectedObjects)
	if err := decode(path, &recordings); err != nil {
		return nil, err
	}
	return recordings, nil
}

// LoadLidarData reads the LiDAR cloud point database
func LoadLidarData(path string) (*slam.LidarDatabase, error) {
	var records []slam.StampedCloudPoints
	if err := decode(path, &records); err != nil {
		return nil, err
	}
	return slam.NewLidarDatabase(records), nil
}

// LoadPoseData reads the robot pose track
func LoadPoseData(path string) (*slam.PoseTrack, error) {
	var poses []slam.Pose
	if err := decode(path, &poses); err != nil {
		return nil, err
	}
	return slam.NewPoseTrack(poses), nil
}

func decode(path string, v any) error {
	bytea, err := os.ReadFile(path)
	if err != nil {
		return errors.NewErrInvalidConfig(err)
	}

	if err := json.Unmarshal(bytea, v); err != nil {
		return errors.NewErrInvalidConfig(fmt.Errorf("failed to parse %s: %w", path, err))
	}
	return nil
}
