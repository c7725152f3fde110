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

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tochemey/gurionrock/errors"
	"github.com/tochemey/gurionrock/internal/validation"
)

// DefaultOutputFile is the output file name used when none is configured.
// It is written next to the configuration file.
const DefaultOutputFile = "output_file.json"

// Config is the simulation configuration
type Config struct {
	// Cameras lists the cameras and where their recordings live
	Cameras Cameras `json:"Cameras" yaml:"Cameras"`
	// LidarWorkers lists the LiDAR workers and where the shared cloud point database lives
	LidarWorkers LidarWorkers `json:"LiDarWorkers" yaml:"LiDarWorkers"`
	// PoseFile is the path of the robot pose recording
	PoseFile string `json:"poseJsonFile" yaml:"poseJsonFile"`
	// TickTime is the tick period in seconds
	TickTime int `json:"TickTime" yaml:"TickTime"`
	// Duration is the number of ticks to emit
	Duration int `json:"Duration" yaml:"Duration"`
	// TickInterval overrides TickTime with a Go duration, e.g. "10ms"
	TickInterval string `json:"TickInterval,omitempty" yaml:"TickInterval,omitempty"`
	// OutputFile is the output path. Defaults to DefaultOutputFile
	OutputFile string `json:"OutputFile,omitempty" yaml:"OutputFile,omitempty"`

	dir string
}

// Cameras groups the camera settings
type Cameras struct {
	Configurations []Camera `json:"CamerasConfigurations" yaml:"CamerasConfigurations"`
	DataPath       string   `json:"camera_datas_path" yaml:"camera_datas_path"`
}

// Camera is the setting of a single camera
type Camera struct {
	ID        int    `json:"id" yaml:"id"`
	Frequency int    `json:"frequency" yaml:"frequency"`
	Key       string `json:"camera_key" yaml:"camera_key"`
}

// Name returns the sensor name of the camera
func (c Camera) Name() string {
	if c.Key != "" {
		return c.Key
	}
	return fmt.Sprintf("camera%d", c.ID)
}

// LidarWorkers groups the LiDAR worker settings
type LidarWorkers struct {
	Configurations []LidarWorker `json:"LidarConfigurations" yaml:"LidarConfigurations"`
	DataPath       string        `json:"lidars_data_path" yaml:"lidars_data_path"`
}

// LidarWorker is the setting of a single LiDAR worker
type LidarWorker struct {
	ID        int `json:"id" yaml:"id"`
	Frequency int `json:"frequency" yaml:"frequency"`
}

// Name returns the sensor name of the LiDAR worker
func (l LidarWorker) Name() string {
	return fmt.Sprintf("LiDarWorkerTracker%d", l.ID)
}

// Load reads the configuration file at path. JSON and YAML files are supported
// and picked by extension. Relative data paths are resolved against the
// directory holding the configuration file.
func Load(path string) (*Config, error) {
	bytea, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewErrInvalidConfig(err)
	}

	config := new(Config)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytea, config)
	default:
		err = json.Unmarshal(bytea, config)
	}

	if err != nil {
		return nil, errors.NewErrInvalidConfig(fmt.Errorf("failed to parse %s: %w", path, err))
	}

	config.dir = filepath.Dir(path)
	config.resolve()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the whole configuration and reports every problem at once
func (c *Config) Validate() error {
	return c.validate(true)
}

// ValidateSettings checks the configuration without looking up the data
// files. It is used when the recorded data does not come from disk.
func (c *Config) ValidateSettings() error {
	return c.validate(false)
}

func (c *Config) validate(withFiles bool) error {
	chain := validation.New(validation.AllErrors()).
		AddAssertion(c.Duration > 0, "the [Duration] must be greater than zero").
		AddAssertion(len(c.Cameras.Configurations) > 0 || len(c.LidarWorkers.Configurations) == 0,
			"LiDAR workers require at least one camera")

	if c.TickInterval != "" {
		interval, err := time.ParseDuration(c.TickInterval)
		chain.AddAssertionf(err == nil && interval > 0, "the [TickInterval] (%s) is not a positive duration", c.TickInterval)
	} else {
		chain.AddAssertion(c.TickTime > 0, "the [TickTime] must be greater than zero")
	}

	if withFiles {
		if len(c.Cameras.Configurations) > 0 {
			chain.AddValidator(validation.NewFileValidator("camera_datas_path", c.Cameras.DataPath))
		}

		if len(c.LidarWorkers.Configurations) > 0 {
			chain.AddValidator(validation.NewFileValidator("lidars_data_path", c.LidarWorkers.DataPath))
		}

		chain.AddValidator(validation.NewFileValidator("poseJsonFile", c.PoseFile))
	}

	names := make(map[string]struct{})
	for _, camera := range c.Cameras.Configurations {
		chain.AddAssertionf(camera.Frequency >= 0, "camera (%s) frequency must not be negative", camera.Name())
		chain.AddAssertionf(!seen(names, camera.Name()), "camera (%s) is configured twice", camera.Name())
	}

	for _, lidar := range c.LidarWorkers.Configurations {
		chain.AddAssertionf(lidar.Frequency >= 0, "LiDAR worker (%s) frequency must not be negative", lidar.Name())
		chain.AddAssertionf(!seen(names, lidar.Name()), "LiDAR worker (%s) is configured twice", lidar.Name())
	}

	if err := chain.Validate(); err != nil {
		return errors.NewErrInvalidConfig(err)
	}
	return nil
}

// Interval returns the wall-clock period between two ticks
func (c *Config) Interval() time.Duration {
	if c.TickInterval != "" {
		if interval, err := time.ParseDuration(c.TickInterval); err == nil {
			return interval
		}
	}
	return time.Duration(c.TickTime) * time.Second
}

// OutputPath returns where the run output is written
func (c *Config) OutputPath() string {
	if c.OutputFile == "" {
		return filepath.Join(c.dir, DefaultOutputFile)
	}
	return c.OutputFile
}

// Dir returns the directory holding the configuration file
func (c *Config) Dir() string {
	return c.dir
}

func (c *Config) resolve() {
	c.Cameras.DataPath = c.abs(c.Cameras.DataPath)
	c.LidarWorkers.DataPath = c.abs(c.LidarWorkers.DataPath)
	c.PoseFile = c.abs(c.PoseFile)
	c.OutputFile = c.abs(c.OutputFile)
}

func (c *Config) abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

func seen(names map[string]struct{}, name string) bool {
	if _, ok := names[name]; ok {
		return true
	}
	names[name] = struct{}{}
	return false
}
