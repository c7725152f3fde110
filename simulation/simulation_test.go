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

package simulation

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/goleak"

	"github.com/tochemey/gurionrock/bus"
	"github.com/tochemey/gurionrock/config"
	"github.com/tochemey/gurionrock/dataset"
	gerrors "github.com/tochemey/gurionrock/errors"
	"github.com/tochemey/gurionrock/log"
	"github.com/tochemey/gurionrock/sensors"
	"github.com/tochemey/gurionrock/slam"
)

// memoryWriter keeps what the simulation writes
type memoryWriter struct {
	mu       sync.Mutex
	calls    int
	payloads []any
}

func (w *memoryWriter) Write(_ context.Context, v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	w.payloads = append(w.payloads, v)
	return nil
}

func (w *memoryWriter) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

func testConfig(duration int, cameras, lidars int) *config.Config {
	cfg := &config.Config{
		TickInterval: "5ms",
		Duration:     duration,
	}
	for id := 1; id <= cameras; id++ {
		cfg.Cameras.Configurations = append(cfg.Cameras.Configurations, config.Camera{ID: id})
	}
	for id := 1; id <= lidars; id++ {
		cfg.LidarWorkers.Configurations = append(cfg.LidarWorkers.Configurations, config.LidarWorker{ID: id})
	}
	return cfg
}

func poses(upTo int) *slam.PoseTrack {
	track := make([]slam.Pose, 0, upTo)
	for tick := 1; tick <= upTo; tick++ {
		track = append(track, slam.Pose{Time: tick, X: float64(tick), Y: 0, Yaw: 0})
	}
	return slam.NewPoseTrack(track)
}

func frame(tick int, objects ...slam.DetectedObject) slam.StampedDetectedObjects {
	return slam.StampedDetectedObjects{Time: tick, DetectedObjects: objects}
}

func cloud(id string, tick int, points ...[]float64) slam.StampedCloudPoints {
	return slam.StampedCloudPoints{ID: id, Time: tick, CloudPoints: points}
}

func newSimulation(t *testing.T, cfg *config.Config, data *dataset.Dataset, opts ...Option) (*Simulation, *memoryWriter) {
	t.Helper()
	writer := new(memoryWriter)
	opts = append([]Option{
		WithLogger(log.DiscardLogger),
		WithWriter(writer),
		WithDataset(data),
		WithMeter(noop.NewMeterProvider().Meter("test")),
		WithStatsTimeout(time.Second),
	}, opts...)

	sim, err := New(cfg, opts...)
	require.NoError(t, err)
	require.NotNil(t, sim.Bus())
	return sim, writer
}

func run(ctx context.Context, t *testing.T, sim *Simulation) (*Report, error) {
	t.Helper()
	type result struct {
		report *Report
		err    error
	}

	resultc := make(chan result, 1)
	go func() {
		report, err := sim.Run(ctx)
		resultc <- result{report, err}
	}()

	select {
	case res := <-resultc:
		return res.report, res.err
	case <-time.After(10 * time.Second):
		t.Fatal("simulation did not stop")
		return nil, nil
	}
}

func assertClockStopped(t *testing.T, sim *Simulation) {
	t.Helper()
	select {
	case <-sim.clock.Stopped():
	default:
		t.Fatal("timer goroutine still running after the run")
	}
}

func TestCompletedRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	data := &dataset.Dataset{
		Cameras: map[string]*slam.CameraFrames{
			"camera1": slam.NewCameraFrames([]slam.StampedDetectedObjects{
				frame(2, slam.DetectedObject{ID: "Wall_1", Description: "Wall"}),
				frame(4,
					slam.DetectedObject{ID: "Wall_3", Description: "Wall"},
					slam.DetectedObject{ID: "Chair_Base_1", Description: "Chair Base"}),
			}),
		},
		Lidar: slam.NewLidarDatabase([]slam.StampedCloudPoints{
			cloud("Wall_1", 2, []float64{1, 1, 0.1}),
			cloud("Wall_3", 4, []float64{2, 2, 0.1}, []float64{3, 3, 0.1}),
			cloud("Chair_Base_1", 4, []float64{0, 1, 0.1}),
		}),
		Poses: poses(200),
	}

	registry := prometheus.NewRegistry()
	sim, writer := newSimulation(t, testConfig(200, 1, 1), data, WithRegisterer(registry))

	report, err := run(context.Background(), t, sim)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, OutcomeCompleted, report.Outcome)
	require.NotNil(t, report.Output)
	assert.Nil(t, report.Error)

	statistics := report.Output.Statistics
	assert.Equal(t, 3, statistics.NumDetectedObjects)
	assert.Equal(t, 3, statistics.NumTrackedObjects)
	assert.Equal(t, 3, statistics.NumLandmarks)
	assert.GreaterOrEqual(t, statistics.SystemRuntime, 4)
	assert.Less(t, statistics.SystemRuntime, 200)

	require.Len(t, report.Output.Landmarks, 3)
	wall := report.Output.Landmarks["Wall_1"]
	assert.Equal(t, "Wall", wall.Description)
	require.Len(t, wall.Coordinates, 1)
	// the robot stands at (2, 0) at tick 2
	assert.InDelta(t, 3.0, wall.Coordinates[0].X, 1e-9)
	assert.InDelta(t, 1.0, wall.Coordinates[0].Y, 1e-9)

	assert.Equal(t, 1, writer.Calls())
	assert.Equal(t, report.Output, writer.payloads[0])

	assert.InDelta(t, 1, testutil.ToFloat64(sim.metrics.runsTotal.WithLabelValues(OutcomeCompleted)), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(sim.metrics.landmarks), 0)

	_, err = sim.Run(context.Background())
	assert.ErrorIs(t, err, gerrors.ErrAlreadyStarted)
	assert.Equal(t, 1, writer.Calls())
}

func TestCameraCrash(t *testing.T) {
	defer goleak.VerifyNone(t)

	data := &dataset.Dataset{
		Cameras: map[string]*slam.CameraFrames{
			"camera1": slam.NewCameraFrames([]slam.StampedDetectedObjects{
				frame(2, slam.DetectedObject{ID: "Wall_1", Description: "Wall"}),
				frame(3, slam.DetectedObject{ID: slam.ErrorObjectID, Description: "Camera Disconnected"}),
			}),
		},
		Lidar: slam.NewLidarDatabase([]slam.StampedCloudPoints{
			cloud("Wall_1", 2, []float64{1, 1, 0.1}),
		}),
		Poses: poses(200),
	}

	sim, writer := newSimulation(t, testConfig(200, 1, 1), data)
	report, err := run(context.Background(), t, sim)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCrashed, report.Outcome)
	assert.Nil(t, report.Output)
	require.NotNil(t, report.Error)

	assert.Equal(t, "Camera Disconnected", report.Error.Error)
	assert.Equal(t, "camera1", report.Error.FaultySensor)
	require.Contains(t, report.Error.LastCameras, "camera1")
	assert.Equal(t, 3, report.Error.LastCameras["camera1"].Time)
	assert.Equal(t, 1, report.Error.Statistics.NumDetectedObjects)
	assert.NotEmpty(t, report.Error.Poses)
	assert.Less(t, report.Error.Statistics.SystemRuntime, 200)

	assert.Equal(t, 1, writer.Calls())
	assert.Equal(t, report.Error, writer.payloads[0])
}

func TestLidarCrash(t *testing.T) {
	defer goleak.VerifyNone(t)

	data := &dataset.Dataset{
		Cameras: map[string]*slam.CameraFrames{
			"camera1": slam.NewCameraFrames([]slam.StampedDetectedObjects{
				frame(2, slam.DetectedObject{ID: "Wall_1", Description: "Wall"}),
				frame(9, slam.DetectedObject{ID: "Wall_2", Description: "Wall"}),
			}),
		},
		Lidar: slam.NewLidarDatabase([]slam.StampedCloudPoints{
			cloud("Wall_1", 2, []float64{1, 1, 0.1}),
			cloud(slam.ErrorObjectID, 5),
		}),
		Poses: poses(200),
	}

	sim, _ := newSimulation(t, testConfig(200, 1, 1), data)
	report, err := run(context.Background(), t, sim)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCrashed, report.Outcome)
	require.NotNil(t, report.Error)
	assert.Equal(t, sensors.LidarLost, report.Error.Error)
	assert.Equal(t, "LiDarWorkerTracker1", report.Error.FaultySensor)
	assert.GreaterOrEqual(t, report.Error.Statistics.SystemRuntime, 5)
	assert.Less(t, report.Error.Statistics.SystemRuntime, 200)
}

func TestRunEndsWithTheClock(t *testing.T) {
	defer goleak.VerifyNone(t)

	data := &dataset.Dataset{
		Cameras: map[string]*slam.CameraFrames{
			"camera1": slam.NewCameraFrames([]slam.StampedDetectedObjects{
				frame(10, slam.DetectedObject{ID: "Wall_1", Description: "Wall"}),
			}),
		},
		Lidar: slam.NewLidarDatabase(nil),
		Poses: poses(3),
	}

	sim, writer := newSimulation(t, testConfig(3, 1, 1), data)
	report, err := run(context.Background(), t, sim)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, report.Outcome)
	require.NotNil(t, report.Output)
	assert.Equal(t, 3, report.Output.Statistics.SystemRuntime)
	assert.Zero(t, report.Output.Statistics.NumDetectedObjects)
	assert.Empty(t, report.Output.Landmarks)
	assertClockStopped(t, sim)
	assert.Equal(t, 1, writer.Calls())
}

func TestNothingToSimulate(t *testing.T) {
	defer goleak.VerifyNone(t)

	data := &dataset.Dataset{Poses: poses(1), Lidar: slam.NewLidarDatabase(nil)}
	sim, writer := newSimulation(t, testConfig(100, 0, 0), data)

	report, err := run(context.Background(), t, sim)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, report.Outcome)
	assert.Zero(t, report.Output.Statistics.SystemRuntime)
	assert.Equal(t, 1, writer.Calls())
}

func TestInterruptedRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	data := &dataset.Dataset{
		Cameras: map[string]*slam.CameraFrames{
			"camera1": slam.NewCameraFrames([]slam.StampedDetectedObjects{
				frame(10_000, slam.DetectedObject{ID: "Wall_1", Description: "Wall"}),
			}),
		},
		Lidar: slam.NewLidarDatabase(nil),
		Poses: poses(10),
	}

	sim, writer := newSimulation(t, testConfig(100_000, 1, 1), data)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	report, err := run(ctx, t, sim)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, report)
	assert.Equal(t, OutcomeInterrupted, report.Outcome)
	require.NotNil(t, report.Output)
	assert.Positive(t, report.Output.Statistics.SystemRuntime)
	assertClockStopped(t, sim)
	// every tick broadcast is counted before the statistics are queried
	assert.Equal(t, sim.clock.CurrentTick(), report.Output.Statistics.SystemRuntime)
	assert.Equal(t, 1, writer.Calls())
}

func TestDeadLettersQueuedAtStopAreCounted(t *testing.T) {
	defer goleak.VerifyNone(t)

	data := &dataset.Dataset{Poses: poses(1), Lidar: slam.NewLidarDatabase(nil)}
	sim, _ := newSimulation(t, testConfig(1, 0, 0), data, WithRegisterer(prometheus.NewRegistry()))

	stop := sim.watchDeadLetters()
	const published = 1000
	for range published {
		sim.stream.Publish(bus.DeadLettersTopic, &bus.DeadLetter{Receiver: bus.NewActorID("camera1"), Reason: "actor is not registered"})
	}
	stop()

	assert.EqualValues(t, published, sim.deadLetters.Load())
	assert.InDelta(t, published, testutil.ToFloat64(sim.metrics.deadLetters), 0)
}

func TestNew(t *testing.T) {
	t.Run("With nil configuration", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrInvalidConfig)
	})
	t.Run("With missing data files", func(t *testing.T) {
		cfg := testConfig(10, 1, 0)
		cfg.Cameras.DataPath = filepath.Join(t.TempDir(), "missing.json")
		_, err := New(cfg, WithLogger(log.DiscardLogger))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrInvalidConfig)
	})
	t.Run("With no tick interval", func(t *testing.T) {
		cfg := testConfig(3, 1, 0)
		cfg.TickInterval = ""
		data := &dataset.Dataset{Poses: poses(3), Lidar: slam.NewLidarDatabase(nil)}
		sim, err := New(cfg, WithDataset(data), WithLogger(log.DiscardLogger))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrInvalidConfig)
		assert.ErrorContains(t, err, "TickTime")
		assert.Nil(t, sim)
	})
	t.Run("With zero duration", func(t *testing.T) {
		data := &dataset.Dataset{Poses: poses(3), Lidar: slam.NewLidarDatabase(nil)}
		_, err := New(testConfig(0, 1, 0), WithDataset(data), WithLogger(log.DiscardLogger))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrInvalidConfig)
	})
	t.Run("With registerer used twice", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		data := &dataset.Dataset{Poses: poses(1), Lidar: slam.NewLidarDatabase(nil)}
		_, err := New(testConfig(1, 0, 0), WithDataset(data), WithRegisterer(registry), WithLogger(log.DiscardLogger))
		require.NoError(t, err)
		_, err = New(testConfig(1, 0, 0), WithDataset(data), WithRegisterer(registry), WithLogger(log.DiscardLogger))
		require.Error(t, err)
	})
}

func TestRunFromFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	files := map[string]string{
		"camera_data.json": `{"camera1": [{"time": 2, "detectedObjects": [{"id": "Wall_1", "description": "Wall"}]}]}`,
		"lidar_data.json":  `[{"id": "Wall_1", "time": 2, "cloudPoints": [[1.0, 2.0, 0.1]]}]`,
		"pose_data.json":   `[{"time": 1, "x": 0, "y": 0, "yaw": 0}, {"time": 2, "x": 0, "y": 0, "yaw": 90}, {"time": 3, "x": 0, "y": 0, "yaw": 90}]`,
		"configuration_file.json": `{
  "Cameras": {"CamerasConfigurations": [{"id": 1, "frequency": 0, "camera_key": "camera1"}], "camera_datas_path": "./camera_data.json"},
  "LiDarWorkers": {"LidarConfigurations": [{"id": 1, "frequency": 0}], "lidars_data_path": "./lidar_data.json"},
  "poseJsonFile": "./pose_data.json",
  "TickTime": 1,
  "TickInterval": "5ms",
  "Duration": 100
}`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	cfg, err := config.Load(filepath.Join(dir, "configuration_file.json"))
	require.NoError(t, err)

	sim, err := New(cfg, WithLogger(log.DiscardLogger))
	require.NoError(t, err)

	report, err := run(context.Background(), t, sim)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, report.Outcome)
	require.Contains(t, report.Output.Landmarks, "Wall_1")
	// rotated by 90 degrees: (1, 2) becomes (-2, 1)
	point := report.Output.Landmarks["Wall_1"].Coordinates[0]
	assert.InDelta(t, -2.0, point.X, 1e-9)
	assert.InDelta(t, 1.0, point.Y, 1e-9)

	assert.FileExists(t, filepath.Join(dir, config.DefaultOutputFile))
}
