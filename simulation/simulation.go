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

// Package simulation assembles and runs the perception pipeline.
//
// A Simulation owns its message bus, its logger, its statistics actor and its
// output writer. Several simulations can run side by side in one process.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/gurionrock/bus"
	"github.com/tochemey/gurionrock/clock"
	"github.com/tochemey/gurionrock/config"
	"github.com/tochemey/gurionrock/coordinator"
	"github.com/tochemey/gurionrock/dataset"
	gerrors "github.com/tochemey/gurionrock/errors"
	"github.com/tochemey/gurionrock/eventstream"
	"github.com/tochemey/gurionrock/log"
	"github.com/tochemey/gurionrock/messages"
	"github.com/tochemey/gurionrock/output"
	"github.com/tochemey/gurionrock/sensors"
	"github.com/tochemey/gurionrock/service"
	"github.com/tochemey/gurionrock/slam"
	"github.com/tochemey/gurionrock/stats"
)

// Report is the result of a run. Exactly one of Output and Error is set.
type Report struct {
	// Outcome is one of OutcomeCompleted, OutcomeCrashed or OutcomeInterrupted
	Outcome string
	// Output is the result of a run that was not interrupted by a fault
	Output *slam.Output
	// Error is the result of a run a sensor crashed in
	Error *slam.ErrorOutput
	// DeadLetters is the number of undeliverable messages
	DeadLetters int
}

// Simulation is a configured run of the perception pipeline
type Simulation struct {
	config       *config.Config
	dataset      *dataset.Dataset
	logger       log.Logger
	writer       output.Writer
	meter        metric.Meter
	registerer   prometheus.Registerer
	statsTimeout time.Duration

	stream      eventstream.Stream
	bus         *bus.Bus
	stats       *service.MicroService
	statsClient *stats.Client
	coordinator *coordinator.Coordinator
	clock       *clock.TimeService
	fusion      *sensors.FusionSlam
	workers     []*service.MicroService
	metrics     *runMetrics

	started     *atomic.Bool
	deadLetters *atomic.Int64
}

// New builds a simulation from the configuration. The configuration is
// validated before any actor is created and the recorded data is loaded
// unless WithDataset is given. Every failure is a configuration error.
func New(cfg *config.Config, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		return nil, gerrors.NewErrInvalidConfig(errors.New("configuration is required"))
	}

	sim := &Simulation{
		config:       cfg,
		logger:       log.DefaultLogger,
		statsTimeout: 5 * time.Second,
		started:      atomic.NewBool(false),
		deadLetters:  atomic.NewInt64(0),
	}

	for _, opt := range opts {
		opt.Apply(sim)
	}

	validate := cfg.Validate
	if sim.dataset != nil {
		validate = cfg.ValidateSettings
	}
	if err := validate(); err != nil {
		return nil, err
	}

	if sim.dataset == nil {
		data, err := dataset.Load(cfg)
		if err != nil {
			return nil, err
		}
		sim.dataset = data
	}

	if sim.writer == nil {
		sim.writer = output.NewFileWriter(cfg.OutputPath(), output.WithLogger(sim.logger))
	}

	metrics, err := newRunMetrics(sim.registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to register the run metrics: %w", err)
	}
	sim.metrics = metrics

	if err := sim.build(); err != nil {
		return nil, err
	}
	return sim, nil
}

// build creates the bus and every actor of the pipeline
func (sim *Simulation) build() error {
	sim.stream = eventstream.New()
	busOpts := []bus.Option{
		bus.WithLogger(sim.logger),
		bus.WithEventStream(sim.stream),
	}
	if sim.meter != nil {
		busOpts = append(busOpts, bus.WithMeter(sim.meter))
	}
	sim.bus = bus.New(busOpts...)

	sim.stats = stats.New(sim.bus, sim.logger)
	sim.statsClient = stats.NewClient(sim.bus.SendEvent, sim.logger)

	withLogger := service.WithLogger(sim.logger)
	for _, camera := range sim.config.Cameras.Configurations {
		frames, ok := sim.dataset.Cameras[camera.Name()]
		if !ok {
			frames = slam.NewCameraFrames(nil)
		}
		worker := sensors.NewCamera(sim.bus, camera.Name(), camera.Frequency, frames, withLogger)
		sim.workers = append(sim.workers, worker.MicroService)
	}

	for _, lidar := range sim.config.LidarWorkers.Configurations {
		worker := sensors.NewLidarWorker(sim.bus, lidar.Name(), lidar.Frequency, sim.dataset.Lidar, withLogger)
		sim.workers = append(sim.workers, worker.MicroService)
	}

	poses := sim.dataset.Poses
	if poses == nil {
		poses = slam.NewPoseTrack(nil)
	}
	sim.workers = append(sim.workers, sensors.NewPoseService(sim.bus, poses, withLogger).MicroService)

	sim.fusion = sensors.NewFusionSlam(sim.bus, withLogger)
	sim.workers = append(sim.workers, sim.fusion.MicroService)

	total := sim.dataset.TotalFrames()
	stages := []coordinator.Stage{
		{Category: messages.CategoryDetect, Expected: total},
		{Category: messages.CategoryTrack, Expected: total},
		{Category: messages.CategoryFuse, Expected: total},
	}
	// fusion only completes once LiDAR workers track the frames
	live := len(sim.config.Cameras.Configurations) + len(sim.config.LidarWorkers.Configurations)
	if len(sim.config.LidarWorkers.Configurations) > 0 {
		live++
	}
	sim.coordinator = coordinator.New(sim.bus, stages, live, withLogger)

	ts, err := clock.NewTimeService(sim.bus, sim.config.Interval(), sim.config.Duration, withLogger)
	if err != nil {
		return err
	}
	sim.clock = ts
	return nil
}

// Bus returns the message bus of the simulation
func (sim *Simulation) Bus() *bus.Bus {
	return sim.bus
}

// Run starts every actor, lets the clock tick until the coordinator or the
// clock ends the run, then writes the output exactly once. It blocks until
// every actor stopped.
//
// An interrupted run still writes what was computed so far and returns the
// context error.
func (sim *Simulation) Run(ctx context.Context) (*Report, error) {
	if !sim.started.CompareAndSwap(false, true) {
		return nil, gerrors.ErrAlreadyStarted
	}

	startedAt := time.Now()
	stopDeadLetters := sim.watchDeadLetters()

	// the statistics outlive the fleet, they are stopped once queried
	var statsGroup errgroup.Group
	statsGroup.Go(func() error { return sim.stats.Run(context.WithoutCancel(ctx)) })
	<-sim.stats.Ready()

	group, groupCtx := errgroup.WithContext(ctx)
	fleet := make([]*service.MicroService, 0, len(sim.workers)+2)
	start := func(services ...*service.MicroService) bool {
		for _, ms := range services {
			fleet = append(fleet, ms)
			group.Go(func() error { return ms.Run(groupCtx) })
		}

		for _, ms := range services {
			select {
			case <-ms.Ready():
			case <-groupCtx.Done():
				return false
			}
		}
		return true
	}

	clockStarted := false
	if start(sim.workers...) && start(sim.coordinator.MicroService) {
		if sim.coordinator.ShutdownSent() {
			sim.logger.Info("nothing to simulate, the clock is not started")
		} else {
			sim.logger.Infof("all %d services initialized, starting the clock", len(fleet))
			clockStarted = true
			start(sim.clock.MicroService)
		}
	}

	for _, ms := range fleet {
		<-ms.Done()
	}
	runErr := group.Wait()

	// the timer goroutine may still be reporting its last tick
	if clockStarted {
		<-sim.clock.Stopped()
	}

	snapshot, err := sim.statsClient.Snapshot(sim.statsTimeout)
	if err != nil {
		sim.logger.Errorf("statistics lost: %v", err)
		snapshot = &stats.Snapshot{}
	}
	sim.stats.Terminate()
	if err := statsGroup.Wait(); err != nil {
		runErr = errors.Join(runErr, err)
	}
	stopDeadLetters()

	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}

	report := sim.report(snapshot, runErr, ctx.Err() != nil)
	sim.observe(report, snapshot, time.Since(startedAt))

	var payload any = report.Output
	if report.Error != nil {
		payload = report.Error
	}

	if err := sim.writer.Write(context.WithoutCancel(ctx), payload); err != nil {
		return report, errors.Join(runErr, err)
	}
	return report, runErr
}

// report builds the run result. A crash recorded by the coordinator wins
// over a failing actor.
func (sim *Simulation) report(snapshot *stats.Snapshot, runErr error, interrupted bool) *Report {
	report := &Report{DeadLetters: int(sim.deadLetters.Load())}
	landmarks := slam.LandmarksByID(sim.fusion.Landmarks())

	crash, crashed := sim.coordinator.Crash()
	if !crashed && runErr != nil && !interrupted {
		crash, crashed = messages.Crashed{Description: runErr.Error()}, true
	}

	if crashed {
		report.Outcome = OutcomeCrashed
		report.Error = &slam.ErrorOutput{
			Error:        crash.Description,
			FaultySensor: crash.Sensor,
			LastCameras:  snapshot.LastCameras,
			LastLidars:   snapshot.LastLidars,
			Poses:        sim.fusion.Poses(),
			Statistics:   snapshot.Statistics,
			Landmarks:    landmarks,
		}
		return report
	}

	report.Outcome = OutcomeCompleted
	if interrupted {
		report.Outcome = OutcomeInterrupted
	}
	report.Output = &slam.Output{
		Statistics: snapshot.Statistics,
		Landmarks:  landmarks,
	}
	return report
}

func (sim *Simulation) observe(report *Report, snapshot *stats.Snapshot, elapsed time.Duration) {
	sim.metrics.runsTotal.WithLabelValues(report.Outcome).Inc()
	sim.metrics.runDuration.Observe(elapsed.Seconds())
	sim.metrics.ticks.Set(float64(snapshot.Statistics.SystemRuntime))
	sim.metrics.landmarks.Set(float64(snapshot.Statistics.NumLandmarks))
	sim.metrics.detectedObjects.Set(float64(snapshot.Statistics.NumDetectedObjects))
	sim.metrics.trackedObjects.Set(float64(snapshot.Statistics.NumTrackedObjects))

	sim.logger.Infof("run %s after %s: %d ticks, %d landmarks, %d dead letters",
		report.Outcome, elapsed, snapshot.Statistics.SystemRuntime, snapshot.Statistics.NumLandmarks, report.DeadLetters)
}

// watchDeadLetters counts the undeliverable messages until the returned
// function is called. Letters still queued when it is called are counted too.
func (sim *Simulation) watchDeadLetters() (stop func()) {
	subscriber := sim.stream.AddSubscriber()
	sim.stream.Subscribe(subscriber, bus.DeadLettersTopic)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			message, err := subscriber.Next(ctx)
			if err != nil {
				return
			}
			sim.countDeadLetter(message)
		}
	}()

	return func() {
		cancel()
		<-done
		for message := range subscriber.Iterator() {
			sim.countDeadLetter(message)
		}
		sim.stream.RemoveSubscriber(subscriber)
		sim.stream.Close()
	}
}

func (sim *Simulation) countDeadLetter(message *eventstream.Message) {
	if letter, ok := message.Payload().(*bus.DeadLetter); ok {
		sim.deadLetters.Inc()
		sim.metrics.deadLetters.Inc()
		sim.logger.Debugf("dead letter for %s: %s", letter.Receiver, letter.Reason)
	}
}
