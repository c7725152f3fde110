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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/gurionrock/dataset"
	"github.com/tochemey/gurionrock/log"
	"github.com/tochemey/gurionrock/output"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(sim *Simulation)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(sim *Simulation)

// Apply applies the option
func (f OptionFunc) Apply(sim *Simulation) {
	f(sim)
}

// WithLogger sets the logger shared by the bus and every actor
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(sim *Simulation) {
		sim.logger = logger
	})
}

// WithWriter overrides the output writer. By default the output is written
// to the file named by the configuration.
func WithWriter(writer output.Writer) Option {
	return OptionFunc(func(sim *Simulation) {
		sim.writer = writer
	})
}

// WithDataset replays the given recording instead of loading the files named
// by the configuration
func WithDataset(data *dataset.Dataset) Option {
	return OptionFunc(func(sim *Simulation) {
		sim.dataset = data
	})
}

// WithMeter sets the OpenTelemetry meter of the message bus instruments
func WithMeter(meter metric.Meter) Option {
	return OptionFunc(func(sim *Simulation) {
		sim.meter = meter
	})
}

// WithRegisterer registers the run metrics with the given Prometheus registerer
func WithRegisterer(registerer prometheus.Registerer) Option {
	return OptionFunc(func(sim *Simulation) {
		sim.registerer = registerer
	})
}

// WithStatsTimeout sets how long the statistics query may take at shutdown
func WithStatsTimeout(timeout time.Duration) Option {
	return OptionFunc(func(sim *Simulation) {
		sim.statsTimeout = timeout
	})
}
