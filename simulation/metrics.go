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
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of a run
const (
	OutcomeCompleted   = "completed"
	OutcomeCrashed     = "crashed"
	OutcomeInterrupted = "interrupted"
)

// runMetrics exposes the run results to Prometheus
type runMetrics struct {
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	ticks           prometheus.Gauge
	landmarks       prometheus.Gauge
	deadLetters     prometheus.Counter
	detectedObjects prometheus.Gauge
	trackedObjects  prometheus.Gauge
}

func newRunMetrics(reg prometheus.Registerer) (*runMetrics, error) {
	m := &runMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gurionrock_runs_total",
			Help: "Total number of simulation runs by outcome",
		}, []string{"outcome"}),

		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gurionrock_run_duration_seconds",
			Help:    "Wall-clock duration of a simulation run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),

		ticks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gurionrock_system_runtime_ticks",
			Help: "Number of ticks of the last run",
		}),

		landmarks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gurionrock_landmarks",
			Help: "Number of landmarks mapped by the last run",
		}),

		deadLetters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gurionrock_dead_letters_total",
			Help: "Total number of undeliverable messages",
		}),

		detectedObjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gurionrock_detected_objects",
			Help: "Number of objects detected by the cameras during the last run",
		}),

		trackedObjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gurionrock_tracked_objects",
			Help: "Number of objects tracked by the LiDAR workers during the last run",
		}),
	}

	if reg == nil {
		return m, nil
	}

	for _, collector := range []prometheus.Collector{
		m.runsTotal,
		m.runDuration,
		m.ticks,
		m.landmarks,
		m.deadLetters,
		m.detectedObjects,
		m.trackedObjects,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}
