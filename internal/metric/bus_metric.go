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

package metric

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// BusMetric defines the message bus instrumentation
type BusMetric struct {
	// Specifies the total number of events routed to a subscriber
	eventsSent metric.Int64Counter
	// Specifies the total number of broadcast deliveries
	broadcastsSent metric.Int64Counter
	// Specifies the total number of dropped deliveries
	deadLetters metric.Int64Counter
	// Specifies the total number of resolved futures
	futuresCompleted metric.Int64Counter
}

// NewBusMetric creates an instance of BusMetric
func NewBusMetric(meter metric.Meter) (*BusMetric, error) {
	busMetric := new(BusMetric)
	var err error

	if busMetric.eventsSent, err = meter.Int64Counter(
		"bus.events.sent",
		metric.WithDescription("Total number of events delivered to a subscriber"),
	); err != nil {
		return nil, fmt.Errorf("failed to create eventsSent instrument, %w", err)
	}

	if busMetric.broadcastsSent, err = meter.Int64Counter(
		"bus.broadcasts.sent",
		metric.WithDescription("Total number of broadcast deliveries"),
	); err != nil {
		return nil, fmt.Errorf("failed to create broadcastsSent instrument, %w", err)
	}

	if busMetric.deadLetters, err = meter.Int64Counter(
		"bus.deadletters",
		metric.WithDescription("Total number of messages that could not be delivered"),
	); err != nil {
		return nil, fmt.Errorf("failed to create deadLetters instrument, %w", err)
	}

	if busMetric.futuresCompleted, err = meter.Int64Counter(
		"bus.futures.completed",
		metric.WithDescription("Total number of event results resolved"),
	); err != nil {
		return nil, fmt.Errorf("failed to create futuresCompleted instrument, %w", err)
	}

	return busMetric, nil
}

// EventsSent returns the events counter
func (x *BusMetric) EventsSent() metric.Int64Counter {
	return x.eventsSent
}

// BroadcastsSent returns the broadcast deliveries counter
func (x *BusMetric) BroadcastsSent() metric.Int64Counter {
	return x.broadcastsSent
}

// DeadLetters returns the dropped deliveries counter
func (x *BusMetric) DeadLetters() metric.Int64Counter {
	return x.deadLetters
}

// FuturesCompleted returns the resolved futures counter
func (x *BusMetric) FuturesCompleted() metric.Int64Counter {
	return x.futuresCompleted
}
