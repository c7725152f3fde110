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

package bus

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/gurionrock/eventstream"
	"github.com/tochemey/gurionrock/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(bus *Bus)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Bus)

func (f OptionFunc) Apply(b *Bus) {
	f(b)
}

// WithLogger sets the bus logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(b *Bus) {
		b.logger = logger
	})
}

// WithEventStream sets the stream dead letters are published to
func WithEventStream(stream eventstream.Stream) Option {
	return OptionFunc(func(b *Bus) {
		b.eventStream = stream
	})
}

// WithMeter sets the meter used to create the bus instruments
func WithMeter(meter metric.Meter) Option {
	return OptionFunc(func(b *Bus) {
		b.meter = meter
	})
}
