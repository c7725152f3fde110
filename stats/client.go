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

package stats

import (
	"fmt"
	"time"

	"github.com/tochemey/gurionrock/errors"
	"github.com/tochemey/gurionrock/future"
	"github.com/tochemey/gurionrock/log"
	"github.com/tochemey/gurionrock/slam"
)

// SendFunc sends an event and returns its pending result, usually the
// SendEvent method of a service or of the bus
type SendFunc func(message any) (*future.Future[any], error)

// Client sends statistics events on behalf of an actor
type Client struct {
	send   SendFunc
	logger log.Logger
}

// NewClient creates a Client sending through the given function
func NewClient(send SendFunc, logger log.Logger) *Client {
	return &Client{
		send:   send,
		logger: logger,
	}
}

// Increment adds delta to a counter. It does not wait for the aggregator.
func (c *Client) Increment(counter Counter, delta int) {
	if delta == 0 {
		return
	}
	c.fire(Increment{Counter: counter, Delta: delta})
}

// RecordCameraFrame stores the last frame of a camera
func (c *Client) RecordCameraFrame(camera string, frame slam.StampedDetectedObjects) {
	c.fire(RecordCameraFrame{Camera: camera, Frame: frame})
}

// RecordLidarFrame stores the last batch of a LiDAR worker
func (c *Client) RecordLidarFrame(lidar string, objects []slam.TrackedObject) {
	c.fire(RecordLidarFrame{Lidar: lidar, Objects: objects})
}

// Snapshot queries the aggregator and waits at most timeout for its answer
func (c *Client) Snapshot(timeout time.Duration) (*Snapshot, error) {
	result, err := c.send(Query{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStatsUnavailable, err)
	}

	value, err := result.GetWithin(timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStatsUnavailable, err)
	}

	snapshot, ok := value.(*Snapshot)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected answer %T", errors.ErrStatsUnavailable, value)
	}
	return snapshot, nil
}

func (c *Client) fire(message any) {
	if _, err := c.send(message); err != nil {
		c.logger.Warnf("statistics update %T dropped: %v", message, err)
	}
}
