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

package eventstream

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/tochemey/gurionrock/internal/queue"
)

// Subscriber defines the Subscriber Interface
type Subscriber interface {
	ID() string
	Active() bool
	Topics() []string
	// Iterator drains the messages received so far
	Iterator() chan *Message
	// Next blocks until a message is received, the subscriber is shut down
	// or the context is done
	Next(ctx context.Context) (*Message, error)
	Shutdown()
	signal(message *Message)
	subscribe(topic string)
	unsubscribe(topic string)
}

type subscriber struct {
	id       string
	messages *queue.Queue[*Message]
	topics   mapset.Set[string]
	active   *atomic.Bool
}

var _ Subscriber = &subscriber{}

func newSubscriber() *subscriber {
	return &subscriber{
		id:       uuid.NewString(),
		messages: queue.New[*Message](),
		topics:   mapset.NewSet[string](),
		active:   atomic.NewBool(true),
	}
}

// ID return consumer id
func (x *subscriber) ID() string {
	return x.id
}

// Active checks whether the consumer is active
func (x *subscriber) Active() bool {
	return x.active.Load()
}

// Topics returns the list of topics the consumer has subscribed to
func (x *subscriber) Topics() []string {
	return x.topics.ToSlice()
}

// Shutdown shutdowns the consumer and releases any pending Next call
func (x *subscriber) Shutdown() {
	if x.active.CompareAndSwap(true, false) {
		x.messages.Close()
	}
}

// Iterator returns the messages queued at the time of the call
func (x *subscriber) Iterator() chan *Message {
	size := x.messages.Len()
	out := make(chan *Message, size)
	for range size {
		if !x.active.Load() {
			break
		}
		msg, ok := x.messages.Pop()
		if !ok {
			break
		}
		out <- msg
	}
	close(out)
	return out
}

func (x *subscriber) Next(ctx context.Context) (*Message, error) {
	return x.messages.Wait(ctx)
}

func (x *subscriber) signal(message *Message) {
	if x.active.Load() {
		x.messages.Push(message)
	}
}

func (x *subscriber) subscribe(topic string) {
	x.topics.Add(topic)
}

func (x *subscriber) unsubscribe(topic string) {
	x.topics.Remove(topic)
}
