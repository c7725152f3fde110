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

package service

import (
	"fmt"

	"github.com/tochemey/gurionrock/bus"
)

// handlerFunc processes one message of a given type
type handlerFunc func(*Context)

// OnEvent subscribes the service to events of type E and registers the
// handler dispatched for them. It is meant to be called by the initializer.
func OnEvent[E any](ms *MicroService, handler func(*Context, E)) error {
	return subscribe[E](ms, bus.KindEvent, handler)
}

// OnBroadcast subscribes the service to broadcasts of type B and registers
// the handler dispatched for them. It is meant to be called by the initializer.
func OnBroadcast[B any](ms *MicroService, handler func(*Context, B)) error {
	return subscribe[B](ms, bus.KindBroadcast, handler)
}

func subscribe[T any](ms *MicroService, kind bus.Kind, handler func(*Context, T)) error {
	if handler == nil {
		return fmt.Errorf("nil %s handler for %s", kind, bus.TopicFor[T]())
	}

	topic := bus.TopicFor[T]()
	wrapped := func(ctx *Context) {
		handler(ctx, ctx.envelope.Payload().(T))
	}

	var err error
	switch kind {
	case bus.KindEvent:
		ms.eventHandlers[topic] = wrapped
		err = ms.bus.SubscribeEvent(topic, ms.id)
	default:
		ms.broadcastHandlers[topic] = wrapped
		err = ms.bus.SubscribeBroadcast(topic, ms.id)
	}

	if err != nil {
		return fmt.Errorf("failed to subscribe to %s %s: %w", kind, topic, err)
	}
	return nil
}
