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
	"context"

	"github.com/tochemey/gurionrock/bus"
	"github.com/tochemey/gurionrock/log"
)

// Context is handed to a handler together with the message it processes
type Context struct {
	ctx      context.Context
	self     *MicroService
	envelope *bus.Envelope
}

// Self returns the service processing the message
func (c *Context) Self() *MicroService {
	return c.self
}

// Envelope returns the envelope of the message being processed
func (c *Context) Envelope() *bus.Envelope {
	return c.envelope
}

// Context returns the service loop context. It is done once the service
// is asked to terminate.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Logger returns the service logger
func (c *Context) Logger() log.Logger {
	return c.self.logger
}

// Complete resolves the result of the event being processed.
// It returns false for broadcasts and for events already completed.
func (c *Context) Complete(result any) bool {
	return c.self.bus.Complete(c.envelope, result)
}
