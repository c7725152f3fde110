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
	"time"

	"github.com/tochemey/gurionrock/internal/types"
)

// Kind distinguishes point-to-point events from broadcasts
type Kind int

const (
	// KindEvent is delivered to exactly one subscriber and carries a result
	KindEvent Kind = iota
	// KindBroadcast is delivered to every subscriber and carries no result
	KindBroadcast
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "event"
	case KindBroadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// Envelope wraps a message travelling through the bus.
// It is immutable once created.
type Envelope struct {
	id      uint64
	kind    Kind
	topic   string
	payload any
	sentAt  time.Time
}

// ID returns the bus-unique envelope sequence number
func (e *Envelope) ID() uint64 {
	return e.id
}

// Kind returns the envelope kind
func (e *Envelope) Kind() Kind {
	return e.kind
}

// Topic returns the type tag of the payload
func (e *Envelope) Topic() string {
	return e.topic
}

// Payload returns the message
func (e *Envelope) Payload() any {
	return e.payload
}

// SentAt returns the time the message entered the bus
func (e *Envelope) SentAt() time.Time {
	return e.sentAt
}

// TopicOf returns the type tag of the given message
func TopicOf(message any) string {
	return types.Name(message)
}

// TopicFor returns the type tag of messages of type T
func TopicFor[T any]() string {
	return types.NameFor[T]()
}
