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
	"context"
	"errors"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/gurionrock/errors"
	"github.com/tochemey/gurionrock/eventstream"
	"github.com/tochemey/gurionrock/future"
	imetric "github.com/tochemey/gurionrock/internal/metric"
	"github.com/tochemey/gurionrock/internal/queue"
	"github.com/tochemey/gurionrock/internal/xsync"
	"github.com/tochemey/gurionrock/log"
)

// subscription records one registry entry an actor belongs to
type subscription struct {
	kind  Kind
	topic string
}

// Bus routes events and broadcasts between registered actors.
//
// Every registered actor owns an unbounded FIFO mailbox. Events are delivered
// to a single subscriber picked round-robin and answered through a future,
// broadcasts are delivered to every subscriber of their type.
type Bus struct {
	logger      log.Logger
	eventStream eventstream.Stream
	meter       metric.Meter
	metrics     *imetric.BusMetric

	sequence *atomic.Uint64

	// lifecycleMu serializes unregistration against subscription so an
	// unregistered actor never lingers in a subscriber sequence
	lifecycleMu sync.RWMutex
	mailboxes   *xsync.Map[ActorID, *queue.Queue[*Envelope]]
	memberships *xsync.Map[ActorID, mapset.Set[subscription]]

	events     *registry
	broadcasts *registry

	futures *xsync.Map[uint64, *future.Future[any]]
}

// New creates an instance of Bus
func New(opts ...Option) *Bus {
	bus := &Bus{
		logger:      log.DefaultLogger,
		sequence:    atomic.NewUint64(0),
		mailboxes:   xsync.NewMap[ActorID, *queue.Queue[*Envelope]](),
		memberships: xsync.NewMap[ActorID, mapset.Set[subscription]](),
		events:      newRegistry(),
		broadcasts:  newRegistry(),
		futures:     xsync.NewMap[uint64, *future.Future[any]](),
	}

	for _, opt := range opts {
		opt.Apply(bus)
	}

	if bus.meter == nil {
		bus.meter = imetric.NewProvider().Meter()
	}

	metrics, err := imetric.NewBusMetric(bus.meter)
	if err != nil {
		bus.logger.Warnf("bus instrumentation disabled: %v", err)
	}
	bus.metrics = metrics
	return bus
}

// Register creates the actor's mailbox if absent. It is idempotent.
func (b *Bus) Register(id ActorID) {
	b.lifecycleMu.RLock()
	defer b.lifecycleMu.RUnlock()
	if _, inserted := b.mailboxes.SetIfAbsent(id, queue.New[*Envelope]()); inserted {
		b.memberships.SetIfAbsent(id, mapset.NewSet[subscription]())
		b.logger.Debugf("actor=(%s) registered", id)
	}
}

// Unregister removes the actor's mailbox, discarding any pending message, and
// removes the actor from every subscriber sequence it belongs to.
// Unregistering an unknown actor is a no-op.
func (b *Bus) Unregister(id ActorID) {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()

	mailbox, ok := b.mailboxes.LoadAndDelete(id)
	if !ok {
		return
	}

	if pending := mailbox.CloseRemaining(); len(pending) > 0 {
		b.logger.Debugf("actor=(%s) unregistered with %d pending message(s)", id, len(pending))
	}

	if memberships, ok := b.memberships.LoadAndDelete(id); ok {
		for _, sub := range memberships.ToSlice() {
			if entry := b.registryOf(sub.kind).get(sub.topic); entry != nil {
				entry.Remove(id)
			}
		}
	}

	b.logger.Debugf("actor=(%s) unregistered", id)
}

// IsRegistered reports whether the actor currently owns a mailbox
func (b *Bus) IsRegistered(id ActorID) bool {
	_, ok := b.mailboxes.Get(id)
	return ok
}

// SubscribeEvent adds the actor to the subscribers of events of the given type.
// Subscribing twice is a no-op.
func (b *Bus) SubscribeEvent(topic string, id ActorID) error {
	return b.subscribe(KindEvent, topic, id)
}

// SubscribeBroadcast adds the actor to the subscribers of broadcasts of the given type.
// Subscribing twice is a no-op.
func (b *Bus) SubscribeBroadcast(topic string, id ActorID) error {
	return b.subscribe(KindBroadcast, topic, id)
}

// SubscribersCount returns the number of subscribers of the given kind and type
func (b *Bus) SubscribersCount(kind Kind, topic string) int {
	return b.registryOf(kind).count(topic)
}

// SendEvent delivers the message to the next subscriber of its type and returns
// the future its result will be set on.
//
// ErrNoSubscribers is returned when nobody subscribed to the type. When the
// selected actor unregistered while the event was in flight, the event is
// dropped to the dead letters and the returned future never resolves.
func (b *Bus) SendEvent(message any) (*future.Future[any], error) {
	topic := TopicOf(message)
	entry := b.events.get(topic)
	if entry == nil {
		return nil, gerrors.NewErrNoSubscribers(topic)
	}

	receiver, ok := entry.Next()
	if !ok {
		return nil, gerrors.NewErrNoSubscribers(topic)
	}

	envelope := b.newEnvelope(KindEvent, topic, message)
	result := future.New[any]()
	// record the future before the event becomes visible to the receiver
	b.futures.Set(envelope.id, result)

	if !b.deliver(receiver, envelope) {
		b.futures.Delete(envelope.id)
		return result, nil
	}

	b.count(b.eventsSent(), topic, 1)
	return result, nil
}

// SendBroadcast delivers the message to every actor subscribed to its type at
// the time of the call and returns the number of mailboxes reached.
func (b *Bus) SendBroadcast(message any) int {
	topic := TopicOf(message)
	entry := b.broadcasts.get(topic)
	if entry == nil {
		return 0
	}

	envelope := b.newEnvelope(KindBroadcast, topic, message)
	delivered := 0
	for _, receiver := range entry.Items() {
		if b.deliver(receiver, envelope) {
			delivered++
		}
	}

	b.count(b.broadcastsSent(), topic, int64(delivered))
	return delivered
}

// Complete resolves the future of the given event with result.
// It returns false when the envelope is not an event or was already completed.
func (b *Bus) Complete(envelope *Envelope, result any) bool {
	if envelope == nil || envelope.kind != KindEvent {
		return false
	}

	pending, ok := b.futures.LoadAndDelete(envelope.id)
	if !ok {
		return false
	}

	pending.Resolve(result)
	b.count(b.futuresCompleted(), envelope.topic, 1)
	return true
}

// AwaitMessage blocks until a message is available in the actor's mailbox.
//
// ErrActorNotRegistered is returned for an actor with no mailbox and
// ErrMailboxClosed when the actor is unregistered while waiting. When ctx is
// done first its error is returned and messages already enqueued stay put.
func (b *Bus) AwaitMessage(ctx context.Context, id ActorID) (*Envelope, error) {
	mailbox, ok := b.mailboxes.Get(id)
	if !ok {
		return nil, gerrors.NewErrActorNotRegistered(id.String())
	}

	envelope, err := mailbox.Wait(ctx)
	if err != nil {
		if errors.Is(err, queue.ErrClosed) {
			return nil, gerrors.ErrMailboxClosed
		}
		return nil, err
	}
	return envelope, nil
}

// PendingFutures returns the number of events still waiting for a result
func (b *Bus) PendingFutures() int {
	return b.futures.Len()
}

func (b *Bus) subscribe(kind Kind, topic string, id ActorID) error {
	b.lifecycleMu.RLock()
	defer b.lifecycleMu.RUnlock()

	memberships, ok := b.memberships.Get(id)
	if !ok {
		return gerrors.NewErrActorNotRegistered(id.String())
	}

	if b.registryOf(kind).getOrCreate(topic).Append(id) {
		memberships.Add(subscription{kind: kind, topic: topic})
		b.logger.Debugf("actor=(%s) subscribed to %s %s", id, kind, topic)
	}
	return nil
}

// deliver enqueues the envelope in the receiver's mailbox.
// A missing or closed mailbox routes the envelope to the dead letters.
func (b *Bus) deliver(receiver ActorID, envelope *Envelope) bool {
	mailbox, ok := b.mailboxes.Get(receiver)
	if !ok {
		b.deadLetter(receiver, envelope, "actor is not registered")
		return false
	}

	if !mailbox.Push(envelope) {
		b.deadLetter(receiver, envelope, "mailbox is closed")
		return false
	}
	return true
}

func (b *Bus) deadLetter(receiver ActorID, envelope *Envelope, reason string) {
	b.logger.Warnf("dropping %s %s for actor=(%s): %s", envelope.kind, envelope.topic, receiver, reason)
	b.count(b.deadLetters(), envelope.topic, 1)
	if b.eventStream != nil {
		b.eventStream.Publish(DeadLettersTopic, &DeadLetter{
			Receiver: receiver,
			Envelope: envelope,
			Reason:   reason,
		})
	}
}

func (b *Bus) newEnvelope(kind Kind, topic string, payload any) *Envelope {
	return &Envelope{
		id:      b.sequence.Inc(),
		kind:    kind,
		topic:   topic,
		payload: payload,
		sentAt:  time.Now(),
	}
}

func (b *Bus) registryOf(kind Kind) *registry {
	if kind == KindBroadcast {
		return b.broadcasts
	}
	return b.events
}

func (b *Bus) count(counter metric.Int64Counter, topic string, delta int64) {
	if counter == nil || delta == 0 {
		return
	}
	counter.Add(context.Background(), delta, metric.WithAttributes(attribute.String("type", topic)))
}

func (b *Bus) eventsSent() metric.Int64Counter {
	if b.metrics == nil {
		return nil
	}
	return b.metrics.EventsSent()
}

func (b *Bus) broadcastsSent() metric.Int64Counter {
	if b.metrics == nil {
		return nil
	}
	return b.metrics.BroadcastsSent()
}

func (b *Bus) deadLetters() metric.Int64Counter {
	if b.metrics == nil {
		return nil
	}
	return b.metrics.DeadLetters()
}

func (b *Bus) futuresCompleted() metric.Int64Counter {
	if b.metrics == nil {
		return nil
	}
	return b.metrics.FuturesCompleted()
}
