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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/goleak"

	gerrors "github.com/tochemey/gurionrock/errors"
	"github.com/tochemey/gurionrock/eventstream"
	"github.com/tochemey/gurionrock/log"
)

type ping struct {
	seq int
}

type announce struct {
	text string
}

func newTestBus(opts ...Option) *Bus {
	opts = append([]Option{
		WithLogger(log.DiscardLogger),
		WithMeter(noop.NewMeterProvider().Meter("test")),
	}, opts...)
	return New(opts...)
}

func newActor(t *testing.T, b *Bus, name string) ActorID {
	t.Helper()
	id := NewActorID(name)
	b.Register(id)
	return id
}

func awaitPayload(t *testing.T, b *Bus, id ActorID) any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	envelope, err := b.AwaitMessage(ctx, id)
	require.NoError(t, err)
	return envelope.Payload()
}

func TestRegister(t *testing.T) {
	t.Run("is idempotent", func(t *testing.T) {
		b := newTestBus()
		id := newActor(t, b, "actor")
		require.NoError(t, b.SubscribeBroadcast(TopicFor[announce](), id))
		b.Register(id)

		assert.True(t, b.IsRegistered(id))
		assert.Equal(t, 1, b.SubscribersCount(KindBroadcast, TopicFor[announce]()))
	})
	t.Run("identities are never reused", func(t *testing.T) {
		first := NewActorID("camera")
		second := NewActorID("camera")
		assert.NotEqual(t, first, second)
		assert.Equal(t, "camera", first.Name())
		assert.False(t, first.IsZero())
		assert.True(t, ActorID{}.IsZero())
		assert.Contains(t, first.String(), "camera/")
	})
	t.Run("subscribing an unregistered actor fails", func(t *testing.T) {
		b := newTestBus()
		err := b.SubscribeEvent(TopicFor[ping](), NewActorID("ghost"))
		require.ErrorIs(t, err, gerrors.ErrActorNotRegistered)
	})
	t.Run("duplicate subscription is a no-op", func(t *testing.T) {
		b := newTestBus()
		id := newActor(t, b, "actor")
		require.NoError(t, b.SubscribeEvent(TopicFor[ping](), id))
		require.NoError(t, b.SubscribeEvent(TopicFor[ping](), id))
		assert.Equal(t, 1, b.SubscribersCount(KindEvent, TopicFor[ping]()))
		assert.Zero(t, b.SubscribersCount(KindBroadcast, TopicFor[ping]()))
	})
}

func TestSendEvent(t *testing.T) {
	t.Run("rotates subscribers round-robin", func(t *testing.T) {
		b := newTestBus()
		actor1 := newActor(t, b, "actor1")
		actor2 := newActor(t, b, "actor2")
		require.NoError(t, b.SubscribeEvent(TopicFor[ping](), actor1))
		require.NoError(t, b.SubscribeEvent(TopicFor[ping](), actor2))

		for seq := 1; seq <= 4; seq++ {
			result, err := b.SendEvent(ping{seq: seq})
			require.NoError(t, err)
			require.NotNil(t, result)
		}

		assert.Equal(t, 1, awaitPayload(t, b, actor1).(ping).seq)
		assert.Equal(t, 3, awaitPayload(t, b, actor1).(ping).seq)
		assert.Equal(t, 2, awaitPayload(t, b, actor2).(ping).seq)
		assert.Equal(t, 4, awaitPayload(t, b, actor2).(ping).seq)
	})
	t.Run("without subscribers is undeliverable", func(t *testing.T) {
		b := newTestBus()
		result, err := b.SendEvent(&ping{})
		require.ErrorIs(t, err, gerrors.ErrNoSubscribers)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), TopicFor[*ping]())
		assert.Zero(t, b.PendingFutures())
	})
	t.Run("after the last subscriber left is undeliverable", func(t *testing.T) {
		b := newTestBus()
		id := newActor(t, b, "actor")
		require.NoError(t, b.SubscribeEvent(TopicFor[ping](), id))
		b.Unregister(id)

		_, err := b.SendEvent(ping{})
		require.ErrorIs(t, err, gerrors.ErrNoSubscribers)
	})
	t.Run("is completed exactly once", func(t *testing.T) {
		b := newTestBus()
		id := newActor(t, b, "worker")
		require.NoError(t, b.SubscribeEvent(TopicFor[ping](), id))

		result, err := b.SendEvent(ping{seq: 7})
		require.NoError(t, err)
		assert.False(t, result.IsDone())
		assert.Equal(t, 1, b.PendingFutures())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		envelope, err := b.AwaitMessage(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, KindEvent, envelope.Kind())
		assert.Equal(t, TopicFor[ping](), envelope.Topic())
		assert.False(t, envelope.SentAt().IsZero())

		require.True(t, b.Complete(envelope, "done"))
		require.False(t, b.Complete(envelope, "again"))

		value, err := result.GetWithin(time.Second)
		require.NoError(t, err)
		assert.Equal(t, "done", value)
		assert.Zero(t, b.PendingFutures())
	})
	t.Run("completing a broadcast is a no-op", func(t *testing.T) {
		b := newTestBus()
		id := newActor(t, b, "listener")
		require.NoError(t, b.SubscribeBroadcast(TopicFor[announce](), id))
		require.Equal(t, 1, b.SendBroadcast(announce{text: "hello"}))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		envelope, err := b.AwaitMessage(ctx, id)
		require.NoError(t, err)
		assert.False(t, b.Complete(envelope, nil))
		assert.False(t, b.Complete(nil, nil))
	})
	t.Run("to a vanished mailbox goes to dead letters", func(t *testing.T) {
		stream := eventstream.New()
		defer stream.Close()
		consumer := stream.AddSubscriber()
		stream.Subscribe(consumer, DeadLettersTopic)

		b := newTestBus(WithEventStream(stream))
		id := newActor(t, b, "gone")
		require.NoError(t, b.SubscribeEvent(TopicFor[ping](), id))
		// the mailbox disappears while the actor is still listed
		b.mailboxes.Delete(id)

		result, err := b.SendEvent(ping{seq: 1})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.False(t, result.IsDone())
		assert.Zero(t, b.PendingFutures())

		var letters []*DeadLetter
		for message := range consumer.Iterator() {
			letters = append(letters, message.Payload().(*DeadLetter))
		}
		require.Len(t, letters, 1)
		assert.Equal(t, id, letters[0].Receiver)
		assert.Equal(t, ping{seq: 1}, letters[0].Envelope.Payload())
	})
	t.Run("concurrent senders are served fairly", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		b := newTestBus()

		const (
			subscribers = 4
			senders     = 8
			perSender   = 500
		)

		ids := make([]ActorID, subscribers)
		for i := range ids {
			ids[i] = newActor(t, b, "worker")
			require.NoError(t, b.SubscribeEvent(TopicFor[ping](), ids[i]))
		}

		var wg sync.WaitGroup
		for range senders {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for seq := range perSender {
					_, err := b.SendEvent(ping{seq: seq})
					assert.NoError(t, err)
				}
			}()
		}
		wg.Wait()

		for _, id := range ids {
			mailbox, ok := b.mailboxes.Get(id)
			require.True(t, ok)
			assert.Equal(t, senders*perSender/subscribers, mailbox.Len())
		}
	})
}

func TestSendBroadcast(t *testing.T) {
	t.Run("reaches every subscriber", func(t *testing.T) {
		b := newTestBus()
		ids := []ActorID{newActor(t, b, "a"), newActor(t, b, "b"), newActor(t, b, "c")}
		for _, id := range ids {
			require.NoError(t, b.SubscribeBroadcast(TopicFor[announce](), id))
		}

		require.Equal(t, 3, b.SendBroadcast(announce{text: "tick"}))
		for _, id := range ids {
			assert.Equal(t, announce{text: "tick"}, awaitPayload(t, b, id))
		}
	})
	t.Run("without subscribers reaches nobody", func(t *testing.T) {
		b := newTestBus()
		assert.Zero(t, b.SendBroadcast(announce{}))
	})
	t.Run("keeps per destination order", func(t *testing.T) {
		b := newTestBus()
		id := newActor(t, b, "listener")
		require.NoError(t, b.SubscribeBroadcast(TopicFor[announce](), id))
		require.NoError(t, b.SubscribeEvent(TopicFor[ping](), id))

		b.SendBroadcast(announce{text: "first"})
		_, err := b.SendEvent(ping{seq: 2})
		require.NoError(t, err)
		b.SendBroadcast(announce{text: "third"})

		assert.Equal(t, announce{text: "first"}, awaitPayload(t, b, id))
		assert.Equal(t, ping{seq: 2}, awaitPayload(t, b, id))
		assert.Equal(t, announce{text: "third"}, awaitPayload(t, b, id))
	})
}

func TestUnregister(t *testing.T) {
	t.Run("removes the actor from every registry", func(t *testing.T) {
		b := newTestBus()
		id := newActor(t, b, "actor")
		other := newActor(t, b, "other")
		require.NoError(t, b.SubscribeEvent(TopicFor[ping](), id))
		require.NoError(t, b.SubscribeEvent(TopicFor[ping](), other))
		require.NoError(t, b.SubscribeBroadcast(TopicFor[announce](), id))

		b.Unregister(id)
		b.Unregister(id)

		assert.False(t, b.IsRegistered(id))
		assert.Equal(t, 1, b.SubscribersCount(KindEvent, TopicFor[ping]()))
		assert.Zero(t, b.SubscribersCount(KindBroadcast, TopicFor[announce]()))

		_, err := b.AwaitMessage(context.Background(), id)
		require.ErrorIs(t, err, gerrors.ErrActorNotRegistered)
	})
	t.Run("releases a waiting actor", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		b := newTestBus()
		id := newActor(t, b, "actor")

		errc := make(chan error, 1)
		go func() {
			_, err := b.AwaitMessage(context.Background(), id)
			errc <- err
		}()

		time.Sleep(20 * time.Millisecond)
		b.Unregister(id)

		select {
		case err := <-errc:
			require.ErrorIs(t, err, gerrors.ErrMailboxClosed)
		case <-time.After(time.Second):
			t.Fatal("waiting actor was not released")
		}
	})
	t.Run("is atomic with concurrent sends", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		b := newTestBus()

		stable := newActor(t, b, "stable")
		leaving := newActor(t, b, "leaving")
		require.NoError(t, b.SubscribeEvent(TopicFor[ping](), stable))
		require.NoError(t, b.SubscribeEvent(TopicFor[ping](), leaving))
		require.NoError(t, b.SubscribeBroadcast(TopicFor[announce](), stable))
		require.NoError(t, b.SubscribeBroadcast(TopicFor[announce](), leaving))

		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for seq := range 250 {
					_, err := b.SendEvent(ping{seq: seq})
					assert.NoError(t, err)
					b.SendBroadcast(announce{})
				}
			}()
		}

		b.Unregister(leaving)
		wg.Wait()

		// once unregistration returns no send may select the actor again
		for seq := range 10 {
			_, err := b.SendEvent(ping{seq: seq})
			require.NoError(t, err)
		}
		assert.Equal(t, 1, b.SendBroadcast(announce{}))
		assert.Equal(t, []ActorID{stable}, b.events.get(TopicFor[ping]()).Items())
	})
}

func TestAwaitMessage(t *testing.T) {
	t.Run("interruption keeps enqueued messages", func(t *testing.T) {
		b := newTestBus()
		id := newActor(t, b, "actor")
		require.NoError(t, b.SubscribeBroadcast(TopicFor[announce](), id))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := b.AwaitMessage(ctx, id)
		require.ErrorIs(t, err, context.DeadlineExceeded)

		b.SendBroadcast(announce{text: "after"})
		assert.Equal(t, announce{text: "after"}, awaitPayload(t, b, id))
	})
	t.Run("unknown actor", func(t *testing.T) {
		b := newTestBus()
		_, err := b.AwaitMessage(context.Background(), NewActorID("ghost"))
		require.ErrorIs(t, err, gerrors.ErrActorNotRegistered)
	})
}

func TestKind(t *testing.T) {
	assert.Equal(t, "event", KindEvent.String())
	assert.Equal(t, "broadcast", KindBroadcast.String())
	assert.Equal(t, "unknown", Kind(7).String())
}
