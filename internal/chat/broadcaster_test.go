// ABOUTME: Tests for the snapshot broadcaster
// ABOUTME: Covers fan-out, slow subscribers, unsubscribe and close

package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_MultipleSubscribersReceiveSameSnapshot(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx := t.Context()
	ch1, _ := b.Subscribe(ctx)
	ch2, _ := b.Subscribe(ctx)

	b.Publish(Snapshot{RunID: "run-1"})

	for i, ch := range []<-chan Snapshot{ch1, ch2} {
		select {
		case snap := <-ch:
			assert.Equal(t, "run-1", snap.RunID, "subscriber %d", i)
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

func TestBroadcaster_SlowSubscriberKeepsLatest(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ch, _ := b.Subscribe(t.Context())

	total := subscriberBufferSize + 5
	for i := 0; i < total; i++ {
		b.Publish(Snapshot{RunID: string(rune('a' + i))})
	}

	var last Snapshot
	n := 0
	for len(ch) > 0 {
		last = <-ch
		n++
	}
	assert.Equal(t, subscriberBufferSize, n)
	assert.Equal(t, string(rune('a'+total-1)), last.RunID)
}

func TestBroadcaster_ContextCancelUnsubscribes(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after cancel")
	}
}

func TestBroadcaster_UnsubscribeTwiceIsSafe(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	_, id := b.Subscribe(t.Context())
	b.Unsubscribe(id)
	b.Unsubscribe(id)
}

func TestBroadcaster_CloseClosesChannels(t *testing.T) {
	b := NewBroadcaster(nil)

	ch, _ := b.Subscribe(t.Context())
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := b.Subscribe(t.Context())
	_, ok = <-late
	require.False(t, ok, "subscribing after close yields a closed channel")

	b.Publish(Snapshot{})
}
