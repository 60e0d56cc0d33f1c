package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holdfast/yieldscore/internal/domain"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	a := bus.Subscribe(4)
	b := bus.Subscribe(4)

	bus.Publish(domain.CompletionEvent{Ticker: "JNJ", Score: 72.5, Class: domain.ClassDividendStock})

	for _, ch := range []<-chan domain.CompletionEvent{a, b} {
		select {
		case ev := <-ch:
			assert.Equal(t, "JNJ", ev.Ticker)
			assert.Equal(t, 72.5, ev.Score)
		default:
			t.Fatal("expected a buffered event")
		}
	}
}

func TestPublishWithNoSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	bus.Publish(domain.CompletionEvent{Ticker: "JNJ"}) // must not panic or block
}

func TestFullSubscriberDropsWithoutBlocking(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	slow := bus.Subscribe(1)
	healthy := bus.Subscribe(4)

	bus.Publish(domain.CompletionEvent{Ticker: "A"})
	bus.Publish(domain.CompletionEvent{Ticker: "B"}) // slow buffer already full

	// The slow subscriber keeps only the first event.
	ev := <-slow
	assert.Equal(t, "A", ev.Ticker)
	select {
	case <-slow:
		t.Fatal("dropped event should not be delivered")
	default:
	}

	// The healthy subscriber received both.
	require.Len(t, healthy, 2)
	assert.Equal(t, "A", (<-healthy).Ticker)
	assert.Equal(t, "B", (<-healthy).Ticker)
}

func TestSubscribeDefaultsBuffer(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	ch := bus.Subscribe(0)
	for i := 0; i < 64; i++ {
		bus.Publish(domain.CompletionEvent{Ticker: "X"})
	}
	assert.Len(t, ch, 64)
}
