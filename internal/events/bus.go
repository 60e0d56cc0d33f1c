package events

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/holdfast/yieldscore/internal/domain"
)

// Bus fans completion events out to subscribers, fire-and-forget. A slow or
// full subscriber drops the event rather than blocking the scoring pipeline;
// the scorer never waits for acknowledgment.
type Bus struct {
	log zerolog.Logger

	mu   sync.RWMutex
	subs []chan domain.CompletionEvent
}

// NewBus creates an event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{log: log.With().Str("component", "event_bus").Logger()}
}

// Subscribe returns a buffered channel receiving future completion events.
func (b *Bus) Subscribe(buffer int) <-chan domain.CompletionEvent {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan domain.CompletionEvent, buffer)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(ev domain.CompletionEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.log.Warn().Str("ticker", ev.Ticker).Msg("subscriber buffer full, completion event dropped")
		}
	}
}
