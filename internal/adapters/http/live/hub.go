// Package live pushes kiosk events to connected displays over websockets.
//
// A secondary screen (a projector showing the leaderboard, say) connects to
// /live, receives the current snapshot, then every accepted submission and
// session reset as they happen.
package live

import (
	"context"
	"sync"

	"github.com/okian/challengeboard/pkg/metrics"
)

const subscriberBuffer = 32

// Message is one event on the live feed.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans messages out to subscribers. Slow subscribers lose messages
// instead of blocking the submission path.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Message]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan Message]struct{})}
}

// Subscribe registers a new subscriber. Call Unsubscribe when done.
func (h *Hub) Subscribe() <-chan Message {
	ch := make(chan Message, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	n := len(h.subscribers)
	h.mu.Unlock()

	metrics.UpdateLiveSubscribers(n)
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown channels are ignored.
func (h *Hub) Unsubscribe(ch <-chan Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers {
		if sub == ch {
			delete(h.subscribers, sub)
			close(sub)
			break
		}
	}
	metrics.UpdateLiveSubscribers(len(h.subscribers))
}

// Publish sends an event to every subscriber without blocking.
func (h *Hub) Publish(_ context.Context, event string, payload any) {
	msg := Message{Type: event, Data: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			metrics.RecordLiveDropped()
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
