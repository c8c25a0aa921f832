package eventbus

import (
	"sync"
	"time"

	"loopwise-go/internal/models"
)

type Kind string

const (
	KindToast        Kind = "toast"
	KindNotification Kind = "notification"
	KindNavigate     Kind = "navigate"
	KindState        Kind = "state"
)

// Event is a UI-facing change published by the controller. Exactly one of
// Toast, Notification or View is set, matching Kind. KindState carries none.
type Event struct {
	Kind         Kind                 `json:"kind"`
	Toast        *models.Toast        `json:"toast,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
	View         models.View          `json:"view,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
}

const (
	subscriberBuffer = 32
	// DefaultHistory is how many recent events Recent can return.
	DefaultHistory = 50
)

// Bus is an in-memory fan-out of events. Slow subscribers drop events
// rather than block the publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	history     []Event
	maxHistory  int
}

func New(maxHistory int) *Bus {
	if maxHistory <= 0 {
		maxHistory = DefaultHistory
	}
	return &Bus{
		subscribers: make(map[chan Event]struct{}),
		maxHistory:  maxHistory,
	}
}

func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	b.mu.Lock()
	b.history = append(b.history, event)
	if len(b.history) > b.maxHistory {
		b.history = b.history[len(b.history)-b.maxHistory:]
	}
	b.mu.Unlock()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe returns a channel of future events and a func that detaches it.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

// Recent returns up to the last n events, oldest first, optionally filtered by kind.
func (b *Bus) Recent(kind Kind, n int) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for i := len(b.history) - 1; i >= 0 && (n <= 0 || len(out) < n); i-- {
		if kind == "" || b.history[i].Kind == kind {
			out = append(out, b.history[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Reset clears the history. Subscribers stay attached.
func (b *Bus) Reset() {
	b.mu.Lock()
	b.history = nil
	b.mu.Unlock()
}

func (b *Bus) Toast(message string, kind models.ToastKind) {
	b.Publish(Event{Kind: KindToast, Toast: &models.Toast{Message: message, Kind: kind}})
}

func (b *Bus) Notify(n models.Notification) {
	b.Publish(Event{Kind: KindNotification, Notification: &n, Timestamp: n.Timestamp})
}

func (b *Bus) Navigate(view models.View) {
	b.Publish(Event{Kind: KindNavigate, View: view})
}

func (b *Bus) Changed() {
	b.Publish(Event{Kind: KindState})
}
