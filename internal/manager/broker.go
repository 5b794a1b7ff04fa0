package manager

import (
	"sync"

	"github.com/vigil/demo-requests/internal/demo"
)

const (
	EventCreated       = "created"
	EventStatusChanged = "status_changed"
)

// Event describes a change to a demo request.
type Event struct {
	Type    string       `json:"type"`
	Request demo.Request `json:"request"`
}

// Broker fans events out to subscribers. Delivery never blocks: a subscriber
// whose buffer is full misses the event.
type Broker struct {
	mu      sync.RWMutex
	clients map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		clients: make(map[chan Event]struct{}),
	}
}

func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	_, ok := b.clients[ch]
	delete(b.clients, ch)
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}

func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}
