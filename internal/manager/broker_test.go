package manager

import (
	"testing"
	"time"

	"github.com/vigil/demo-requests/internal/demo"
)

func TestBrokerSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe()
	b.mu.RLock()
	if _, ok := b.clients[ch]; !ok {
		t.Fatal("expected channel to be registered")
	}
	b.mu.RUnlock()

	b.Unsubscribe(ch)
	b.mu.RLock()
	if _, ok := b.clients[ch]; ok {
		t.Fatal("expected channel to be removed")
	}
	b.mu.RUnlock()

	if _, open := <-ch; open {
		t.Error("expected channel to be closed")
	}

	// Second unsubscribe must not panic on a closed channel.
	b.Unsubscribe(ch)
}

func TestBrokerPublishMultipleClients(t *testing.T) {
	b := NewBroker()

	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	defer b.Unsubscribe(ch1)
	defer b.Unsubscribe(ch2)

	b.Publish(Event{Type: EventCreated, Request: demo.Request{ID: "r1", FullName: "Jane Doe"}})

	for i, ch := range []chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != EventCreated || ev.Request.ID != "r1" {
				t.Errorf("client %d received unexpected event %+v", i, ev)
			}
		case <-time.After(time.Second):
			t.Errorf("client %d timed out", i)
		}
	}
}

func TestBrokerPublishNoClients(t *testing.T) {
	b := NewBroker()
	// Should not panic
	b.Publish(Event{Type: EventCreated})
}

func TestBrokerPublishDropsWhenFull(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 20; i++ {
		b.Publish(Event{Type: EventStatusChanged})
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		default:
			goto done
		}
	}
done:
	if count != 16 {
		t.Errorf("expected 16 buffered events, got %d", count)
	}
}
