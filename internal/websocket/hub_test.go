package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	first := &Client{send: make(chan []byte, 1)}
	second := &Client{send: make(chan []byte, 1)}
	hub.Register(first)
	hub.Register(second)

	hub.BroadcastQueueUpdate(QueueUpdate{Event: EventCalled, Data: map[string]string{"ticket": "A100"}})

	for _, client := range []*Client{first, second} {
		select {
		case payload := <-client.send:
			var update QueueUpdate
			require.NoError(t, json.Unmarshal(payload, &update))
			assert.Equal(t, EventCalled, update.Event)
		default:
			t.Fatalf("client did not receive the update")
		}
	}
}

func TestBroadcastDropsForSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{send: make(chan []byte, 1)}
	hub.Register(slow)
	slow.send <- []byte("backlog")

	// must not block even though the buffer is full
	hub.BroadcastQueueUpdate(QueueUpdate{Event: EventNewCustomer})

	assert.Equal(t, "backlog", string(<-slow.send))
	select {
	case extra := <-slow.send:
		t.Fatalf("unexpected extra payload: %s", extra)
	default:
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	client := &Client{send: make(chan []byte, 1)}
	hub.Register(client)
	hub.Unregister(client)

	hub.BroadcastQueueUpdate(QueueUpdate{Event: EventCancelled})

	select {
	case payload := <-client.send:
		t.Fatalf("unexpected payload after unregister: %s", payload)
	default:
	}
}
