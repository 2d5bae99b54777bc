package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, playerID string) *Client {
	return &Client{
		hub:      hub,
		conn:     nil,
		playerID: playerID,
		send:     make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, "p1")
	c2 := mockClient(hub, "p2")

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, "p1")
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, "p1")
	c2 := mockClient(hub, "p2")
	hub.Register(c1)
	hub.Register(c2)

	hub.Broadcast(Event{Type: "portal_spawned", Data: map[string]any{"portal_id": "abc"}})

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Event
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "portal_spawned" {
				t.Errorf("expected type portal_spawned, got %s", got.Type)
			}
			if got.Data["portal_id"] != "abc" {
				t.Errorf("expected portal_id abc, got %v", got.Data["portal_id"])
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for event")
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestSendToTargetsOnePlayer(t *testing.T) {
	hub := NewHub(slog.Default())

	mine := mockClient(hub, "p1")
	other := mockClient(hub, "p2")
	hub.Register(mine)
	hub.Register(other)

	hub.SendTo("p1", Event{Type: "judgment_reward"})

	select {
	case data := <-mine.send:
		var got Event
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.PlayerID != "p1" {
			t.Errorf("expected player_id p1, got %s", got.PlayerID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for targeted event")
	}

	select {
	case <-other.send:
		t.Fatal("event leaked to another player's client")
	default:
	}

	hub.Unregister(mine)
	hub.Unregister(other)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.Broadcast(Event{Type: "quest_launch"})
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, "p1")
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(Event{Type: "fill"})
	}

	// This should drop the event, not panic or block
	hub.Broadcast(Event{Type: "dropped"})

	// Drain to verify buffer was full
	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d events, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	// Register, broadcast, and unregister concurrently
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, "p")
			hub.Register(c)
			hub.Broadcast(Event{Type: "concurrent"})
			// Drain any events
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
