package stream

import (
	"testing"

	corechess "github.com/park285/cheese-chess/internal/chess"
	svc "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func TestHubDeliversPerGame(t *testing.T) {
	h := NewHub(4, nil)
	a, cancelA := h.Subscribe("a")
	defer cancelA()
	b, cancelB := h.Subscribe("b")
	defer cancelB()

	h.Publish(svc.Event{Type: svc.EventMove, GameID: "a", SAN: "e4", State: &svc.SessionState{
		ID:       "a",
		Position: corechess.StartingPosition(),
		Start:    corechess.StartingPosition(),
	}})

	select {
	case ev := <-a:
		if ev.Type != chessdto.EventMove || ev.SAN != "e4" || ev.State == nil || ev.State.Turn != "white" {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatalf("subscriber a got nothing")
	}
	select {
	case ev := <-b:
		t.Fatalf("subscriber b got %+v", ev)
	default:
	}
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	h := NewHub(1, nil)
	ch, cancel := h.Subscribe("g")
	h.PublishDTO(chessdto.GameEvent{Type: "move", GameID: "g"})
	h.PublishDTO(chessdto.GameEvent{Type: "move", GameID: "g"})
	if h.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", h.Dropped())
	}
	if len(ch) != 1 {
		t.Fatalf("buffered = %d, want 1", len(ch))
	}

	cancel()
	cancel()
	if h.Subscribers("g") != 0 {
		t.Fatalf("subscriber not removed")
	}
	<-ch
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed after cancel")
	}
}

func TestHubClose(t *testing.T) {
	h := NewHub(0, nil)
	ch, cancel := h.Subscribe("g")
	h.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed")
	}
	cancel()

	late, _ := h.Subscribe("g")
	if _, ok := <-late; ok {
		t.Fatalf("subscription after close should be closed")
	}
}
