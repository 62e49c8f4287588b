package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/park285/cheese-chess/pkg/chessdto"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := NewServer(hub, nil,
		WithPingInterval(50*time.Millisecond),
		WithSnapshot(func(_ context.Context, id string) (*chessdto.SessionState, error) {
			if id == "missing" {
				return nil, errors.New("not found")
			}
			return &chessdto.SessionState{ID: id, Message: "White to move."}, nil
		}),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func TestServerStreamsSnapshotThenEvents(t *testing.T) {
	hub := NewHub(8, nil)
	ts := newTestServer(t, hub)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(ts, "/games/g1/events"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	var first chessdto.GameEvent
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if first.Type != chessdto.EventSnapshot || first.State == nil || first.State.ID != "g1" {
		t.Fatalf("unexpected snapshot %+v", first)
	}

	hub.PublishDTO(chessdto.GameEvent{Type: chessdto.EventMove, GameID: "other"})
	hub.PublishDTO(chessdto.GameEvent{Type: chessdto.EventMove, GameID: "g1", SAN: "e4"})

	var ev chessdto.GameEvent
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.GameID != "g1" || ev.SAN != "e4" {
		t.Fatalf("unexpected event %+v", ev)
	}

	_ = conn.Close(websocket.StatusNormalClosure, "")
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers("g1") != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber not released after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServerRejectsUnknownGame(t *testing.T) {
	ts := newTestServer(t, NewHub(1, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(ts, "/games/missing/events"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()
	var ev chessdto.GameEvent
	err = wsjson.Read(ctx, conn, &ev)
	if websocket.CloseStatus(err) != websocket.StatusPolicyViolation {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

func TestServerRejectsForeignOrigin(t *testing.T) {
	ts := newTestServer(t, NewHub(1, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, wsURL(ts, "/games/g1/events"), &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://evil.example"}},
	})
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestWatcherReceivesEvents(t *testing.T) {
	hub := NewHub(8, nil)
	ts := newTestServer(t, hub)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var states []WatchState
	w := NewWatcher(ts.URL, "g2", 2, 10*time.Millisecond, WithStateCallback(func(s WatchState) {
		states = append(states, s)
	}))
	if !strings.HasPrefix(w.URL(), "ws://") {
		t.Fatalf("url = %s", w.URL())
	}

	errDone := errors.New("done")
	var got []string
	err := w.Watch(ctx, func(ev chessdto.GameEvent) error {
		got = append(got, ev.Type)
		if ev.Type == chessdto.EventSnapshot {
			hub.PublishDTO(chessdto.GameEvent{Type: chessdto.EventReset, GameID: "g2"})
			return nil
		}
		return errDone
	})
	if !errors.Is(err, errDone) {
		t.Fatalf("watch returned %v", err)
	}
	if strings.Join(got, ",") != "snapshot,reset" {
		t.Fatalf("events = %v", got)
	}
	if len(states) < 2 || states[1] != WatchConnected {
		t.Fatalf("states = %v", states)
	}
}

func TestWatcherGivesUpOnUnknownGame(t *testing.T) {
	ts := newTestServer(t, NewHub(1, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	w := NewWatcher(ts.URL, "missing", 5, 10*time.Millisecond)
	err := w.Watch(ctx, func(chessdto.GameEvent) error { return nil })
	if websocket.CloseStatus(err) != websocket.StatusPolicyViolation {
		t.Fatalf("expected policy violation, got %v", err)
	}
}
