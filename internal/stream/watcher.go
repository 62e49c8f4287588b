package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/park285/cheese-chess/pkg/chessdto"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type WatchState int

const (
	WatchDisconnected WatchState = iota
	WatchConnecting
	WatchConnected
	WatchReconnecting
	WatchFailed
)

func (s WatchState) String() string {
	switch s {
	case WatchConnecting:
		return "connecting"
	case WatchConnected:
		return "connected"
	case WatchReconnecting:
		return "reconnecting"
	case WatchFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

// Watcher follows one game's event stream and reconnects after dropped
// connections.
type Watcher struct {
	url                  string
	maxReconnectAttempts int
	reconnectDelay       time.Duration
	header               http.Header
	onState              func(WatchState)
}

type WatcherOption func(*Watcher)

func WithHeader(h http.Header) WatcherOption {
	return func(w *Watcher) { w.header = h.Clone() }
}

func WithStateCallback(cb func(WatchState)) WatcherOption {
	return func(w *Watcher) { w.onState = cb }
}

// NewWatcher builds a watcher for baseURL (http or ws scheme) and gameID.
func NewWatcher(baseURL, gameID string, maxReconnectAttempts int, reconnectDelay time.Duration, opts ...WatcherOption) *Watcher {
	base := strings.TrimRight(baseURL, "/")
	base = strings.Replace(base, "http://", "ws://", 1)
	base = strings.Replace(base, "https://", "wss://", 1)
	w := &Watcher{
		url:                  base + "/games/" + gameID + "/events",
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Watcher) URL() string { return w.url }

// Watch delivers events to fn until ctx ends, fn returns an error, or the
// reconnect budget is spent. A server-side policy close (unknown game) is
// not retried.
func (w *Watcher) Watch(ctx context.Context, fn func(chessdto.GameEvent) error) error {
	attempts := 0
	w.setState(WatchConnecting)
	for {
		err := w.session(ctx, fn, &attempts)
		if ctx.Err() != nil {
			w.setState(WatchDisconnected)
			return ctx.Err()
		}
		var stop *stopError
		if errors.As(err, &stop) {
			w.setState(WatchDisconnected)
			return stop.err
		}
		if websocket.CloseStatus(err) == websocket.StatusPolicyViolation {
			w.setState(WatchFailed)
			return fmt.Errorf("watch %s: %w", w.url, err)
		}
		attempts++
		if attempts > w.maxReconnectAttempts {
			w.setState(WatchFailed)
			return fmt.Errorf("watch %s: giving up after %d reconnects: %w", w.url, attempts-1, err)
		}
		w.setState(WatchReconnecting)
		t := time.NewTimer(w.backoff(attempts))
		select {
		case <-ctx.Done():
			t.Stop()
			w.setState(WatchDisconnected)
			return ctx.Err()
		case <-t.C:
		}
	}
}

type stopError struct{ err error }

func (e *stopError) Error() string { return e.err.Error() }

func (w *Watcher) session(ctx context.Context, fn func(chessdto.GameEvent) error, attempts *int) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.Dial(dialCtx, w.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      w.header,
	})
	cancel()
	if err != nil {
		return err
	}
	defer conn.CloseNow()

	*attempts = 0
	w.setState(WatchConnected)
	for {
		var ev chessdto.GameEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "done")
			return &stopError{err: err}
		}
	}
}

func (w *Watcher) backoff(attempt int) time.Duration {
	base := w.reconnectDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * base
}

func (w *Watcher) setState(s WatchState) {
	if w.onState != nil {
		w.onState(s)
	}
}
