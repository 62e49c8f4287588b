package stream

import (
	"sync"
	"sync/atomic"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	svc "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/park285/cheese-chess/pkg/chessdto"
	"go.uber.org/zap"
)

const defaultBuffer = 16

type subscriber struct {
	ch chan chessdto.GameEvent
}

// Hub fans game events out to per-game subscribers. Publish never blocks:
// a subscriber whose buffer is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscriber]struct{}
	buffer  int
	closed  bool
	dropped atomic.Int64
	logger  *zap.Logger
}

func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{subs: make(map[string]map[*subscriber]struct{}), buffer: buffer, logger: logger}
}

// Subscribe returns a channel of events for gameID and a cancel func that
// unsubscribes and closes the channel.
func (h *Hub) Subscribe(gameID string) (<-chan chessdto.GameEvent, func()) {
	sub := &subscriber{ch: make(chan chessdto.GameEvent, h.buffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	set, ok := h.subs[gameID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[gameID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() { h.remove(gameID, sub) })
	}
}

func (h *Hub) remove(gameID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[gameID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, gameID)
	}
	close(sub.ch)
}

// Publish implements the service's Publisher.
func (h *Hub) Publish(ev svc.Event) {
	h.PublishDTO(chesspresenter.ToDTOEvent(ev))
}

func (h *Hub) PublishDTO(ev chessdto.GameEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[ev.GameID] {
		select {
		case sub.ch <- ev:
		default:
			h.dropped.Add(1)
			h.logger.Debug("stream subscriber lagging, event dropped",
				zap.String("game_id", ev.GameID),
				zap.String("type", ev.Type),
			)
		}
	}
}

// Subscribers counts the watchers of gameID.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[gameID])
}

// Dropped counts events lost to full subscriber buffers.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, set := range h.subs {
		for sub := range set {
			close(sub.ch)
		}
		delete(h.subs, id)
	}
}
