package stream

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/park285/cheese-chess/pkg/chessdto"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// SnapshotFunc loads the current state sent to a watcher on connect.
type SnapshotFunc func(ctx context.Context, gameID string) (*chessdto.SessionState, error)

type Server struct {
	hub          *Hub
	snapshot     SnapshotFunc
	origins      []string
	logger       *zap.Logger
	pingInterval time.Duration
	writeTimeout time.Duration
	http         *http.Server
}

type ServerOption func(*Server)

// WithOrigins lists the cross-origin hosts allowed to connect, as accepted by
// websocket.AcceptOptions.OriginPatterns.
func WithOrigins(patterns []string) ServerOption {
	return func(s *Server) { s.origins = append([]string(nil), patterns...) }
}

func WithPingInterval(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

func WithSnapshot(fn SnapshotFunc) ServerOption {
	return func(s *Server) { s.snapshot = fn }
}

func NewServer(hub *Hub, logger *zap.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		hub:          hub,
		logger:       logger,
		pingInterval: 30 * time.Second,
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /games/{id}/events", s.handleEvents)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// ListenAndServe blocks until Shutdown is called or the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.logger.Info("event stream listening", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	gameID := strings.TrimSpace(r.PathValue("id"))
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  s.origins,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Debug("websocket accept failed", zap.String("game_id", gameID), zap.Error(err))
		return
	}
	defer conn.CloseNow()

	events, cancel := s.hub.Subscribe(gameID)
	defer cancel()

	// Watchers never send data; CloseRead handles control frames and
	// cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	if s.snapshot != nil {
		state, err := s.snapshot(ctx, gameID)
		if err != nil {
			_ = conn.Close(websocket.StatusPolicyViolation, "game not available")
			return
		}
		if err := s.write(ctx, conn, chessdto.GameEvent{Type: chessdto.EventSnapshot, GameID: gameID, State: state}); err != nil {
			return
		}
	}

	s.logger.Debug("watcher connected", zap.String("game_id", gameID))
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := s.write(ctx, conn, ev); err != nil {
				s.logger.Debug("watcher write failed", zap.String("game_id", gameID), zap.Error(err))
				return
			}
		case <-ticker.C:
			pctx, pcancel := context.WithTimeout(ctx, s.writeTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				return
			}
		}
	}
}

func (s *Server) write(ctx context.Context, conn *websocket.Conn, ev chessdto.GameEvent) error {
	wctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, ev)
}
