package chess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/render"
	"github.com/park285/cheese-chess/internal/repository"
	"github.com/park285/cheese-chess/internal/store"
	"go.uber.org/zap"
)

var (
	ErrGameNotFound        = errors.New("chess game not found")
	ErrRendererUnavailable = errors.New("board renderer unavailable")
	ErrUnknownDrawReason   = errors.New("unknown draw reason")
)

const (
	// DefaultGameID is the game behind the single-board routes. It is
	// created on first use.
	DefaultGameID = "default"

	defaultHistoryLimit = 20
	maxHistoryLimit     = 50
)

type Config struct {
	AutoDraws    bool
	HistoryLimit int
}

// BoardRenderer draws a position as PNG.
type BoardRenderer interface {
	RenderPNG(ctx context.Context, pos corechess.Position, opts render.Options) ([]byte, error)
}

// Publisher receives an event after every committed change to a game.
type Publisher interface {
	Publish(ev Event)
}

type Service struct {
	store     store.Store
	archive   repository.Archive
	catalog   *msgcat.Catalog
	renderer  BoardRenderer
	publisher Publisher
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the game service. archive, renderer and catalog may be
// nil: finished games are then not archived, BoardPNG fails with
// ErrRendererUnavailable and messages fall back to built-in English.
func NewService(st store.Store, archive repository.Archive, catalog *msgcat.Catalog, renderer BoardRenderer, cfg Config, logger *zap.Logger, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("game store is required")
	}
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > maxHistoryLimit {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:    st,
		archive:  archive,
		catalog:  catalog,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewGame starts a game from startFEN, or from the initial position when
// startFEN is blank.
func (s *Service) NewGame(ctx context.Context, startFEN string) (*SessionState, error) {
	start, err := parseStart(startFEN)
	if err != nil {
		return nil, err
	}
	sess := corechess.NewSessionFrom(start, s.sessionOptions()...)
	rec := store.NewRecord(s.newID(), sess, s.cfg.AutoDraws, s.now())
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	state := s.snapshot(rec, sess)
	s.logger.Info("chess game created",
		zap.String("game_id", rec.ID),
		zap.String("start_fen", rec.StartFEN),
	)
	s.publish(EventCreated, "", state)
	return state, nil
}

func (s *Service) State(ctx context.Context, id string) (*SessionState, error) {
	rec, sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(rec, sess), nil
}

// LegalMoves lists the legal moves of the side to move, optionally only those
// leaving from.
func (s *Service) LegalMoves(ctx context.Context, id, from string) ([]LegalMove, error) {
	var filter []corechess.Square
	if strings.TrimSpace(from) != "" {
		sq, err := corechess.ParseSquare(from)
		if err != nil {
			return nil, err
		}
		filter = append(filter, sq)
	}
	_, sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	pos := sess.Position()
	moves := sess.LegalMoves(filter...)
	out := make([]LegalMove, len(moves))
	for i, mv := range moves {
		out[i] = LegalMove{Move: mv, SAN: corechess.SAN(pos, mv)}
	}
	return out, nil
}

// Move validates and plays from-to with an optional promotion choice. The
// stored game is untouched when the move is rejected.
func (s *Service) Move(ctx context.Context, id, from, to, promotion string) (*MoveSummary, error) {
	var (
		sess   *corechess.Session
		result *corechess.MoveResult
	)
	rec, err := s.update(ctx, id, func(rec *store.Record) error {
		var err error
		if sess, err = rec.Session(); err != nil {
			return err
		}
		if result, err = sess.AttemptMove(from, to, promotion); err != nil {
			return err
		}
		rec.Capture(sess)
		return nil
	})
	if err != nil {
		s.logger.Debug("chess move rejected",
			zap.String("game_id", id),
			zap.String("from", from),
			zap.String("to", to),
			zap.String("promotion", promotion),
			zap.Error(err),
		)
		return nil, err
	}

	summary := &MoveSummary{
		Move:     result.Move,
		SAN:      result.SAN,
		Captured: result.Captured,
	}
	s.logger.Info("chess move",
		zap.String("game_id", rec.ID),
		zap.String("uci", result.Move.String()),
		zap.String("san", result.SAN),
		zap.String("outcome", result.Status.Outcome.String()),
	)
	if result.Status.IsOver() {
		rec, summary.GameID, summary.Archived = s.finish(ctx, rec, sess)
	}
	summary.State = s.snapshot(rec, sess)
	s.publish(EventMove, result.SAN, summary.State)
	return summary, nil
}

// Reset restarts the game from startFEN, or from the initial position when
// startFEN is blank, dropping its history.
func (s *Service) Reset(ctx context.Context, id, startFEN string) (*SessionState, error) {
	start, err := parseStart(startFEN)
	if err != nil {
		return nil, err
	}
	var sess *corechess.Session
	rec, err := s.update(ctx, id, func(rec *store.Record) error {
		sess = corechess.NewSessionFrom(start, s.sessionOptions()...)
		rec.AutoDraws = s.cfg.AutoDraws
		rec.Archived = false
		rec.ArchiveID = s.newID()
		rec.CreatedAt = s.now()
		rec.Capture(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	state := s.snapshot(rec, sess)
	s.logger.Info("chess game reset", zap.String("game_id", rec.ID), zap.String("start_fen", rec.StartFEN))
	s.publish(EventReset, "", state)
	return state, nil
}

// ClaimDraw ends the game by threefold repetition or the fifty-move rule.
// An empty reason claims whichever of the two is available.
func (s *Service) ClaimDraw(ctx context.Context, id, reason string) (*SessionState, error) {
	method := corechess.NoMethod
	if r := strings.ToLower(strings.TrimSpace(reason)); r != "" {
		m, ok := corechess.ParseMethod(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDrawReason, reason)
		}
		method = m
	}
	var sess *corechess.Session
	rec, err := s.update(ctx, id, func(rec *store.Record) error {
		var err error
		if sess, err = rec.Session(); err != nil {
			return err
		}
		if err := sess.ClaimDraw(method); err != nil {
			return err
		}
		rec.Capture(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("chess draw claimed",
		zap.String("game_id", rec.ID),
		zap.String("method", sess.Status().Method.String()),
	)
	rec, _, _ = s.finish(ctx, rec, sess)
	state := s.snapshot(rec, sess)
	s.publish(EventDraw, "", state)
	return state, nil
}

// Undo takes back the last ply.
func (s *Service) Undo(ctx context.Context, id string) (*UndoSummary, error) {
	var (
		sess *corechess.Session
		ply  corechess.Ply
	)
	rec, err := s.update(ctx, id, func(rec *store.Record) error {
		var err error
		if sess, err = rec.Session(); err != nil {
			return err
		}
		if ply, err = sess.Undo(); err != nil {
			return err
		}
		rec.Capture(sess)
		rec.Archived = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	state := s.snapshot(rec, sess)
	s.logger.Info("chess move undone", zap.String("game_id", rec.ID), zap.String("uci", ply.Move.String()))
	s.publish(EventUndo, ply.SAN, state)
	return &UndoSummary{Undone: ply, State: state}, nil
}

func (s *Service) History(ctx context.Context, id string, verbose bool) (*HistoryView, error) {
	rec, sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &HistoryView{GameID: rec.ID, Verbose: verbose, Entries: sess.History(verbose)}, nil
}

// BoardPNG renders the current position with the last move highlighted.
func (s *Service) BoardPNG(ctx context.Context, id string, flip bool) ([]byte, error) {
	if s.renderer == nil {
		return nil, ErrRendererUnavailable
	}
	_, sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	opts := render.Options{Flip: flip}
	if moves := sess.Moves(); len(moves) > 0 {
		last := moves[len(moves)-1]
		opts.LastMove = &last
	}
	opts.InCheck = sess.Status().InCheck
	png, err := s.renderer.RenderPNG(ctx, sess.Position(), opts)
	if err != nil {
		return nil, fmt.Errorf("render board: %w", err)
	}
	return png, nil
}

// List returns the most recently updated games.
func (s *Service) List(ctx context.Context, limit int) ([]*SessionState, error) {
	recs, err := s.store.List(ctx, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	out := make([]*SessionState, 0, len(recs))
	for _, rec := range recs {
		sess, err := rec.Session()
		if err != nil {
			s.logger.Warn("skipping unreadable chess game", zap.String("game_id", rec.ID), zap.Error(err))
			continue
		}
		out = append(out, s.snapshot(rec, sess))
	}
	return out, nil
}

// Archive lists recently finished games, newest first. Without an archive
// the list is empty.
func (s *Service) Archive(ctx context.Context, limit int) ([]*domain.ChessGame, error) {
	if s.archive == nil {
		return []*domain.ChessGame{}, nil
	}
	games, err := s.archive.RecentGames(ctx, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("load archive: %w", err)
	}
	return games, nil
}

func (s *Service) ArchivedGame(ctx context.Context, gameID string) (*domain.ChessGame, error) {
	if s.archive == nil {
		return nil, ErrGameNotFound
	}
	g, err := s.archive.GameByID(ctx, strings.TrimSpace(gameID))
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil, ErrGameNotFound
	}
	return g, err
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.HistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}

func (s *Service) sessionOptions() []corechess.SessionOption {
	if s.cfg.AutoDraws {
		return nil
	}
	return []corechess.SessionOption{corechess.WithoutAutomaticDraws()}
}

func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultGameID
	}
	return id
}

// load reads and replays a game. The default game is created on demand.
func (s *Service) load(ctx context.Context, id string) (*store.Record, *corechess.Session, error) {
	id = normalizeID(id)
	if err := s.ensureDefault(ctx, id); err != nil {
		return nil, nil, err
	}
	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, nil, mapStoreError(err)
	}
	sess, err := rec.Session()
	if err != nil {
		return nil, nil, fmt.Errorf("restore game: %w", err)
	}
	return rec, sess, nil
}

func (s *Service) update(ctx context.Context, id string, fn func(*store.Record) error) (*store.Record, error) {
	id = normalizeID(id)
	if err := s.ensureDefault(ctx, id); err != nil {
		return nil, err
	}
	rec, err := s.store.Update(ctx, id, func(rec *store.Record) error {
		if err := fn(rec); err != nil {
			return err
		}
		rec.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return rec, nil
}

func (s *Service) ensureDefault(ctx context.Context, id string) error {
	if id != DefaultGameID {
		return nil
	}
	if _, err := s.store.Load(ctx, id); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load default game: %w", err)
	}
	rec := store.NewRecord(id, corechess.NewSession(s.sessionOptions()...), s.cfg.AutoDraws, s.now())
	if err := s.store.Create(ctx, rec); err != nil && !errors.Is(err, store.ErrExists) {
		return fmt.Errorf("create default game: %w", err)
	}
	return nil
}

func mapStoreError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrGameNotFound, err)
	}
	return err
}

func parseStart(fen string) (corechess.Position, error) {
	if strings.TrimSpace(fen) == "" {
		return corechess.StartingPosition(), nil
	}
	return corechess.ParseFEN(fen)
}

func (s *Service) publish(kind, san string, state *SessionState) {
	if s.publisher == nil || state == nil {
		return
	}
	s.publisher.Publish(Event{Type: kind, GameID: state.ID, SAN: san, State: state})
}
