package chess

import (
	"context"
	"strings"
	"time"

	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
	"github.com/park285/cheese-chess/internal/store"
	"go.uber.org/zap"
)

// Event types passed to the Publisher.
const (
	EventCreated = "created"
	EventMove    = "move"
	EventUndo    = "undo"
	EventDraw    = "draw"
	EventReset   = "reset"
)

// SessionState is a read-only snapshot of one game.
type SessionState struct {
	ID        string
	Start     corechess.Position
	Position  corechess.Position
	Status    corechess.Status
	Message   string
	Moves     []corechess.Move
	MovesSAN  []string
	LastMove  *corechess.Move
	Material  corechess.MaterialScore
	Captured  corechess.CapturedPieces
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MoveCount is the number of plies played.
func (s *SessionState) MoveCount() int { return len(s.Moves) }

type LegalMove struct {
	Move corechess.Move
	SAN  string
}

type MoveSummary struct {
	State    *SessionState
	Move     corechess.Move
	SAN      string
	Captured corechess.Piece
	// Archived is set when this move finished the game and the result was
	// stored; GameID is then the archive row id.
	Archived bool
	GameID   int64
}

type UndoSummary struct {
	Undone corechess.Ply
	State  *SessionState
}

type HistoryView struct {
	GameID  string
	Verbose bool
	Entries []corechess.HistoryEntry
}

type Event struct {
	Type   string
	GameID string
	SAN    string
	State  *SessionState
}

func (s *Service) snapshot(rec *store.Record, sess *corechess.Session) *SessionState {
	plies := sess.Plies()
	state := &SessionState{
		ID:        rec.ID,
		Start:     sess.StartPosition(),
		Position:  sess.Position(),
		Status:    sess.Status(),
		Moves:     make([]corechess.Move, len(plies)),
		MovesSAN:  make([]string, len(plies)),
		Material:  corechess.Material(sess.Position()),
		Captured:  sess.Captured(),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	for i, ply := range plies {
		state.Moves[i] = ply.Move
		state.MovesSAN[i] = ply.SAN
	}
	if n := len(plies); n > 0 {
		last := plies[n-1].Move
		state.LastMove = &last
	}
	state.Message = s.narrate(state.Status)
	return state
}

// narrate turns a status into the one-line message shown under the board.
func (s *Service) narrate(st corechess.Status) string {
	switch {
	case st.Checkmate:
		return s.catalog.Text("status.checkmate", nil, "Checkmate - Game over.")
	case st.Method == corechess.Stalemate:
		return s.catalog.Text("status.stalemate", nil, "Stalemate - Game over.")
	case st.IsOver():
		reason := s.drawReason(st.Method)
		return s.catalog.Text("status.draw", map[string]any{"Reason": reason}, "Draw - "+reason)
	case st.InCheck:
		return s.catalog.Text("status.check", nil, "You are in check.")
	}
	turn := titleColor(st.Turn)
	if claimable := st.ClaimableDraws(); len(claimable) > 0 {
		reasons := make([]string, len(claimable))
		for i, m := range claimable {
			reasons[i] = s.drawReason(m)
		}
		reason := strings.Join(reasons, ", ")
		return s.catalog.Text("status.claimable", map[string]any{"Turn": turn, "Reason": reason},
			turn+" may claim a draw ("+reason+").")
	}
	return s.catalog.Text("status.to_move", map[string]any{"Turn": turn}, turn+" to move.")
}

func (s *Service) drawReason(m corechess.Method) string {
	fallback := strings.ReplaceAll(m.String(), "_", " ")
	if fallback != "" {
		fallback = strings.ToUpper(fallback[:1]) + fallback[1:]
	}
	return s.catalog.Text("draw_reason."+m.String(), nil, fallback)
}

func titleColor(c corechess.Color) string {
	if c == corechess.White {
		return "White"
	}
	return "Black"
}

// finish archives a finished game once. Failures are logged and the game
// stays playable through Undo and Reset either way.
func (s *Service) finish(ctx context.Context, rec *store.Record, sess *corechess.Session) (*store.Record, int64, bool) {
	if s.archive == nil || rec.Archived || !sess.Status().IsOver() {
		return rec, 0, false
	}
	game := s.archivedGame(rec, sess)
	id, err := s.archive.SaveResult(ctx, game)
	if err != nil {
		s.logger.Warn("failed to archive finished chess game",
			zap.String("game_id", rec.ID),
			zap.String("result", game.Result),
			zap.Error(err),
		)
		return rec, 0, false
	}
	s.logger.Info("chess game archived",
		zap.String("game_id", rec.ID),
		zap.String("archive_game_id", rec.ArchiveKey()),
		zap.Int64("archive_id", id),
		zap.String("result", game.Result),
		zap.String("method", game.ResultMethod),
	)
	updated, err := s.store.Update(ctx, rec.ID, func(r *store.Record) error {
		r.Archived = true
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to mark chess game archived", zap.String("game_id", rec.ID), zap.Error(err))
		return rec, id, true
	}
	return updated, id, true
}

func (s *Service) archivedGame(rec *store.Record, sess *corechess.Session) *domain.ChessGame {
	st := sess.Status()
	ended := s.now()
	history := sess.History(false)
	san := make([]string, len(history))
	for i, e := range history {
		san[i] = e.SAN
	}
	return &domain.ChessGame{
		GameID:       rec.ArchiveKey(),
		StartFEN:     rec.StartFEN,
		FinalFEN:     sess.Position().FEN(),
		Result:       st.Outcome.String(),
		ResultMethod: st.Method.String(),
		MovesUCI:     append([]string(nil), rec.Moves...),
		MovesSAN:     san,
		StartedAt:    rec.CreatedAt,
		EndedAt:      ended,
		Duration:     ended.Sub(rec.CreatedAt),
	}
}
