package store

import (
	"fmt"
	"time"

	corechess "github.com/park285/cheese-chess/internal/chess"
)

// Record is the persisted form of a game: where it started and the moves
// played since. The session is rebuilt by replaying the moves, so the
// engine's own types never reach the wire.
type Record struct {
	ID        string    `json:"id"`
	// ArchiveID keys the archived result of the current game on this board.
	// It changes on every reset so earlier results are kept.
	ArchiveID string    `json:"archive_id,omitempty"`
	StartFEN  string    `json:"start_fen"`
	Moves     []string  `json:"moves"`
	Claimed   string    `json:"claimed,omitempty"`
	AutoDraws bool      `json:"auto_draws"`
	Archived  bool      `json:"archived,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRecord snapshots s under id.
func NewRecord(id string, s *corechess.Session, autoDraws bool, now time.Time) *Record {
	rec := &Record{ID: id, ArchiveID: id, AutoDraws: autoDraws, CreatedAt: now, UpdatedAt: now}
	rec.Capture(s)
	return rec
}

// Capture copies the start position, moves and draw claim of s.
func (r *Record) Capture(s *corechess.Session) {
	r.StartFEN = s.StartPosition().FEN()
	moves := s.Moves()
	r.Moves = make([]string, len(moves))
	for i, mv := range moves {
		r.Moves[i] = mv.String()
	}
	r.Claimed = ""
	if st := s.Status(); st.DrawClaimed {
		r.Claimed = st.Method.String()
	}
}

// Session replays the record into a live session.
func (r *Record) Session() (*corechess.Session, error) {
	start, err := corechess.ParseFEN(r.StartFEN)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", r.ID, err)
	}
	var opts []corechess.SessionOption
	if !r.AutoDraws {
		opts = append(opts, corechess.WithoutAutomaticDraws())
	}
	s := corechess.NewSessionFrom(start, opts...)
	for i, mv := range r.Moves {
		if _, err := s.AttemptMoveUCI(mv); err != nil {
			return nil, fmt.Errorf("game %s: replay ply %d (%s): %w", r.ID, i+1, mv, err)
		}
	}
	if r.Claimed != "" {
		method, ok := corechess.ParseMethod(r.Claimed)
		if !ok {
			return nil, fmt.Errorf("game %s: unknown draw claim %q", r.ID, r.Claimed)
		}
		if err := s.ClaimDraw(method); err != nil {
			return nil, fmt.Errorf("game %s: %w", r.ID, err)
		}
	}
	return s, nil
}

// ArchiveKey is the archive game ID for the current game. Records written
// before ArchiveID existed fall back to the board ID.
func (r *Record) ArchiveKey() string {
	if r.ArchiveID != "" {
		return r.ArchiveID
	}
	return r.ID
}

func (r *Record) clone() *Record {
	c := *r
	c.Moves = append([]string(nil), r.Moves...)
	return &c
}
