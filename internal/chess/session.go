package chess

import "fmt"

// Session owns one game: the current position and the plies that led to it.
// It is the only mutable type in the package and changes state solely
// through AttemptMove, Play, ClaimDraw, Undo and Reset. A Session performs no
// locking; callers that share one across goroutines must serialise access.
type Session struct {
	start          Position
	pos            Position
	plies          []Ply
	seen           map[string]int
	claimed        Method
	status         Status
	automaticDraws bool
}

// Ply is one applied move together with the position it produced.
type Ply struct {
	Move     Move
	SAN      string
	Moved    Piece
	Captured Piece
	Position Position
}

// MoveResult is returned by a successful AttemptMove.
type MoveResult struct {
	Move     Move
	SAN      string
	Captured Piece
	Position Position
	Status   Status
}

type SessionOption func(*Session)

// WithoutAutomaticDraws keeps fivefold repetition and the seventy-five-move
// rule from ending the game; they are still reported in Status.
func WithoutAutomaticDraws() SessionOption {
	return func(s *Session) { s.automaticDraws = false }
}

// NewSession starts a game from the standard initial position.
func NewSession(opts ...SessionOption) *Session {
	return NewSessionFrom(StartingPosition(), opts...)
}

// NewSessionFrom starts a game from start. A zero Position means the
// standard initial position.
func NewSessionFrom(start Position, opts ...SessionOption) *Session {
	s := &Session{automaticDraws: true}
	for _, opt := range opts {
		opt(s)
	}
	if start.IsZero() {
		start = StartingPosition()
	}
	s.reset(start)
	return s
}

func (s *Session) reset(start Position) {
	s.start = start
	s.pos = start
	s.plies = nil
	s.seen = map[string]int{start.Key(): 1}
	s.claimed = NoMethod
	s.status = s.evaluate()
}

// Reset replaces the game with the initial position, or with start when
// given, and clears the history.
func (s *Session) Reset(start ...Position) {
	pos := StartingPosition()
	if len(start) > 0 && !start[0].IsZero() {
		pos = start[0]
	}
	s.reset(pos)
}

func (s *Session) Position() Position { return s.pos }
func (s *Session) StartPosition() Position { return s.start }
func (s *Session) Status() Status { return s.status }
func (s *Session) PlyCount() int { return len(s.plies) }

// LegalMoves lists the legal moves of the side to move, optionally only
// those leaving from. The list is empty once the game is over.
func (s *Session) LegalMoves(from ...Square) []Move {
	if s.status.IsOver() {
		return []Move{}
	}
	moves := LegalMoves(s.pos)
	if len(from) == 0 {
		return moves
	}
	filtered := moves[:0]
	for _, mv := range moves {
		if mv.From == from[0] {
			filtered = append(filtered, mv)
		}
	}
	return filtered
}

// AttemptMove validates and applies a move given in algebraic squares, with
// an optional promotion choice ("q", "r", "b", "n" or ""). A pawn reaching
// the last rank without a choice promotes to DefaultPromotion (a queen).
// On any error the session is left exactly as it was.
func (s *Session) AttemptMove(from, to, promotion string) (*MoveResult, error) {
	fromSq, err := ParseSquare(from)
	if err != nil {
		return nil, err
	}
	toSq, err := ParseSquare(to)
	if err != nil {
		return nil, err
	}
	promo, err := ParsePromotion(promotion)
	if err != nil {
		return nil, err
	}
	return s.attempt(fromSq, toSq, promo)
}

// AttemptMoveUCI is AttemptMove for long algebraic input such as "e7e8n".
func (s *Session) AttemptMoveUCI(text string) (*MoveResult, error) {
	from, to, promo, err := ParseUCI(text)
	if err != nil {
		return nil, err
	}
	return s.attempt(from, to, promo)
}

// Play applies a move taken from LegalMoves.
func (s *Session) Play(mv Move) (*MoveResult, error) {
	return s.attempt(mv.From, mv.To, mv.Promotion)
}

func (s *Session) attempt(from, to Square, promo PieceType) (*MoveResult, error) {
	illegal := func(reason string) error {
		return &IllegalMoveError{From: from, To: to, Promotion: promo, Reason: reason}
	}
	if s.status.IsOver() {
		return nil, illegal("game is over")
	}
	moved := s.pos.Piece(from)
	if moved.IsNone() {
		return nil, illegal("no piece on " + from.String())
	}
	if moved.Color != s.pos.turn {
		return nil, illegal(s.pos.turn.String() + " to move")
	}

	legal := LegalMoves(s.pos)
	var candidates []Move
	for _, mv := range legal {
		if mv.From == from && mv.To == to {
			candidates = append(candidates, mv)
		}
	}
	if len(candidates) == 0 {
		if s.isPseudoLegal(from, to) {
			return nil, illegal("leaves the king in check")
		}
		return nil, illegal("")
	}

	chosen := candidates[0]
	if chosen.Flags.Has(FlagPromotion) {
		want := promo
		if want == NoPieceType {
			want = DefaultPromotion
		}
		for _, mv := range candidates {
			if mv.Promotion == want {
				chosen = mv
			}
		}
		if chosen.Promotion != want {
			return nil, fmt.Errorf("%w: cannot promote to %s", ErrInvalidPromotionChoice, want)
		}
	} else if promo != NoPieceType {
		return nil, fmt.Errorf("%w: %s%s is not a promotion", ErrInvalidPromotionChoice, from, to)
	}

	ply := Ply{
		Move:     chosen,
		SAN:      encodeSAN(s.pos, chosen, legal),
		Moved:    moved,
		Captured: CapturedBy(s.pos, chosen),
		Position: Apply(s.pos, chosen),
	}
	s.plies = append(s.plies, ply)
	s.pos = ply.Position
	s.seen[s.pos.Key()]++
	s.status = s.evaluate()

	return &MoveResult{
		Move:     ply.Move,
		SAN:      ply.SAN,
		Captured: ply.Captured,
		Position: ply.Position,
		Status:   s.status,
	}, nil
}

func (s *Session) isPseudoLegal(from, to Square) bool {
	for _, mv := range PseudoLegalMoves(s.pos) {
		if mv.From == from && mv.To == to {
			return true
		}
	}
	return false
}

// ClaimDraw ends the game by a claimable draw. NoMethod claims whichever
// draw is available, threefold repetition first.
func (s *Session) ClaimDraw(method Method) error {
	if s.status.IsOver() {
		return fmt.Errorf("%w: game is over", ErrDrawNotClaimable)
	}
	claimable := s.status.ClaimableDraws()
	if len(claimable) == 0 {
		return ErrDrawNotClaimable
	}
	if method == NoMethod {
		method = claimable[0]
	}
	for _, m := range claimable {
		if m == method {
			s.claimed = method
			s.status = s.evaluate()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrDrawNotClaimable, method)
}

// Undo takes back the last ply and any draw claim made after it.
func (s *Session) Undo() (Ply, error) {
	if len(s.plies) == 0 {
		return Ply{}, ErrNothingToUndo
	}
	last := s.plies[len(s.plies)-1]
	key := last.Position.Key()
	if s.seen[key]--; s.seen[key] <= 0 {
		delete(s.seen, key)
	}
	s.plies = s.plies[:len(s.plies)-1]
	s.pos = s.start
	if n := len(s.plies); n > 0 {
		s.pos = s.plies[n-1].Position
	}
	s.claimed = NoMethod
	s.status = s.evaluate()
	return last, nil
}

func (s *Session) evaluate() Status {
	st := Evaluate(s.pos, s.seen[s.pos.Key()], s.automaticDraws)
	if s.claimed != NoMethod && !st.IsOver() {
		st.Outcome = Draw
		st.Method = s.claimed
		st.DrawClaimed = true
	}
	return st
}
