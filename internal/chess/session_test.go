package chess

import (
	"errors"
	"testing"
)

func mustMove(t *testing.T, s *Session, from, to, promo string) *MoveResult {
	t.Helper()
	res, err := s.AttemptMove(from, to, promo)
	if err != nil {
		t.Fatalf("AttemptMove(%s, %s, %q): %v", from, to, promo, err)
	}
	return res
}

func playAll(t *testing.T, s *Session, moves ...string) {
	t.Helper()
	for _, m := range moves {
		if _, err := s.AttemptMoveUCI(m); err != nil {
			t.Fatalf("AttemptMoveUCI(%s): %v", m, err)
		}
	}
}

func TestSessionInitialState(t *testing.T) {
	s := NewSession()
	if got := len(s.LegalMoves()); got != 20 {
		t.Fatalf("legal moves = %d, want 20", got)
	}
	st := s.Status()
	if st.Turn != White || st.IsOver() || st.InCheck {
		t.Fatalf("status = %+v", st)
	}
	if len(s.History(false)) != 0 {
		t.Fatalf("history not empty")
	}
	if got := len(s.LegalMoves(sq(t, "g1"))); got != 2 {
		t.Fatalf("knight moves from g1 = %d, want 2", got)
	}
	if got := len(s.LegalMoves(sq(t, "e4"))); got != 0 {
		t.Fatalf("moves from empty square = %d", got)
	}
}

func TestSessionFoolsMate(t *testing.T) {
	s := NewSession()
	mustMove(t, s, "f2", "f3", "")
	mustMove(t, s, "e7", "e5", "")
	mustMove(t, s, "g2", "g4", "")
	res := mustMove(t, s, "d8", "h4", "")
	if res.SAN != "Qh4#" {
		t.Fatalf("SAN = %q", res.SAN)
	}
	st := s.Status()
	if !st.Checkmate || st.Outcome != BlackWon {
		t.Fatalf("status = %+v", st)
	}
	if len(s.LegalMoves()) != 0 {
		t.Fatalf("legal moves after mate")
	}
	if _, err := s.AttemptMove("e2", "e4", ""); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("move after mate err = %v", err)
	}
}

func TestSessionErrorsLeaveStateUntouched(t *testing.T) {
	s := NewSession()
	mustMove(t, s, "e2", "e4", "")
	before := s.Position().FEN()

	cases := []struct {
		from, to, promo string
		want            error
	}{
		{"z9", "e5", "", ErrInvalidSquare},
		{"e7", "", "", ErrInvalidSquare},
		{"e7", "e5", "k", ErrInvalidPromotionChoice},
		{"e7", "e4", "", ErrIllegalMove},
		{"e4", "e5", "", ErrIllegalMove},
		{"d4", "d5", "", ErrIllegalMove},
		{"e7", "e5", "q", ErrInvalidPromotionChoice},
	}
	for _, tc := range cases {
		_, err := s.AttemptMove(tc.from, tc.to, tc.promo)
		if !errors.Is(err, tc.want) {
			t.Fatalf("AttemptMove(%s, %s, %q) err = %v, want %v", tc.from, tc.to, tc.promo, err, tc.want)
		}
		if s.Position().FEN() != before || s.PlyCount() != 1 {
			t.Fatalf("state changed after rejected move %s%s", tc.from, tc.to)
		}
	}
}

func TestSessionRejectsMoveIntoCheck(t *testing.T) {
	s := NewSessionFrom(MustParseFEN("4k3/4r3/8/8/8/8/4N3/4K3 w - - 0 1"))
	_, err := s.AttemptMove("e2", "c3", "")
	var illegal *IllegalMoveError
	if !errors.As(err, &illegal) {
		t.Fatalf("err = %v, want IllegalMoveError", err)
	}
	if illegal.Reason != "leaves the king in check" {
		t.Fatalf("reason = %q", illegal.Reason)
	}
}

func TestSessionPromotion(t *testing.T) {
	const fen = "8/4P3/8/8/8/2k5/8/4K3 w - - 0 1"

	s := NewSessionFrom(MustParseFEN(fen))
	res := mustMove(t, s, "e7", "e8", "")
	if res.Move.Promotion != Queen || s.Position().Piece(sq(t, "e8")).Type != Queen {
		t.Fatalf("default promotion = %v", res.Move.Promotion)
	}

	s.Reset(MustParseFEN(fen))
	res = mustMove(t, s, "e7", "e8", "n")
	if res.Move.Promotion != Knight || res.SAN != "e8=N" {
		t.Fatalf("underpromotion = %v %q", res.Move.Promotion, res.SAN)
	}
}

func TestSessionEnPassant(t *testing.T) {
	s := NewSession()
	playAll(t, s, "e2e4", "a7a6", "e4e5", "d7d5")
	res := mustMove(t, s, "e5", "d6", "")
	if !res.Move.Flags.Has(FlagEnPassant) {
		t.Fatalf("flags = %v", res.Move.Flags.Names())
	}
	if res.Captured != (Piece{Type: Pawn, Color: Black}) {
		t.Fatalf("captured = %v", res.Captured)
	}
	if !s.Position().Piece(sq(t, "d5")).IsNone() {
		t.Fatalf("d5 still occupied")
	}
	taken := s.Captured()
	if len(taken.ByWhite) != 1 || taken.ByWhite[0] != Pawn || len(taken.ByBlack) != 0 {
		t.Fatalf("captured pieces = %+v", taken)
	}
}

func TestSessionEnPassantExpiresAfterOneMove(t *testing.T) {
	s := NewSession()
	playAll(t, s, "e2e4", "a7a6", "e4e5", "d7d5", "h2h3", "h7h6")
	before := s.Position()
	_, err := s.AttemptMove("e5", "d6", "")
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("late en passant err = %v, want ErrIllegalMove", err)
	}
	if s.Position() != before || s.PlyCount() != 6 {
		t.Fatalf("rejected en passant changed the session")
	}
}

func TestSessionThreefoldIsClaimable(t *testing.T) {
	s := NewSession()
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	playAll(t, s, shuffle...)
	if s.Status().CanClaimThreefold {
		t.Fatalf("threefold after two occurrences")
	}
	playAll(t, s, shuffle...)
	st := s.Status()
	if !st.CanClaimThreefold || st.RepetitionCount != 3 || st.IsOver() {
		t.Fatalf("status = %+v", st)
	}
	if err := s.ClaimDraw(FiftyMoveRule); !errors.Is(err, ErrDrawNotClaimable) {
		t.Fatalf("fifty-move claim err = %v", err)
	}
	if err := s.ClaimDraw(NoMethod); err != nil {
		t.Fatalf("ClaimDraw: %v", err)
	}
	st = s.Status()
	if st.Outcome != Draw || st.Method != ThreefoldRepetition || !st.DrawClaimed {
		t.Fatalf("after claim = %+v", st)
	}
	if len(s.LegalMoves()) != 0 {
		t.Fatalf("moves offered after claimed draw")
	}
}

func TestSessionFivefoldEndsGame(t *testing.T) {
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}

	s := NewSession()
	for i := 0; i < 4; i++ {
		playAll(t, s, shuffle...)
	}
	st := s.Status()
	if st.Outcome != Draw || st.Method != FivefoldRepetition {
		t.Fatalf("status = %+v", st)
	}

	s = NewSession(WithoutAutomaticDraws())
	for i := 0; i < 4; i++ {
		playAll(t, s, shuffle...)
	}
	if st := s.Status(); st.IsOver() || !st.FivefoldRepetition || !st.CanClaimThreefold {
		t.Fatalf("status without automatic draws = %+v", st)
	}
}

func TestSessionFiftyMoveRule(t *testing.T) {
	s := NewSessionFrom(MustParseFEN("4k3/8/8/8/8/8/8/R3K3 w - - 98 80"))
	mustMove(t, s, "a1", "a2", "")
	if s.Status().CanClaimFiftyMove {
		t.Fatalf("claimable at 99 plies")
	}
	mustMove(t, s, "e8", "d8", "")
	st := s.Status()
	if !st.CanClaimFiftyMove || st.IsOver() {
		t.Fatalf("status = %+v", st)
	}
	if err := s.ClaimDraw(FiftyMoveRule); err != nil {
		t.Fatalf("ClaimDraw: %v", err)
	}
	if s.Status().Method != FiftyMoveRule {
		t.Fatalf("method = %s", s.Status().Method)
	}
}

func TestSessionSeventyFiveMoveRule(t *testing.T) {
	s := NewSessionFrom(MustParseFEN("4k3/8/8/8/8/8/8/R3K3 w - - 149 110"))
	mustMove(t, s, "a1", "a2", "")
	if st := s.Status(); st.Method != SeventyFiveMoveRule || st.Outcome != Draw {
		t.Fatalf("status = %+v", st)
	}
}

func TestSessionReset(t *testing.T) {
	s := NewSession()
	playAll(t, s, "e2e4", "e7e5", "g1f3")
	s.Reset()
	if s.PlyCount() != 0 || len(s.History(true)) != 0 {
		t.Fatalf("history survived reset")
	}
	if s.Position().FEN() != StartingFEN {
		t.Fatalf("position = %s", s.Position().FEN())
	}
	if len(s.LegalMoves()) != 20 {
		t.Fatalf("legal moves after reset = %d", len(s.LegalMoves()))
	}
	if s.Status().RepetitionCount != 1 {
		t.Fatalf("repetition count = %d", s.Status().RepetitionCount)
	}
}

func TestSessionHistory(t *testing.T) {
	s := NewSession()
	playAll(t, s, "e2e4", "d7d5", "e4d5")

	brief := s.History(false)
	if len(brief) != 3 {
		t.Fatalf("history len = %d", len(brief))
	}
	if brief[2].SAN != "exd5" || brief[2].Color != White || brief[2].Ply != 3 {
		t.Fatalf("entry = %+v", brief[2])
	}
	if brief[2].FEN != "" || brief[2].Piece != NoPieceType {
		t.Fatalf("brief entry has verbose fields: %+v", brief[2])
	}

	verbose := s.History(true)
	if verbose[2].Piece != Pawn || verbose[2].Captured != Pawn {
		t.Fatalf("verbose entry = %+v", verbose[2])
	}
	if verbose[2].FEN != s.Position().FEN() {
		t.Fatalf("verbose FEN = %q", verbose[2].FEN)
	}
	if verbose[1].Color != Black || verbose[1].Captured != NoPieceType {
		t.Fatalf("verbose entry = %+v", verbose[1])
	}
}

func TestSessionUndo(t *testing.T) {
	s := NewSession()
	if _, err := s.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("undo on empty game err = %v", err)
	}
	playAll(t, s, "g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8")
	if err := s.ClaimDraw(ThreefoldRepetition); err != nil {
		t.Fatalf("ClaimDraw: %v", err)
	}
	ply, err := s.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if ply.Move.String() != "f6g8" {
		t.Fatalf("undone move = %s", ply.Move)
	}
	st := s.Status()
	if st.IsOver() || st.DrawClaimed || st.RepetitionCount != 2 {
		t.Fatalf("status after undo = %+v", st)
	}
	if s.Position().Turn() != Black {
		t.Fatalf("turn = %s", s.Position().Turn())
	}
}
