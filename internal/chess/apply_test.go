package chess

import "testing"

func findMove(t *testing.T, pos Position, uci string) Move {
	t.Helper()
	for _, mv := range LegalMoves(pos) {
		if mv.String() == uci {
			return mv
		}
	}
	t.Fatalf("move %s not legal in %s", uci, pos.FEN())
	return Move{}
}

func sq(t *testing.T, name string) Square {
	t.Helper()
	s, err := ParseSquare(name)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", name, err)
	}
	return s
}

func TestApplyDoublePushSetsEnPassantTarget(t *testing.T) {
	pos := Apply(StartingPosition(), findMove(t, StartingPosition(), "e2e4"))
	if pos.EnPassant() != sq(t, "e3") {
		t.Fatalf("en passant = %s, want e3", pos.EnPassant())
	}
	if pos.Turn() != Black || pos.FullmoveNumber() != 1 {
		t.Fatalf("turn=%s fullmove=%d", pos.Turn(), pos.FullmoveNumber())
	}
	pos = Apply(pos, findMove(t, pos, "g8f6"))
	if pos.EnPassant() != NoSquare {
		t.Fatalf("en passant target must be cleared, got %s", pos.EnPassant())
	}
	if pos.FullmoveNumber() != 2 || pos.HalfmoveClock() != 1 {
		t.Fatalf("fullmove=%d halfmove=%d", pos.FullmoveNumber(), pos.HalfmoveClock())
	}
}

func TestApplyEnPassantRemovesPawnBehind(t *testing.T) {
	pos := MustParseFEN("rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	mv := findMove(t, pos, "e5f6")
	if got := CapturedBy(pos, mv); got != (Piece{Type: Pawn, Color: Black}) {
		t.Fatalf("CapturedBy = %v", got)
	}
	next := Apply(pos, mv)
	if !next.Piece(sq(t, "f5")).IsNone() {
		t.Fatalf("captured pawn still on f5")
	}
	if next.Piece(sq(t, "f6")) != (Piece{Type: Pawn, Color: White}) {
		t.Fatalf("f6 = %v", next.Piece(sq(t, "f6")))
	}
	if !next.Piece(sq(t, "e5")).IsNone() {
		t.Fatalf("e5 not vacated")
	}
	if next.HalfmoveClock() != 0 {
		t.Fatalf("halfmove = %d", next.HalfmoveClock())
	}
}

func TestApplyCastlingMovesRook(t *testing.T) {
	pos := MustParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	short := Apply(pos, findMove(t, pos, "e1g1"))
	if short.Piece(sq(t, "f1")) != (Piece{Type: Rook, Color: White}) || !short.Piece(sq(t, "h1")).IsNone() {
		t.Fatalf("king side rook not moved:\n%s", short)
	}
	if short.Castling() != BlackKingSide|BlackQueenSide {
		t.Fatalf("castling = %s", short.Castling())
	}

	long := Apply(short, findMove(t, short, "e8c8"))
	if long.Piece(sq(t, "d8")) != (Piece{Type: Rook, Color: Black}) || !long.Piece(sq(t, "a8")).IsNone() {
		t.Fatalf("queen side rook not moved:\n%s", long)
	}
	if long.Castling() != NoCastling {
		t.Fatalf("castling = %s", long.Castling())
	}
}

func TestApplyRookMovesAndCapturesDropRights(t *testing.T) {
	pos := MustParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	next := Apply(pos, findMove(t, pos, "a1a2"))
	if next.Castling() != WhiteKingSide|BlackKingSide|BlackQueenSide {
		t.Fatalf("after a1a2 castling = %s", next.Castling())
	}
	next = Apply(pos, findMove(t, pos, "h1h8"))
	if next.Castling() != WhiteQueenSide|BlackQueenSide {
		t.Fatalf("after h1xh8 castling = %s", next.Castling())
	}
}

func TestApplyPromotion(t *testing.T) {
	pos := MustParseFEN("8/4P3/8/8/8/2k5/8/4K3 w - - 5 40")
	next := Apply(pos, findMove(t, pos, "e7e8n"))
	if next.Piece(sq(t, "e8")) != (Piece{Type: Knight, Color: White}) {
		t.Fatalf("e8 = %v", next.Piece(sq(t, "e8")))
	}
	if next.HalfmoveClock() != 0 {
		t.Fatalf("halfmove = %d", next.HalfmoveClock())
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	pos := StartingPosition()
	before := pos.FEN()
	_ = Apply(pos, findMove(t, pos, "g1f3"))
	if pos.FEN() != before {
		t.Fatalf("input position changed")
	}
}
