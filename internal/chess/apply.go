package chess

// Apply plays mv on pos and returns the resulting position. mv must come
// from PseudoLegalMoves or LegalMoves for pos; its flags drive the special
// cases (en passant, castling, double push). pos itself is not modified.
func Apply(pos Position, mv Move) Position {
	next := pos
	us := pos.turn
	moving := next.squares[mv.From]
	captured := next.squares[mv.To]

	next.squares[mv.From] = NoPiece
	if mv.Flags.Has(FlagEnPassant) {
		// The captured pawn sits behind the destination, on the mover's rank.
		behind := NewSquare(mv.To.File(), mv.From.Rank())
		captured = next.squares[behind]
		next.squares[behind] = NoPiece
	}

	placed := moving
	if mv.Promotion != NoPieceType {
		placed = Piece{Type: mv.Promotion, Color: us}
	}
	next.squares[mv.To] = placed

	rank := backRank(us)
	switch {
	case mv.Flags.Has(FlagCastleKingSide):
		next.squares[NewSquare(5, rank)] = next.squares[NewSquare(7, rank)]
		next.squares[NewSquare(7, rank)] = NoPiece
	case mv.Flags.Has(FlagCastleQueenSide):
		next.squares[NewSquare(3, rank)] = next.squares[NewSquare(0, rank)]
		next.squares[NewSquare(0, rank)] = NoPiece
	}

	next.castling &^= rightsTouching(mv.From) | rightsTouching(mv.To)

	next.enPassant = NoSquare
	if mv.Flags.Has(FlagDoublePawnPush) {
		next.enPassant = NewSquare(mv.From.File(), (mv.From.Rank()+mv.To.Rank())/2)
	}

	if moving.Type == Pawn || !captured.IsNone() {
		next.halfmove = 0
	} else {
		next.halfmove++
	}
	if us == Black {
		next.fullmove++
	}
	next.turn = us.Other()
	return next
}

// CapturedBy returns the piece mv removes from pos, or NoPiece.
func CapturedBy(pos Position, mv Move) Piece {
	if mv.Flags.Has(FlagEnPassant) {
		return pos.squares[NewSquare(mv.To.File(), mv.From.Rank())]
	}
	if mv.IsCastle() {
		return NoPiece
	}
	return pos.squares[mv.To]
}
