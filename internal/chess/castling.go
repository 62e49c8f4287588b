package chess

// CastlingRights holds the four independent castling permissions.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

func (c CastlingRights) Has(r CastlingRights) bool { return c&r == r }

func (c CastlingRights) String() string {
	if c == NoCastling {
		return "-"
	}
	b := make([]byte, 0, 4)
	if c.Has(WhiteKingSide) {
		b = append(b, 'K')
	}
	if c.Has(WhiteQueenSide) {
		b = append(b, 'Q')
	}
	if c.Has(BlackKingSide) {
		b = append(b, 'k')
	}
	if c.Has(BlackQueenSide) {
		b = append(b, 'q')
	}
	return string(b)
}

func kingSideRight(c Color) CastlingRights {
	if c == White {
		return WhiteKingSide
	}
	return BlackKingSide
}

func queenSideRight(c Color) CastlingRights {
	if c == White {
		return WhiteQueenSide
	}
	return BlackQueenSide
}

func backRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

// rightsTouching lists the rights lost when a move leaves from or lands on sq.
// Covers king moves, rook moves and captures on a rook's home square.
func rightsTouching(sq Square) CastlingRights {
	switch sq {
	case NewSquare(4, 0):
		return WhiteKingSide | WhiteQueenSide
	case NewSquare(7, 0):
		return WhiteKingSide
	case NewSquare(0, 0):
		return WhiteQueenSide
	case NewSquare(4, 7):
		return BlackKingSide | BlackQueenSide
	case NewSquare(7, 7):
		return BlackKingSide
	case NewSquare(0, 7):
		return BlackQueenSide
	default:
		return NoCastling
	}
}
