package chess

// IsSquareAttacked reports whether any piece of color by attacks sq. It works
// from piece geometry alone and never consults move legality, so it can be
// used inside the legality filter itself.
func IsSquareAttacked(pos Position, sq Square, by Color) bool {
	// A pawn of color by attacks sq from one rank behind it.
	pawnDir := -1
	if by == Black {
		pawnDir = 1
	}
	for _, df := range [2]int{-1, 1} {
		if from, ok := offset(sq, df, pawnDir); ok && pos.squares[from] == (Piece{Type: Pawn, Color: by}) {
			return true
		}
	}

	for _, d := range knightDeltas {
		if from, ok := offset(sq, d.df, d.dr); ok && pos.squares[from] == (Piece{Type: Knight, Color: by}) {
			return true
		}
	}
	for _, d := range kingDeltas {
		if from, ok := offset(sq, d.df, d.dr); ok && pos.squares[from] == (Piece{Type: King, Color: by}) {
			return true
		}
	}

	return rayHits(pos, sq, by, rookDeltas, Rook) || rayHits(pos, sq, by, bishopDeltas, Bishop)
}

// rayHits walks each direction from sq to the first occupied square and
// checks for a slider of color by (the given kind or a queen).
func rayHits(pos Position, sq Square, by Color, deltas []delta, kind PieceType) bool {
	for _, d := range deltas {
		cur := sq
		for {
			var ok bool
			cur, ok = offset(cur, d.df, d.dr)
			if !ok {
				break
			}
			pc := pos.squares[cur]
			if pc.IsNone() {
				continue
			}
			if pc.Color == by && (pc.Type == kind || pc.Type == Queen) {
				return true
			}
			break
		}
	}
	return false
}
