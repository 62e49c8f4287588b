package chess

import "slices"

type delta struct{ df, dr int }

var (
	knightDeltas = []delta{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDeltas   = []delta{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	bishopDeltas = []delta{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDeltas   = []delta{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	queenDeltas  = append(append([]delta{}, rookDeltas...), bishopDeltas...)

	promotionChoices = []PieceType{Queen, Rook, Bishop, Knight}
)

// PseudoLegalMoves generates every geometrically valid move for the side to
// move, ignoring whether the mover's own king is left in check. Castling is
// the exception: it is only produced when the king is not in check and does
// not cross or land on an attacked square.
func PseudoLegalMoves(pos Position) []Move {
	moves := make([]Move, 0, 64)
	for i, pc := range pos.squares {
		if pc.IsNone() || pc.Color != pos.turn {
			continue
		}
		from := Square(i)
		switch pc.Type {
		case Pawn:
			moves = pos.appendPawnMoves(moves, from)
		case Knight:
			moves = pos.appendStepMoves(moves, from, knightDeltas)
		case Bishop:
			moves = pos.appendSlideMoves(moves, from, bishopDeltas)
		case Rook:
			moves = pos.appendSlideMoves(moves, from, rookDeltas)
		case Queen:
			moves = pos.appendSlideMoves(moves, from, queenDeltas)
		case King:
			moves = pos.appendStepMoves(moves, from, kingDeltas)
			moves = pos.appendCastles(moves, from)
		}
	}
	return moves
}

// LegalMoves returns the pseudo-legal moves that do not leave the mover's
// king attacked, ordered by origin, destination and promotion piece.
func LegalMoves(pos Position) []Move {
	pseudo := PseudoLegalMoves(pos)
	legal := make([]Move, 0, len(pseudo))
	for _, mv := range pseudo {
		if Apply(pos, mv).kingAttacked(pos.turn) {
			continue
		}
		legal = append(legal, mv)
	}
	slices.SortFunc(legal, compareMoves)
	return legal
}

// HasLegalMove is LegalMoves(pos) != empty without building the full list.
func HasLegalMove(pos Position) bool {
	for _, mv := range PseudoLegalMoves(pos) {
		if !Apply(pos, mv).kingAttacked(pos.turn) {
			return true
		}
	}
	return false
}

func (p Position) appendStepMoves(moves []Move, from Square, deltas []delta) []Move {
	for _, d := range deltas {
		to, ok := offset(from, d.df, d.dr)
		if !ok {
			continue
		}
		target := p.squares[to]
		switch {
		case target.IsNone():
			moves = append(moves, Move{From: from, To: to})
		case target.Color != p.turn:
			moves = append(moves, Move{From: from, To: to, Flags: FlagCapture})
		}
	}
	return moves
}

func (p Position) appendSlideMoves(moves []Move, from Square, deltas []delta) []Move {
	for _, d := range deltas {
		to := from
		for {
			var ok bool
			to, ok = offset(to, d.df, d.dr)
			if !ok {
				break
			}
			target := p.squares[to]
			if target.IsNone() {
				moves = append(moves, Move{From: from, To: to})
				continue
			}
			if target.Color != p.turn {
				moves = append(moves, Move{From: from, To: to, Flags: FlagCapture})
			}
			break
		}
	}
	return moves
}

func (p Position) appendPawnMoves(moves []Move, from Square) []Move {
	dir, startRank, lastRank := 1, 1, 7
	if p.turn == Black {
		dir, startRank, lastRank = -1, 6, 0
	}

	if one, ok := offset(from, 0, dir); ok && p.squares[one].IsNone() {
		moves = appendPawnMove(moves, from, one, lastRank, 0)
		if from.Rank() == startRank {
			if two, ok := offset(from, 0, 2*dir); ok && p.squares[two].IsNone() {
				moves = append(moves, Move{From: from, To: two, Flags: FlagDoublePawnPush})
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		to, ok := offset(from, df, dir)
		if !ok {
			continue
		}
		target := p.squares[to]
		switch {
		case !target.IsNone() && target.Color != p.turn:
			moves = appendPawnMove(moves, from, to, lastRank, FlagCapture)
		case target.IsNone() && to == p.enPassant:
			moves = append(moves, Move{From: from, To: to, Flags: FlagCapture | FlagEnPassant})
		}
	}
	return moves
}

func appendPawnMove(moves []Move, from, to Square, lastRank int, flags MoveFlags) []Move {
	if to.Rank() != lastRank {
		return append(moves, Move{From: from, To: to, Flags: flags})
	}
	for _, promo := range promotionChoices {
		moves = append(moves, Move{From: from, To: to, Promotion: promo, Flags: flags | FlagPromotion})
	}
	return moves
}

func (p Position) appendCastles(moves []Move, from Square) []Move {
	us := p.turn
	rank := backRank(us)
	if from != NewSquare(4, rank) {
		return moves
	}
	them := us.Other()
	rook := Piece{Type: Rook, Color: us}

	canCastle := func(right CastlingRights, rookFile int, between []int, path []int) bool {
		if !p.castling.Has(right) || p.squares[NewSquare(rookFile, rank)] != rook {
			return false
		}
		for _, f := range between {
			if !p.squares[NewSquare(f, rank)].IsNone() {
				return false
			}
		}
		for _, f := range path {
			if IsSquareAttacked(p, NewSquare(f, rank), them) {
				return false
			}
		}
		return true
	}

	if !p.castling.Has(kingSideRight(us)) && !p.castling.Has(queenSideRight(us)) {
		return moves
	}
	if IsSquareAttacked(p, from, them) {
		return moves
	}
	if canCastle(kingSideRight(us), 7, []int{5, 6}, []int{5, 6}) {
		moves = append(moves, Move{From: from, To: NewSquare(6, rank), Flags: FlagCastleKingSide})
	}
	if canCastle(queenSideRight(us), 0, []int{1, 2, 3}, []int{3, 2}) {
		moves = append(moves, Move{From: from, To: NewSquare(2, rank), Flags: FlagCastleQueenSide})
	}
	return moves
}
