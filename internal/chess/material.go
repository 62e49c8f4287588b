package chess

// MaterialScore is the summed piece value still on the board per side.
type MaterialScore struct {
	White int
	Black int
}

func (m MaterialScore) Diff() int { return m.White - m.Black }

// Material sums conventional piece values for both sides.
func Material(pos Position) MaterialScore {
	var m MaterialScore
	for _, pc := range pos.squares {
		if pc.IsNone() {
			continue
		}
		if pc.Color == White {
			m.White += pc.Type.Value()
		} else {
			m.Black += pc.Type.Value()
		}
	}
	return m
}

// HasInsufficientMaterial reports whether neither side can possibly mate:
// king vs king, king and one minor piece vs king, or king and bishop vs
// king and bishop with both bishops on the same square colour.
func HasInsufficientMaterial(pos Position) bool {
	var minors [2][]Piece
	var bishopLight [2]bool
	for i, pc := range pos.squares {
		switch pc.Type {
		case NoPieceType, King:
			continue
		case Pawn, Rook, Queen:
			return false
		case Bishop:
			bishopLight[pc.Color] = Square(i).IsLight()
		}
		minors[pc.Color] = append(minors[pc.Color], pc)
		if len(minors[pc.Color]) > 1 {
			return false
		}
	}

	w, b := len(minors[White]), len(minors[Black])
	switch {
	case w == 0 && b == 0:
		return true
	case w+b == 1:
		return true
	case w == 1 && b == 1:
		return minors[White][0].Type == Bishop && minors[Black][0].Type == Bishop &&
			bishopLight[White] == bishopLight[Black]
	default:
		return false
	}
}
