package chess

// HistoryEntry describes one ply of the game. Piece, Captured and FEN are
// only filled in for verbose history.
type HistoryEntry struct {
	Ply      int
	Color    Color
	Move     Move
	SAN      string
	Piece    PieceType
	Captured PieceType
	FEN      string
}

// History lists the plies played so far, oldest first.
func (s *Session) History(verbose bool) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(s.plies))
	for i, ply := range s.plies {
		e := HistoryEntry{
			Ply:   i + 1,
			Color: ply.Moved.Color,
			Move:  ply.Move,
			SAN:   ply.SAN,
		}
		if verbose {
			e.Piece = ply.Moved.Type
			e.Captured = ply.Captured.Type
			e.FEN = ply.Position.FEN()
		}
		out = append(out, e)
	}
	return out
}

// Moves returns the applied moves in order.
func (s *Session) Moves() []Move {
	out := make([]Move, len(s.plies))
	for i, ply := range s.plies {
		out[i] = ply.Move
	}
	return out
}

// Plies returns a copy of the applied plies.
func (s *Session) Plies() []Ply {
	return append([]Ply(nil), s.plies...)
}

// CapturedPieces lists captured piece kinds per capturing side, in order.
type CapturedPieces struct {
	ByWhite []PieceType
	ByBlack []PieceType
}

func (c CapturedPieces) IsEmpty() bool { return len(c.ByWhite) == 0 && len(c.ByBlack) == 0 }

// Captured collects the pieces taken so far.
func (s *Session) Captured() CapturedPieces {
	var out CapturedPieces
	for _, ply := range s.plies {
		if ply.Captured.IsNone() {
			continue
		}
		if ply.Moved.Color == White {
			out.ByWhite = append(out.ByWhite, ply.Captured.Type)
		} else {
			out.ByBlack = append(out.ByBlack, ply.Captured.Type)
		}
	}
	return out
}
