package chess

import "strings"

// SAN encodes mv in standard algebraic notation for pos, including
// disambiguation and the "+" / "#" suffix.
func SAN(pos Position, mv Move) string {
	return encodeSAN(pos, mv, LegalMoves(pos))
}

// encodeSAN is SAN with the legal move list of pos supplied by the caller.
func encodeSAN(pos Position, mv Move, legal []Move) string {
	var b strings.Builder
	switch {
	case mv.Flags.Has(FlagCastleKingSide):
		b.WriteString("O-O")
	case mv.Flags.Has(FlagCastleQueenSide):
		b.WriteString("O-O-O")
	default:
		pc := pos.squares[mv.From]
		capture := mv.Flags.Has(FlagCapture)
		if pc.Type == Pawn {
			if capture {
				b.WriteByte(fileNames[mv.From.File()])
			}
		} else {
			b.WriteString(strings.ToUpper(pc.Type.Letter()))
			b.WriteString(disambiguation(pos, mv, pc, legal))
		}
		if capture {
			b.WriteByte('x')
		}
		b.WriteString(mv.To.String())
		if mv.Promotion != NoPieceType {
			b.WriteByte('=')
			b.WriteString(strings.ToUpper(mv.Promotion.Letter()))
		}
	}

	next := Apply(pos, mv)
	if next.InCheck() {
		if HasLegalMove(next) {
			b.WriteByte('+')
		} else {
			b.WriteByte('#')
		}
	}
	return b.String()
}

func disambiguation(pos Position, mv Move, pc Piece, legal []Move) string {
	ambiguous, sameFile, sameRank := false, false, false
	for _, other := range legal {
		if other.To != mv.To || other.From == mv.From || pos.squares[other.From] != pc {
			continue
		}
		ambiguous = true
		if other.From.File() == mv.From.File() {
			sameFile = true
		}
		if other.From.Rank() == mv.From.Rank() {
			sameRank = true
		}
	}
	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(fileNames[mv.From.File()])
	case !sameRank:
		return string(rankNames[mv.From.Rank()])
	default:
		return mv.From.String()
	}
}
