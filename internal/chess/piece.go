package chess

import (
	"fmt"
	"strings"
)

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Letter is the FEN side-to-move letter.
func (c Color) Letter() string {
	if c == White {
		return "w"
	}
	return "b"
}

// PieceType is the kind of a piece. The zero value means "no piece".
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceTypeNames = [...]string{"", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (t PieceType) String() string {
	if int(t) < len(pieceTypeNames) {
		return pieceTypeNames[t]
	}
	return fmt.Sprintf("PieceType(%d)", uint8(t))
}

// Letter returns the lowercase piece letter ("p", "n", ...), or "" for NoPieceType.
func (t PieceType) Letter() string {
	switch t {
	case Pawn:
		return "p"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	default:
		return ""
	}
}

// Value is the conventional material value; kings count zero.
func (t PieceType) Value() int {
	switch t {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 9
	default:
		return 0
	}
}

// Piece is an immutable (type, color) pair.
type Piece struct {
	Type  PieceType
	Color Color
}

// NoPiece is the empty square value.
var NoPiece = Piece{}

func (p Piece) IsNone() bool { return p.Type == NoPieceType }

// Letter returns the FEN letter: uppercase for white, lowercase for black.
func (p Piece) Letter() string {
	l := p.Type.Letter()
	if p.Color == White {
		return strings.ToUpper(l)
	}
	return l
}

func (p Piece) String() string {
	if p.IsNone() {
		return "-"
	}
	return p.Color.String() + " " + p.Type.String()
}

func pieceFromLetter(b byte) (Piece, bool) {
	color := White
	if b >= 'a' && b <= 'z' {
		color = Black
		b -= 'a' - 'A'
	}
	var t PieceType
	switch b {
	case 'P':
		t = Pawn
	case 'N':
		t = Knight
	case 'B':
		t = Bishop
	case 'R':
		t = Rook
	case 'Q':
		t = Queen
	case 'K':
		t = King
	default:
		return NoPiece, false
	}
	return Piece{Type: t, Color: color}, true
}

// DefaultPromotion is applied when a pawn reaches the last rank and the
// caller did not choose a piece.
const DefaultPromotion = Queen

// ParsePromotion reads a promotion choice. The empty string means "no
// choice"; letters q/r/b/n and the full names are accepted in any case.
func ParsePromotion(text string) (PieceType, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "":
		return NoPieceType, nil
	case "q", "queen":
		return Queen, nil
	case "r", "rook":
		return Rook, nil
	case "b", "bishop":
		return Bishop, nil
	case "n", "knight":
		return Knight, nil
	default:
		return NoPieceType, fmt.Errorf("%w: %q", ErrInvalidPromotionChoice, text)
	}
}
