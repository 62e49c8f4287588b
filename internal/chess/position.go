package chess

import "strings"

// Position is one ply of a game: placement, side to move, castling rights,
// en passant target and the two move counters. It is a value type; the
// engine never mutates a Position in place, it returns a new one.
type Position struct {
	squares   [64]Piece
	turn      Color
	castling  CastlingRights
	enPassant Square
	halfmove  int
	fullmove  int
}

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var startingPosition = func() Position {
	pos, err := ParseFEN(StartingFEN)
	if err != nil {
		panic(err)
	}
	return pos
}()

// StartingPosition returns the standard initial position.
func StartingPosition() Position { return startingPosition }

func (p Position) Piece(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return p.squares[sq]
}

func (p Position) Turn() Color { return p.turn }
func (p Position) Castling() CastlingRights { return p.castling }
func (p Position) EnPassant() Square { return p.enPassant }
func (p Position) HalfmoveClock() int { return p.halfmove }
func (p Position) FullmoveNumber() int { return p.fullmove }
func (p Position) IsZero() bool { return p == Position{} }

// Board returns a read-only 8x8 grid, rank-major with rank 8 first and file a
// first, which is the orientation a board is usually drawn in from White's
// side.
func (p Position) Board() [8][8]Piece {
	var grid [8][8]Piece
	for row := 0; row < 8; row++ {
		rank := 7 - row
		for file := 0; file < 8; file++ {
			grid[row][file] = p.squares[NewSquare(file, rank)]
		}
	}
	return grid
}

// KingSquare returns the square of c's king, or NoSquare.
func (p Position) KingSquare(c Color) Square {
	for i, pc := range p.squares {
		if pc.Type == King && pc.Color == c {
			return Square(i)
		}
	}
	return NoSquare
}

// InCheck reports whether the side to move is in check.
func (p Position) InCheck() bool {
	return p.kingAttacked(p.turn)
}

func (p Position) kingAttacked(c Color) bool {
	k := p.KingSquare(c)
	if k == NoSquare {
		return false
	}
	return IsSquareAttacked(p, k, c.Other())
}

// Key identifies the position for repetition purposes: placement, side to
// move, castling rights and en passant target. Move counters are ignored.
func (p Position) Key() string {
	var b strings.Builder
	b.Grow(80)
	p.writePlacement(&b)
	b.WriteByte(' ')
	b.WriteString(p.turn.Letter())
	b.WriteByte(' ')
	b.WriteString(p.castling.String())
	b.WriteByte(' ')
	b.WriteString(p.enPassant.String())
	return b.String()
}

func (p Position) writePlacement(b *strings.Builder) {
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.squares[NewSquare(file, rank)]
			if pc.IsNone() {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteByte(byte('0' + empty))
				empty = 0
			}
			b.WriteString(pc.Letter())
		}
		if empty > 0 {
			b.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			b.WriteByte('/')
		}
	}
}

// String draws the board as text, rank 8 at the top.
func (p Position) String() string {
	var b strings.Builder
	for rank := 7; rank >= 0; rank-- {
		b.WriteByte(rankNames[rank])
		for file := 0; file < 8; file++ {
			b.WriteByte(' ')
			pc := p.squares[NewSquare(file, rank)]
			if pc.IsNone() {
				b.WriteByte('.')
			} else {
				b.WriteString(pc.Letter())
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString("  a b c d e f g h")
	return b.String()
}
