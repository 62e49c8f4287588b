package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// FEN encodes the position in Forsyth-Edwards Notation.
func (p Position) FEN() string {
	var b strings.Builder
	b.Grow(90)
	b.WriteString(p.Key())
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.halfmove))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.fullmove))
	return b.String()
}

// ParseFEN decodes a FEN string. The move counters may be omitted (they
// default to 0 and 1). Castling rights whose king or rook is not on its
// home square are dropped. Positions that break the board invariants (one
// king per side, no pawns on the first or last rank) are rejected.
func ParseFEN(fen string) (Position, error) {
	fields := strings.Fields(fen)
	if len(fields) != 4 && len(fields) != 6 {
		return Position{}, fmt.Errorf("%w: expected 4 or 6 fields, got %d", ErrInvalidFEN, len(fields))
	}

	var pos Position
	if err := parsePlacement(&pos, fields[0]); err != nil {
		return Position{}, err
	}

	switch fields[1] {
	case "w":
		pos.turn = White
	case "b":
		pos.turn = Black
	default:
		return Position{}, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}

	rights, err := parseCastling(fields[2])
	if err != nil {
		return Position{}, err
	}
	pos.castling = sanitizeCastling(pos, rights)

	pos.enPassant = NoSquare
	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return Position{}, fmt.Errorf("%w: en passant %q", ErrInvalidFEN, fields[3])
		}
		wantRank := 5
		if pos.turn == Black {
			wantRank = 2
		}
		if sq.Rank() != wantRank {
			return Position{}, fmt.Errorf("%w: en passant square %s on wrong rank", ErrInvalidFEN, sq)
		}
		pos.enPassant = sq
	}

	pos.halfmove, pos.fullmove = 0, 1
	if len(fields) == 6 {
		if pos.halfmove, err = strconv.Atoi(fields[4]); err != nil || pos.halfmove < 0 {
			return Position{}, fmt.Errorf("%w: halfmove clock %q", ErrInvalidFEN, fields[4])
		}
		if pos.fullmove, err = strconv.Atoi(fields[5]); err != nil || pos.fullmove < 1 {
			return Position{}, fmt.Errorf("%w: fullmove number %q", ErrInvalidFEN, fields[5])
		}
	}

	if pos.kingAttacked(pos.turn.Other()) {
		return Position{}, fmt.Errorf("%w: side not to move is in check", ErrInvalidFEN)
	}
	return pos, nil
}

// MustParseFEN is ParseFEN for literals known to be valid.
func MustParseFEN(fen string) Position {
	pos, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return pos
}

func parsePlacement(pos *Position, field string) error {
	rows := strings.Split(field, "/")
	if len(rows) != 8 {
		return fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(rows))
	}
	kings := [2]int{}
	for i, row := range rows {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			pc, ok := pieceFromLetter(c)
			if !ok {
				return fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, string(c))
			}
			if file > 7 {
				return fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, rank+1)
			}
			if pc.Type == Pawn && (rank == 0 || rank == 7) {
				return fmt.Errorf("%w: pawn on rank %d", ErrInvalidFEN, rank+1)
			}
			if pc.Type == King {
				kings[pc.Color]++
			}
			pos.squares[NewSquare(file, rank)] = pc
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, rank+1, file)
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return fmt.Errorf("%w: need exactly one king per side", ErrInvalidFEN)
	}
	return nil
}

func parseCastling(field string) (CastlingRights, error) {
	if field == "-" {
		return NoCastling, nil
	}
	var rights CastlingRights
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case 'K':
			rights |= WhiteKingSide
		case 'Q':
			rights |= WhiteQueenSide
		case 'k':
			rights |= BlackKingSide
		case 'q':
			rights |= BlackQueenSide
		default:
			return NoCastling, fmt.Errorf("%w: castling %q", ErrInvalidFEN, field)
		}
	}
	return rights, nil
}

func sanitizeCastling(pos Position, rights CastlingRights) CastlingRights {
	for _, c := range []Color{White, Black} {
		rank := backRank(c)
		king := Piece{Type: King, Color: c}
		rook := Piece{Type: Rook, Color: c}
		if pos.squares[NewSquare(4, rank)] != king {
			rights &^= kingSideRight(c) | queenSideRight(c)
			continue
		}
		if pos.squares[NewSquare(7, rank)] != rook {
			rights &^= kingSideRight(c)
		}
		if pos.squares[NewSquare(0, rank)] != rook {
			rights &^= queenSideRight(c)
		}
	}
	return rights
}
