package chess

import (
	"fmt"
	"strings"
)

// MoveFlags describe what a move does. They are filled in by the move
// generator; callers never supply them.
type MoveFlags uint8

const (
	FlagCapture MoveFlags = 1 << iota
	FlagEnPassant
	FlagCastleKingSide
	FlagCastleQueenSide
	FlagDoublePawnPush
	FlagPromotion
)

func (f MoveFlags) Has(flag MoveFlags) bool { return f&flag != 0 }

// Names lists the set flags in declaration order.
func (f MoveFlags) Names() []string {
	var out []string
	for _, item := range []struct {
		flag MoveFlags
		name string
	}{
		{FlagCapture, "capture"},
		{FlagEnPassant, "en_passant"},
		{FlagCastleKingSide, "castle_king_side"},
		{FlagCastleQueenSide, "castle_queen_side"},
		{FlagDoublePawnPush, "double_pawn_push"},
		{FlagPromotion, "promotion"},
	} {
		if f.Has(item.flag) {
			out = append(out, item.name)
		}
	}
	return out
}

// Move is a single ply. Promotion is NoPieceType unless the move promotes.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
	Flags     MoveFlags
}

func (m Move) IsCastle() bool {
	return m.Flags.Has(FlagCastleKingSide) || m.Flags.Has(FlagCastleQueenSide)
}

// String returns the long algebraic (UCI) form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	return m.From.String() + m.To.String() + m.Promotion.Letter()
}

// ParseUCI splits a long algebraic move into its squares and promotion
// choice without checking legality.
func ParseUCI(text string) (from, to Square, promotion PieceType, err error) {
	t := strings.ToLower(strings.TrimSpace(text))
	if len(t) != 4 && len(t) != 5 {
		return NoSquare, NoSquare, NoPieceType, fmt.Errorf("%w: %q is not a move", ErrInvalidSquare, text)
	}
	if from, err = ParseSquare(t[0:2]); err != nil {
		return NoSquare, NoSquare, NoPieceType, err
	}
	if to, err = ParseSquare(t[2:4]); err != nil {
		return NoSquare, NoSquare, NoPieceType, err
	}
	if len(t) == 5 {
		if promotion, err = ParsePromotion(t[4:]); err != nil {
			return NoSquare, NoSquare, NoPieceType, err
		}
	}
	return from, to, promotion, nil
}

var promotionOrder = [...]int{Queen: 0, Rook: 1, Bishop: 2, Knight: 3}

func promotionRank(t PieceType) int {
	if int(t) < len(promotionOrder) && t != NoPieceType {
		return promotionOrder[t]
	}
	return -1
}

// compareMoves orders by origin, then destination, then promotion Q, R, B, N.
func compareMoves(a, b Move) int {
	if a.From != b.From {
		return int(a.From) - int(b.From)
	}
	if a.To != b.To {
		return int(a.To) - int(b.To)
	}
	return promotionRank(a.Promotion) - promotionRank(b.Promotion)
}
