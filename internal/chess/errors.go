package chess

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove            = errors.New("illegal move")
	ErrInvalidSquare          = errors.New("invalid square")
	ErrInvalidPromotionChoice = errors.New("invalid promotion choice")
	ErrInvalidFEN             = errors.New("invalid FEN")
	ErrDrawNotClaimable       = errors.New("draw not claimable")
	ErrNothingToUndo          = errors.New("no moves available to undo")
)

// IllegalMoveError identifies the rejected request. errors.Is(err,
// ErrIllegalMove) holds for it.
type IllegalMoveError struct {
	From      Square
	To        Square
	Promotion PieceType
	Reason    string
}

func (e *IllegalMoveError) Error() string {
	mv := e.From.String() + e.To.String() + e.Promotion.Letter()
	if e.Reason == "" {
		return fmt.Sprintf("illegal move %s", mv)
	}
	return fmt.Sprintf("illegal move %s: %s", mv, e.Reason)
}

func (e *IllegalMoveError) Is(target error) bool { return target == ErrIllegalMove }
