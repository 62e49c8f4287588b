package chess

import (
	"fmt"
	"strings"
)

// Square is a board square packed as rank*8+file, a1 = 0 and h8 = 63.
type Square uint8

// NoSquare marks an absent square (for example no en passant target).
const NoSquare Square = 64

const (
	fileNames = "abcdefgh"
	rankNames = "12345678"
)

func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

func (s Square) File() int { return int(s) & 7 }
func (s Square) Rank() int { return int(s) >> 3 }

func (s Square) Valid() bool { return s < NoSquare }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{fileNames[s.File()], rankNames[s.Rank()]})
}

// IsLight reports whether the square is a light square (h1 is light).
func (s Square) IsLight() bool {
	return (s.File()+s.Rank())%2 == 1
}

// ParseSquare reads the algebraic form "a1".."h8". Case and surrounding
// whitespace are ignored.
func ParseSquare(text string) (Square, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	if len(t) != 2 {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, text)
	}
	file := strings.IndexByte(fileNames, t[0])
	rank := strings.IndexByte(rankNames, t[1])
	if file < 0 || rank < 0 {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, text)
	}
	return NewSquare(file, rank), nil
}

// offset returns the square df files and dr ranks away, if it is on the board.
func offset(s Square, df, dr int) (Square, bool) {
	f := s.File() + df
	r := s.Rank() + dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return NoSquare, false
	}
	return NewSquare(f, r), true
}
