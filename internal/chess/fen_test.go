package chess

import (
	"errors"
	"testing"
)

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range []string{
		StartingFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"8/8/8/4k3/8/8/8/4K3 b - - 12 40",
	} {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := pos.FEN(); got != fen {
			t.Fatalf("FEN round trip\n got %q\nwant %q", got, fen)
		}
	}
}

func TestParseFENDefaultsCounters(t *testing.T) {
	pos, err := ParseFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if pos.HalfmoveClock() != 0 || pos.FullmoveNumber() != 1 {
		t.Fatalf("counters = %d %d", pos.HalfmoveClock(), pos.FullmoveNumber())
	}
}

func TestParseFENRejects(t *testing.T) {
	for _, fen := range []string{
		"",
		"8/8/8/8/8/8/8/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkx - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnP/pppppppp/8/8/8/8/PPPPPPP1/RNBQKBNR w KQkq - 0 1",
		"4k3/8/8/8/8/8/8/4KK2 w - - 0 1",
		"4k3/4R3/8/8/8/8/8/4K3 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w - - -1 1",
	} {
		if _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Fatalf("ParseFEN(%q) err = %v, want ErrInvalidFEN", fen, err)
		}
	}
}

func TestParseFENDropsImpossibleCastling(t *testing.T) {
	pos := MustParseFEN("r3k3/8/8/8/8/8/8/4K2R w KQkq - 0 1")
	if got := pos.Castling().String(); got != "Kq" {
		t.Fatalf("castling = %q, want Kq", got)
	}
}

func TestKeyIgnoresCounters(t *testing.T) {
	a := MustParseFEN("4k3/8/8/8/8/8/8/R3K3 w - - 3 10")
	b := MustParseFEN("4k3/8/8/8/8/8/8/R3K3 w - - 40 61")
	if a.Key() != b.Key() {
		t.Fatalf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	c := MustParseFEN("4k3/8/8/8/8/8/8/R3K3 b - - 3 10")
	if a.Key() == c.Key() {
		t.Fatalf("side to move must be part of the key")
	}
}

func TestBoardOrientation(t *testing.T) {
	grid := StartingPosition().Board()
	if grid[0][4] != (Piece{Type: King, Color: Black}) {
		t.Fatalf("grid[0][4] = %v, want black king", grid[0][4])
	}
	if grid[7][3] != (Piece{Type: Queen, Color: White}) {
		t.Fatalf("grid[7][3] = %v, want white queen", grid[7][3])
	}
	for row := 2; row < 6; row++ {
		for col := 0; col < 8; col++ {
			if !grid[row][col].IsNone() {
				t.Fatalf("grid[%d][%d] should be empty", row, col)
			}
		}
	}
}
