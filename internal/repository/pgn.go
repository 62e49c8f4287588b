package repository

import (
	"fmt"
	"strings"
	"time"

	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
)

// BuildPGN renders the archived game as PGN. Games that did not start from
// the initial position carry SetUp/FEN tags and are numbered from the start
// position's move number.
func BuildPGN(g *domain.ChessGame) string {
	if g == nil {
		return ""
	}
	result := g.Result
	if result == "" {
		result = string(corechess.NoOutcome)
	}
	date := g.EndedAt
	if date.IsZero() {
		date = time.Now()
	}

	var b strings.Builder
	writeTag(&b, "Event", "Casual game")
	writeTag(&b, "Site", "cheese-chess")
	writeTag(&b, "Date", fmt.Sprintf("%04d.%02d.%02d", date.Year(), int(date.Month()), date.Day()))
	writeTag(&b, "Round", "-")
	writeTag(&b, "White", "White")
	writeTag(&b, "Black", "Black")
	writeTag(&b, "Result", result)

	moveNo, blackFirst := 1, false
	if g.StartFEN != "" && g.StartFEN != corechess.StartingFEN {
		writeTag(&b, "SetUp", "1")
		writeTag(&b, "FEN", g.StartFEN)
		if pos, err := corechess.ParseFEN(g.StartFEN); err == nil {
			moveNo = pos.FullmoveNumber()
			blackFirst = pos.Turn() == corechess.Black
		}
	}
	if m := strings.TrimSpace(g.ResultMethod); m != "" {
		writeTag(&b, "Termination", terminationTag(m))
	}
	b.WriteByte('\n')

	var moves []string
	for i, san := range g.MovesSAN {
		san = strings.TrimSpace(san)
		white := (i%2 == 0) != blackFirst
		switch {
		case i == 0 && !white:
			moves = append(moves, fmt.Sprintf("%d... %s", moveNo, san))
		case white:
			moves = append(moves, fmt.Sprintf("%d. %s", moveNo, san))
		default:
			moves = append(moves, san)
		}
		if !white {
			moveNo++
		}
	}
	moves = append(moves, result)
	b.WriteString(strings.Join(moves, " "))
	return b.String()
}

func terminationTag(method string) string {
	switch method {
	case corechess.Checkmate.String(), corechess.Stalemate.String(),
		corechess.InsufficientMaterial.String(), corechess.FivefoldRepetition.String(),
		corechess.SeventyFiveMoveRule.String():
		return "normal"
	case corechess.ThreefoldRepetition.String(), corechess.FiftyMoveRule.String():
		return "draw claimed: " + strings.ReplaceAll(method, "_", " ")
	default:
		return sanitizePGN(method)
	}
}

func writeTag(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "[%s \"%s\"]\n", name, sanitizePGN(value))
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
