package chesspresenter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-chess/pkg/chessdto"
)

const (
	recentMovesLimit = 6
	timeLayout       = "2006-01-02 15:04"
)

var unicodePieces = map[string]string{
	"K": "♔", "Q": "♕", "R": "♖", "B": "♗", "N": "♘", "P": "♙",
	"k": "♚", "q": "♛", "r": "♜", "b": "♝", "n": "♞", "p": "♟",
}

// Formatter renders chess DTOs into terminal text blocks.
type Formatter struct {
	unicode bool
	flip    bool
}

type FormatterOption func(*Formatter)

// WithUnicode draws pieces as chess glyphs instead of FEN letters.
func WithUnicode() FormatterOption { return func(f *Formatter) { f.unicode = true } }

// WithFlip draws the board from Black's side.
func WithFlip() FormatterOption { return func(f *Formatter) { f.flip = true } }

func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Board draws the diagram followed by the status block.
func (f *Formatter) Board(state *chessdto.SessionState) string {
	if state == nil {
		return ""
	}
	var sb strings.Builder
	f.writeDiagram(&sb, state)
	sb.WriteString("\n")
	sb.WriteString(f.Status(state))
	return sb.String()
}

func (f *Formatter) writeDiagram(sb *strings.Builder, state *chessdto.SessionState) {
	files := "a b c d e f g h"
	rows := make([]int, 0, 8)
	for r := 0; r < len(state.Board); r++ {
		rows = append(rows, r)
	}
	if f.flip {
		files = "h g f e d c b a"
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	for _, r := range rows {
		row := state.Board[r]
		fmt.Fprintf(sb, "%d ", 8-r)
		for i := range row {
			col := i
			if f.flip {
				col = len(row) - 1 - i
			}
			sb.WriteString(f.pieceGlyph(row[col]))
			if i < len(row)-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  ")
	sb.WriteString(files)
	sb.WriteByte('\n')
}

func (f *Formatter) pieceGlyph(letter string) string {
	if letter == "" {
		return "."
	}
	if f.unicode {
		if g, ok := unicodePieces[letter]; ok {
			return g
		}
	}
	return letter
}

func (f *Formatter) Status(state *chessdto.SessionState) string {
	if state == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(state.Message)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "• Game: %s\n", state.ID)
	fmt.Fprintf(&sb, "• FEN: %s\n", state.FEN)
	if state.LastMove != "" && len(state.MovesSAN) > 0 {
		fmt.Fprintf(&sb, "• Last move: %s (%s)\n", state.MovesSAN[len(state.MovesSAN)-1], state.LastMove)
	}
	fmt.Fprintf(&sb, "• Moves: %s\n", formatRecentMoves(state.MovesSAN))
	appendMaterialLine(&sb, state.Material)
	appendCapturedLine(&sb, state.Captured)
	if state.Status.Over {
		fmt.Fprintf(&sb, "• Result: %s\n", formatOutcome(state.Status.Outcome, state.Status.Method))
	} else if len(state.Status.ClaimableDraws) > 0 {
		fmt.Fprintf(&sb, "• Claimable: %s\n", strings.Join(state.Status.ClaimableDraws, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (f *Formatter) Move(resp *chessdto.MoveResponse) string {
	if resp == nil || resp.State == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Played %s (%s)", resp.Move.SAN, resp.Move.UCI)
	if resp.Captured != "" {
		fmt.Fprintf(&sb, ", captured %s", resp.Captured)
	}
	sb.WriteString("\n\n")
	sb.WriteString(f.Board(resp.State))
	if resp.Archived {
		sb.WriteString("\n• Game archived.")
	}
	return sb.String()
}

func (f *Formatter) LegalMoves(resp *chessdto.LegalMovesResponse) string {
	if resp == nil || len(resp.Moves) == 0 {
		return "No legal moves."
	}
	sans := make([]string, len(resp.Moves))
	for i, mv := range resp.Moves {
		sans[i] = mv.SAN
	}
	header := fmt.Sprintf("%d legal moves", len(resp.Moves))
	if resp.From != "" {
		header += " from " + resp.From
	}
	return header + ":\n" + strings.Join(sans, " ")
}

func (f *Formatter) Undo(resp *chessdto.UndoResponse) string {
	if resp == nil {
		return ""
	}
	return fmt.Sprintf("Took back %s.\n\n%s", resp.Undone.SAN, f.Board(resp.State))
}

// History prints move pairs, or one line per ply when verbose.
func (f *Formatter) History(resp *chessdto.HistoryResponse) string {
	if resp == nil || len(resp.Entries) == 0 {
		return "No moves yet."
	}
	var sb strings.Builder
	if resp.Verbose {
		for _, e := range resp.Entries {
			fmt.Fprintf(&sb, "%3d. %-5s %-7s %-6s", e.Ply, e.Color, e.SAN, e.Piece)
			if e.Captured != "" {
				fmt.Fprintf(&sb, " x%s", e.Captured)
			}
			if len(e.Flags) > 0 {
				fmt.Fprintf(&sb, " [%s]", strings.Join(e.Flags, ","))
			}
			fmt.Fprintf(&sb, "  %s\n", e.FEN)
		}
		return strings.TrimRight(sb.String(), "\n")
	}
	for i, e := range resp.Entries {
		switch {
		case i == 0 && e.Color == "black":
			fmt.Fprintf(&sb, "1... %s", e.SAN)
		case e.Color == "white":
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "%d. %s", (e.Ply+1)/2, e.SAN)
		default:
			fmt.Fprintf(&sb, " %s", e.SAN)
		}
	}
	return sb.String()
}

func (f *Formatter) Games(resp *chessdto.GameListResponse) string {
	if resp == nil || len(resp.Games) == 0 {
		return "No active games."
	}
	var sb strings.Builder
	for _, g := range resp.Games {
		state := "in progress"
		if g.Over {
			state = g.Outcome
		}
		fmt.Fprintf(&sb, "%s  %3d plies  %-11s  %s\n", g.ID, g.MoveCount, state, formatShortTime(g.UpdatedAt))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (f *Formatter) Archive(resp *chessdto.ArchiveResponse) string {
	if resp == nil || len(resp.Games) == 0 {
		return "No finished games."
	}
	var sb strings.Builder
	for _, g := range resp.Games {
		fmt.Fprintf(&sb, "%s %-7s %s | %s", formatResultBadge(g.Result), g.Result, g.GameID, formatShortTime(g.EndedAt))
		if d := formatGameDuration(time.Duration(g.DurationMS) * time.Millisecond); d != "" {
			fmt.Fprintf(&sb, " | %s", d)
		}
		fmt.Fprintf(&sb, "\n    %s (%s)\n", formatRecentMoves(g.MovesSAN), strings.ReplaceAll(g.ResultMethod, "_", " "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Game prints one archived game as PGN.
func (f *Formatter) Game(game *chessdto.ArchivedGame) string {
	if game == nil {
		return ""
	}
	return game.PGN
}

func (f *Formatter) Event(ev chessdto.GameEvent) string {
	if ev.State == nil {
		return ev.Type
	}
	line := fmt.Sprintf("[%s] %s", ev.Type, ev.GameID)
	if ev.SAN != "" {
		line += " " + ev.SAN
	}
	return line + "\n" + f.Board(ev.State)
}

func (f *Formatter) Error(err error) string {
	var de chessdto.DomainError
	if errors.As(err, &de) {
		return fmt.Sprintf("error (%s): %s", de.Code, de.Message)
	}
	return "error: " + err.Error()
}

func formatRecentMoves(moves []string) string {
	if len(moves) == 0 {
		return "-"
	}
	if len(moves) <= recentMovesLimit {
		return strings.Join(moves, " ")
	}
	return "… " + strings.Join(moves[len(moves)-recentMovesLimit:], " ")
}

func formatOutcome(outcome, method string) string {
	label := strings.ReplaceAll(method, "_", " ")
	switch outcome {
	case "1-0":
		return "White wins by " + label
	case "0-1":
		return "Black wins by " + label
	case "1/2-1/2":
		return "Draw by " + label
	default:
		return "Game over"
	}
}

func formatResultBadge(result string) string {
	switch result {
	case "1-0":
		return "[W]"
	case "0-1":
		return "[B]"
	case "1/2-1/2":
		return "[=]"
	default:
		return "[ ]"
	}
}

func formatShortTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func formatGameDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func appendMaterialLine(sb *strings.Builder, material chessdto.MaterialScore) {
	diff := material.White - material.Black
	sign := ""
	if diff > 0 {
		sign = "+"
	}
	fmt.Fprintf(sb, "• Material: %d-%d (%s%d)\n", material.White, material.Black, sign, diff)
}

func appendCapturedLine(sb *strings.Builder, captured chessdto.CapturedPieces) {
	if len(captured.White) == 0 && len(captured.Black) == 0 {
		return
	}
	fmt.Fprintf(sb, "• Captured: white %s | black %s\n", formatCapturedSequence(captured.White), formatCapturedSequence(captured.Black))
}

func formatCapturedSequence(order []string) string {
	if len(order) == 0 {
		return "-"
	}
	symbols := make([]string, 0, len(order))
	for _, piece := range order {
		symbols = append(symbols, capturedSymbol(piece))
	}
	return strings.Join(symbols, "")
}

func capturedSymbol(piece string) string {
	switch piece {
	case "queen":
		return "Q"
	case "rook":
		return "R"
	case "bishop":
		return "B"
	case "knight":
		return "N"
	case "pawn":
		return "P"
	default:
		return "?"
	}
}
