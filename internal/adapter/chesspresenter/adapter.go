package chesspresenter

import (
	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
	svc "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func ToDTOState(s *svc.SessionState) *chessdto.SessionState {
	if s == nil {
		return nil
	}
	out := &chessdto.SessionState{
		ID:        s.ID,
		FEN:       s.Position.FEN(),
		StartFEN:  s.Start.FEN(),
		Board:     toDTOBoard(s.Position),
		Turn:      s.Position.Turn().String(),
		Status:    ToDTOStatus(s.Status),
		Message:   s.Message,
		MovesUCI:  make([]string, len(s.Moves)),
		MovesSAN:  append([]string{}, s.MovesSAN...),
		MoveCount: s.MoveCount(),
		Material:  chessdto.MaterialScore{White: s.Material.White, Black: s.Material.Black},
		Captured:  toDTOCaptured(s.Captured),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	for i, mv := range s.Moves {
		out.MovesUCI[i] = mv.String()
	}
	if s.LastMove != nil {
		out.LastMove = s.LastMove.String()
	}
	return out
}

func ToDTOStatus(st corechess.Status) chessdto.StatusInfo {
	info := chessdto.StatusInfo{
		Turn:                 st.Turn.String(),
		InCheck:              st.InCheck,
		Checkmate:            st.Checkmate,
		Stalemate:            st.Stalemate,
		InsufficientMaterial: st.InsufficientMaterial,
		RepetitionCount:      st.RepetitionCount,
		ClaimableDraws:       []string{},
		Over:                 st.IsOver(),
		Outcome:              st.Outcome.String(),
		Method:               st.Method.String(),
		DrawClaimed:          st.DrawClaimed,
	}
	for _, m := range st.ClaimableDraws() {
		info.ClaimableDraws = append(info.ClaimableDraws, m.String())
	}
	return info
}

// toDTOBoard lays out FEN piece letters from rank 8 down, "" for empty.
func toDTOBoard(pos corechess.Position) [][]string {
	grid := pos.Board()
	out := make([][]string, len(grid))
	for r, row := range grid {
		out[r] = make([]string, len(row))
		for f, pc := range row {
			out[r][f] = pc.Letter()
		}
	}
	return out
}

func toDTOCaptured(c corechess.CapturedPieces) chessdto.CapturedPieces {
	return chessdto.CapturedPieces{
		White: toPieceTokenList(c.ByWhite),
		Black: toPieceTokenList(c.ByBlack),
	}
}

func toPieceTokenList(list []corechess.PieceType) []string {
	tokens := make([]string, 0, len(list))
	for _, pt := range list {
		tokens = append(tokens, pt.String())
	}
	return tokens
}

func ToDTOMoveInfo(mv corechess.Move, san string) chessdto.MoveInfo {
	return chessdto.MoveInfo{
		From:      mv.From.String(),
		To:        mv.To.String(),
		Promotion: mv.Promotion.Letter(),
		UCI:       mv.String(),
		SAN:       san,
		Flags:     mv.Flags.Names(),
	}
}

func ToDTOMoveResponse(m *svc.MoveSummary) *chessdto.MoveResponse {
	if m == nil {
		return nil
	}
	resp := &chessdto.MoveResponse{
		Move:     ToDTOMoveInfo(m.Move, m.SAN),
		State:    ToDTOState(m.State),
		Archived: m.Archived,
	}
	if !m.Captured.IsNone() {
		resp.Captured = m.Captured.Type.String()
	}
	return resp
}

func ToDTOLegalMoves(gameID, from string, moves []svc.LegalMove) *chessdto.LegalMovesResponse {
	resp := &chessdto.LegalMovesResponse{GameID: gameID, From: from, Moves: make([]chessdto.MoveInfo, 0, len(moves))}
	for _, lm := range moves {
		resp.Moves = append(resp.Moves, ToDTOMoveInfo(lm.Move, lm.SAN))
	}
	return resp
}

func ToDTOUndo(u *svc.UndoSummary) *chessdto.UndoResponse {
	if u == nil {
		return nil
	}
	return &chessdto.UndoResponse{
		Undone: ToDTOMoveInfo(u.Undone.Move, u.Undone.SAN),
		State:  ToDTOState(u.State),
	}
}

func ToDTOHistory(h *svc.HistoryView) *chessdto.HistoryResponse {
	if h == nil {
		return nil
	}
	resp := &chessdto.HistoryResponse{GameID: h.GameID, Verbose: h.Verbose, Entries: make([]chessdto.HistoryEntry, 0, len(h.Entries))}
	for _, e := range h.Entries {
		entry := chessdto.HistoryEntry{
			Ply:   e.Ply,
			Color: e.Color.String(),
			UCI:   e.Move.String(),
			SAN:   e.SAN,
		}
		if h.Verbose {
			entry.Flags = e.Move.Flags.Names()
			entry.Piece = e.Piece.String()
			entry.Captured = e.Captured.String()
			entry.FEN = e.FEN
		}
		resp.Entries = append(resp.Entries, entry)
	}
	return resp
}

func ToDTOGameList(states []*svc.SessionState) *chessdto.GameListResponse {
	resp := &chessdto.GameListResponse{Games: make([]chessdto.GameSummary, 0, len(states))}
	for _, s := range states {
		if s == nil {
			continue
		}
		resp.Games = append(resp.Games, chessdto.GameSummary{
			ID:        s.ID,
			FEN:       s.Position.FEN(),
			MoveCount: s.MoveCount(),
			Over:      s.Status.IsOver(),
			Outcome:   s.Status.Outcome.String(),
			UpdatedAt: s.UpdatedAt,
		})
	}
	return resp
}

func ToDTOGames(list []*domain.ChessGame) *chessdto.ArchiveResponse {
	resp := &chessdto.ArchiveResponse{Games: make([]chessdto.ArchivedGame, 0, len(list))}
	for _, g := range list {
		if g == nil {
			continue
		}
		resp.Games = append(resp.Games, *ToDTOGame(g))
	}
	return resp
}

func ToDTOGame(g *domain.ChessGame) *chessdto.ArchivedGame {
	if g == nil {
		return nil
	}
	return &chessdto.ArchivedGame{
		ID:           g.ID,
		GameID:       g.GameID,
		StartFEN:     g.StartFEN,
		FinalFEN:     g.FinalFEN,
		Result:       g.Result,
		ResultMethod: g.ResultMethod,
		MovesUCI:     append([]string{}, g.MovesUCI...),
		MovesSAN:     append([]string{}, g.MovesSAN...),
		PGN:          g.PGN,
		StartedAt:    g.StartedAt,
		EndedAt:      g.EndedAt,
		DurationMS:   g.Duration.Milliseconds(),
	}
}

func ToDTOEvent(ev svc.Event) chessdto.GameEvent {
	return chessdto.GameEvent{
		Type:   ev.Type,
		GameID: ev.GameID,
		SAN:    ev.SAN,
		State:  ToDTOState(ev.State),
	}
}
