package chessdto

import "time"

// HistoryEntry is one ply. Piece, Captured and FEN are set only in verbose
// history.
type HistoryEntry struct {
	Ply      int      `json:"ply"`
	Color    string   `json:"color"`
	UCI      string   `json:"uci"`
	SAN      string   `json:"san"`
	Flags    []string `json:"flags,omitempty"`
	Piece    string   `json:"piece,omitempty"`
	Captured string   `json:"captured,omitempty"`
	FEN      string   `json:"fen,omitempty"`
}

type HistoryResponse struct {
	GameID  string         `json:"game_id"`
	Verbose bool           `json:"verbose"`
	Entries []HistoryEntry `json:"entries"`
}

type ArchivedGame struct {
	ID           int64     `json:"id"`
	GameID       string    `json:"game_id"`
	StartFEN     string    `json:"start_fen"`
	FinalFEN     string    `json:"final_fen"`
	Result       string    `json:"result"`
	ResultMethod string    `json:"result_method"`
	MovesUCI     []string  `json:"moves_uci"`
	MovesSAN     []string  `json:"moves_san"`
	PGN          string    `json:"pgn"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	DurationMS   int64     `json:"duration_ms"`
}

type ArchiveResponse struct {
	Games []ArchivedGame `json:"games"`
}
