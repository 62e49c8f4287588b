package chessdto

import "time"

type MaterialScore struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// CapturedPieces lists piece letters taken by each side.
type CapturedPieces struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

type StatusInfo struct {
	Turn                 string   `json:"turn"`
	InCheck              bool     `json:"in_check"`
	Checkmate            bool     `json:"checkmate"`
	Stalemate            bool     `json:"stalemate"`
	InsufficientMaterial bool     `json:"insufficient_material"`
	RepetitionCount      int      `json:"repetition_count"`
	ClaimableDraws       []string `json:"claimable_draws"`
	Over                 bool     `json:"over"`
	Outcome              string   `json:"outcome"`
	Method               string   `json:"method,omitempty"`
	DrawClaimed          bool     `json:"draw_claimed,omitempty"`
}

// SessionState is a snapshot of one game. Board is indexed [rank][file]
// from rank 8 down to rank 1; empty squares are "".
type SessionState struct {
	ID        string         `json:"id"`
	FEN       string         `json:"fen"`
	StartFEN  string         `json:"start_fen"`
	Board     [][]string     `json:"board"`
	Turn      string         `json:"turn"`
	Status    StatusInfo     `json:"status"`
	Message   string         `json:"message"`
	MovesUCI  []string       `json:"moves_uci"`
	MovesSAN  []string       `json:"moves_san"`
	MoveCount int            `json:"move_count"`
	LastMove  string         `json:"last_move,omitempty"`
	Material  MaterialScore  `json:"material"`
	Captured  CapturedPieces `json:"captured"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GameSummary is one row of the active game listing.
type GameSummary struct {
	ID        string    `json:"id"`
	FEN       string    `json:"fen"`
	MoveCount int       `json:"move_count"`
	Over      bool      `json:"over"`
	Outcome   string    `json:"outcome"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GameListResponse struct {
	Games []GameSummary `json:"games"`
}
