package domain

import "time"

// ChessGame is a finished game as archived.
type ChessGame struct {
	ID           int64
	GameID       string
	StartFEN     string
	FinalFEN     string
	Result       string
	ResultMethod string
	MovesUCI     []string
	MovesSAN     []string
	PGN          string
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
}
