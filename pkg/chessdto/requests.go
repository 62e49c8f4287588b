package chessdto

// NewGameRequest starts a game from FEN, or from the initial position when
// FEN is empty.
type NewGameRequest struct {
	FEN string `json:"fen,omitempty"`
}

// MoveRequest uses the field names of the legacy board client.
type MoveRequest struct {
	StartPos  string `json:"start_pos"`
	EndPos    string `json:"end_pos"`
	Promotion string `json:"promotion,omitempty"`
}

type ResetRequest struct {
	FEN string `json:"fen,omitempty"`
}

// DrawRequest claims a draw. Reason is "threefold_repetition",
// "fifty_move_rule" or empty for whichever is claimable.
type DrawRequest struct {
	Reason string `json:"reason,omitempty"`
}
