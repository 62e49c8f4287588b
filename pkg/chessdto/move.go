package chessdto

// MoveInfo describes one legal or played move.
type MoveInfo struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	Promotion string   `json:"promotion,omitempty"`
	UCI       string   `json:"uci"`
	SAN       string   `json:"san"`
	Flags     []string `json:"flags,omitempty"`
}

type LegalMovesResponse struct {
	GameID string     `json:"game_id"`
	From   string     `json:"from,omitempty"`
	Moves  []MoveInfo `json:"moves"`
}

type MoveResponse struct {
	Move     MoveInfo      `json:"move"`
	Captured string        `json:"captured,omitempty"`
	State    *SessionState `json:"state"`
	Archived bool          `json:"archived,omitempty"`
}

type UndoResponse struct {
	Undone MoveInfo      `json:"undone"`
	State  *SessionState `json:"state"`
}
