package chessdto

// Event types published to game watchers.
const (
	// EventSnapshot is sent once when a watcher connects.
	EventSnapshot = "snapshot"
	EventCreated  = "created"
	EventMove     = "move"
	EventUndo     = "undo"
	EventDraw     = "draw"
	EventReset    = "reset"
)

type GameEvent struct {
	Type   string        `json:"type"`
	GameID string        `json:"game_id"`
	SAN    string        `json:"san,omitempty"`
	State  *SessionState `json:"state"`
}
