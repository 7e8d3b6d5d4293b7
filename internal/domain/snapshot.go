package domain

// Snapshot is everything a presentation layer needs to render a game.
type Snapshot struct {
	Board           [][]int       `json:"board"`
	CurrentPlayer   PlayerID      `json:"currentPlayer"`
	Phase           Phase         `json:"phase"`
	Result          Result        `json:"result"`
	WinningLine     []Coord       `json:"winningLine"`
	Message         string        `json:"message"`
	Animation       *Coord        `json:"animation"`
	PlayableColumns [Columns]bool `json:"playableColumns"`
	MoveCount       int           `json:"moveCount"`
	LastMove        *Move         `json:"lastMove"`
	Generation      uint64        `json:"generation"`
}
