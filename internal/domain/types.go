package domain

import "fmt"

type PlayerID int

const (
	Empty   PlayerID = 0
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

// Other returns the opponent of p.
func (p PlayerID) Other() PlayerID {
	if p == Player1 {
		return Player2
	}
	return Player1
}

const (
	Rows    = 6
	Columns = 7
	ToWin   = 4
)

// Phase is the move-acceptance state of a game.
type Phase string

const (
	PhaseAwaitingInput Phase = "awaiting_input"
	PhaseCommitting    Phase = "committing"
	PhaseAnimating     Phase = "animating"
	PhaseResolved      Phase = "resolved"
)

type ResultKind string

const (
	ResultNone ResultKind = "none"
	ResultWin  ResultKind = "win"
	ResultDraw ResultKind = "draw"
)

// Result is the outcome of a game. Winner and Line are only set for ResultWin.
type Result struct {
	Kind   ResultKind  `json:"kind"`
	Winner PlayerID    `json:"winner,omitempty"`
	Line   WinningLine `json:"-"`
}

func NoResult() Result {
	return Result{Kind: ResultNone}
}

type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// WinningLine holds the cells of a connected run, origin first.
type WinningLine []Coord

// Move is produced when a drop is accepted.
type Move struct {
	Column int      `json:"col"`
	Row    int      `json:"row"`
	Player PlayerID `json:"player"`
}

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidColumn   Error = "invalid column"
	ErrInvalidCell     Error = "invalid cell"
	ErrInvalidPlayer   Error = "invalid player"
	ErrCellOccupied    Error = "cell is already occupied"
	ErrNotLowestEmpty  Error = "cell is not the lowest empty row of its column"
	ErrSessionNotFound Error = "session not found"
)

// IsValidColumn reports whether col indexes a board column.
func IsValidColumn(col int) bool {
	return col >= 0 && col < Columns
}

// violation aborts the current operation; it marks a broken caller contract,
// never a user-facing condition.
func violation(err Error, format string, args ...any) {
	panic(fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)))
}
