package domain

import "time"

// GameRecord is a finished game as stored in history.
type GameRecord struct {
	ID          int64       `json:"id"`
	SessionID   string      `json:"sessionId"`
	Result      ResultKind  `json:"result"`
	Winner      PlayerID    `json:"winner"`
	WinningLine WinningLine `json:"winningLine"`
	Board       [][]int     `json:"board"`
	TotalMoves  int         `json:"totalMoves"`
	StartedAt   time.Time   `json:"startedAt"`
	FinishedAt  time.Time   `json:"finishedAt"`
}

// NewGameRecord builds a history record from the snapshot of a resolved game.
func NewGameRecord(sessionID string, snap Snapshot, startedAt, finishedAt time.Time) GameRecord {
	return GameRecord{
		SessionID:   sessionID,
		Result:      snap.Result.Kind,
		Winner:      snap.Result.Winner,
		WinningLine: WinningLine(snap.WinningLine),
		Board:       snap.Board,
		TotalMoves:  snap.MoveCount,
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
	}
}
