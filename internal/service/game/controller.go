package game

import (
	"fmt"
	"sync"

	"github.com/iamasit07/dropfour/internal/domain"
)

const (
	MessageColumnFull = "Column is full!"
	MessageDraw       = "It's a draw!"
)

func winMessage(player domain.PlayerID) string {
	return fmt.Sprintf("Player %d wins!", player)
}

// Outcome tells the caller what happened to a submitted column.
type Outcome int

const (
	Accepted Outcome = iota
	RejectedColumnFull
	RejectedBusy
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case RejectedColumnFull:
		return "column_full"
	case RejectedBusy:
		return "busy"
	}
	return "unknown"
}

// Listener receives a snapshot after every observable change. It runs with
// the controller locked and must not call back into it.
type Listener func(domain.Snapshot)

type ControllerConfig struct {
	Timings    Timings
	Scheduler  Scheduler
	// OnChange is called for every state change.
	OnChange   Listener
	// OnResolved is called once when a game ends in a win or draw.
	OnResolved Listener
}

// Controller owns one game: the board, whose turn it is, and the phase that
// gates which moves are accepted.
type Controller struct {
	mu sync.Mutex

	board         *domain.Board
	currentPlayer domain.PlayerID
	phase         domain.Phase
	result        domain.Result
	animation     *domain.Coord
	lastMove      *domain.Move
	moveCount     int

	message      string
	messageEpoch uint64
	messageTimer Timer

	// generation is bumped on every commit and on reset; the deferred
	// evaluation of a move only runs if it still matches.
	generation uint64
	pending    Timer

	timings    Timings
	scheduler  Scheduler
	onChange   Listener
	onResolved Listener
}

func NewController(cfg ControllerConfig) *Controller {
	if cfg.Scheduler == nil {
		cfg.Scheduler = RealScheduler
	}
	c := &Controller{
		timings:    cfg.Timings,
		scheduler:  cfg.Scheduler,
		onChange:   cfg.OnChange,
		onResolved: cfg.OnResolved,
	}
	c.resetLocked()
	return c
}

// Playable reports whether SubmitColumn(col) would currently be accepted.
func (c *Controller) Playable(col int) bool {
	if !domain.IsValidColumn(col) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playableLocked(col)
}

func (c *Controller) playableLocked(col int) bool {
	return c.phase == domain.PhaseAwaitingInput && !c.board.IsColumnFull(col)
}

// SubmitColumn drops the current player's piece into col. The board is
// updated before it returns; win and draw evaluation happen after the
// animation delay.
func (c *Controller) SubmitColumn(col int) (Outcome, error) {
	if !domain.IsValidColumn(col) {
		return RejectedBusy, fmt.Errorf("%w: %d", domain.ErrInvalidColumn, col)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != domain.PhaseAwaitingInput {
		return RejectedBusy, nil
	}

	if c.board.IsColumnFull(col) {
		c.flashLocked(MessageColumnFull)
		c.notifyLocked()
		return RejectedColumnFull, nil
	}

	c.phase = domain.PhaseCommitting
	row := c.board.LowestEmptyRow(col)
	c.board.Place(row, col, c.currentPlayer)

	move := domain.Move{Column: col, Row: row, Player: c.currentPlayer}
	c.moveCount++
	c.lastMove = &move
	c.animation = &domain.Coord{Row: row, Col: col}
	c.generation++
	c.phase = domain.PhaseAnimating

	gen := c.generation
	c.pending = c.scheduler.AfterFunc(c.timings.AnimationDelay, func() {
		c.finishMove(gen, move)
	})

	c.notifyLocked()
	return Accepted, nil
}

// finishMove runs once the drop animation is over.
func (c *Controller) finishMove(gen uint64, move domain.Move) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.phase != domain.PhaseAnimating {
		return
	}
	c.pending = nil
	c.animation = nil

	if line := domain.EvaluateWin(c.board, move.Row, move.Column, move.Player); line != nil {
		c.result = domain.Result{Kind: domain.ResultWin, Winner: move.Player, Line: line}
		c.phase = domain.PhaseResolved
		c.setMessageLocked(winMessage(move.Player))
	} else if c.board.IsTopRowFull() {
		c.result = domain.Result{Kind: domain.ResultDraw}
		c.phase = domain.PhaseResolved
		c.setMessageLocked(MessageDraw)
	} else {
		c.currentPlayer = c.currentPlayer.Other()
		c.phase = domain.PhaseAwaitingInput
	}

	c.notifyLocked()
	if c.phase == domain.PhaseResolved && c.onResolved != nil {
		c.onResolved(c.snapshotLocked())
	}
}

// Reset starts a new game from any phase. A move still animating is
// discarded and will never be evaluated.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.notifyLocked()
}

func (c *Controller) resetLocked() {
	c.generation++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.setMessageLocked("")

	c.board = domain.NewBoard()
	c.currentPlayer = domain.Player1
	c.phase = domain.PhaseAwaitingInput
	c.result = domain.NoResult()
	c.animation = nil
	c.lastMove = nil
	c.moveCount = 0
}

// setMessageLocked replaces the message and cancels any pending clear.
func (c *Controller) setMessageLocked(msg string) {
	c.messageEpoch++
	if c.messageTimer != nil {
		c.messageTimer.Stop()
		c.messageTimer = nil
	}
	c.message = msg
}

// flashLocked shows msg until MessageTimeout passes or another message
// replaces it.
func (c *Controller) flashLocked(msg string) {
	c.setMessageLocked(msg)
	epoch := c.messageEpoch
	c.messageTimer = c.scheduler.AfterFunc(c.timings.MessageTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if epoch != c.messageEpoch {
			return
		}
		c.messageTimer = nil
		c.message = ""
		c.notifyLocked()
	})
}

func (c *Controller) notifyLocked() {
	if c.onChange != nil {
		c.onChange(c.snapshotLocked())
	}
}

func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Board:         c.board.Ints(),
		CurrentPlayer: c.currentPlayer,
		Phase:         c.phase,
		Result:        c.result,
		WinningLine:   []domain.Coord{},
		Message:       c.message,
		MoveCount:     c.moveCount,
		Generation:    c.generation,
	}
	if c.result.Kind == domain.ResultWin {
		snap.WinningLine = append(snap.WinningLine, c.result.Line...)
	}
	if c.animation != nil {
		a := *c.animation
		snap.Animation = &a
	}
	if c.lastMove != nil {
		m := *c.lastMove
		snap.LastMove = &m
	}
	for col := 0; col < domain.Columns; col++ {
		snap.PlayableColumns[col] = c.playableLocked(col)
	}
	return snap
}
