package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iamasit07/dropfour/internal/domain"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

// SaveGame stores a finished game and returns its history ID
func (r *GameRepo) SaveGame(ctx context.Context, record domain.GameRecord) (int64, error) {
	boardJSON, err := json.Marshal(record.Board)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal board state: %w", err)
	}

	var lineJSON []byte
	if len(record.WinningLine) > 0 {
		lineJSON, err = json.Marshal(record.WinningLine)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal winning line: %w", err)
		}
	}

	query := `
	INSERT INTO game_result (session_id, result, winner, winning_line, board_state, total_moves, started_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id;
	`

	var id int64
	err = r.DB.QueryRowContext(ctx, query,
		record.SessionID, string(record.Result), int(record.Winner), lineJSON, boardJSON,
		record.TotalMoves, record.StartedAt, record.FinishedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert game record: %w", err)
	}
	return id, nil
}

const selectGameColumns = `
	SELECT id, session_id, result, winner, winning_line, board_state, total_moves, started_at, finished_at
	FROM game_result`

// GetGameByID returns nil, nil when no such game exists
func (r *GameRepo) GetGameByID(ctx context.Context, id int64) (*domain.GameRecord, error) {
	row := r.DB.QueryRowContext(ctx, selectGameColumns+` WHERE id = $1;`, id)

	record, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}
	return record, nil
}

// RecentGames lists finished games, newest first
func (r *GameRepo) RecentGames(ctx context.Context, limit int) ([]domain.GameRecord, error) {
	rows, err := r.DB.QueryContext(ctx, selectGameColumns+` ORDER BY finished_at DESC LIMIT $1;`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game history: %w", err)
	}
	defer rows.Close()

	games := []domain.GameRecord{}
	for rows.Next() {
		record, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game history: %w", err)
	}
	return games, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (*domain.GameRecord, error) {
	var (
		record    domain.GameRecord
		result    string
		winner    int
		lineJSON  []byte
		boardJSON []byte
	)

	err := s.Scan(
		&record.ID,
		&record.SessionID,
		&result,
		&winner,
		&lineJSON,
		&boardJSON,
		&record.TotalMoves,
		&record.StartedAt,
		&record.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Result = domain.ResultKind(result)
	record.Winner = domain.PlayerID(winner)

	if len(lineJSON) > 0 {
		if err := json.Unmarshal(lineJSON, &record.WinningLine); err != nil {
			return nil, fmt.Errorf("failed to unmarshal winning line: %w", err)
		}
	}
	if err := json.Unmarshal(boardJSON, &record.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board state: %w", err)
	}
	return &record, nil
}
