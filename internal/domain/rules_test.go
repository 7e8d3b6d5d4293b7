package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// boardFrom writes cells directly, bypassing gravity, to set up positions.
func boardFrom(cells map[Coord]PlayerID) *Board {
	b := NewBoard()
	for at, p := range cells {
		b[at.Row][at.Col] = p
	}
	return b
}

func requireConnected(t *testing.T, b *Board, line WinningLine, player PlayerID) {
	t.Helper()
	require.GreaterOrEqual(t, len(line), ToWin)
	for _, at := range line {
		require.Equal(t, player, b.CellAt(at.Row, at.Col), "cell %v", at)
	}
}

func TestEvaluateWin_Horizontal(t *testing.T) {
	b := boardFrom(map[Coord]PlayerID{
		{5, 1}: Player1, {5, 2}: Player1, {5, 3}: Player1, {5, 4}: Player1,
	})

	line := EvaluateWin(b, 5, 1, Player1)
	require.Equal(t, WinningLine{{5, 1}, {5, 2}, {5, 3}, {5, 4}}, line)

	// the origin can sit anywhere in the run
	line = EvaluateWin(b, 5, 3, Player1)
	require.Equal(t, WinningLine{{5, 3}, {5, 4}, {5, 2}, {5, 1}}, line)
}

func TestEvaluateWin_ThreeIsNotEnough(t *testing.T) {
	b := boardFrom(map[Coord]PlayerID{
		{5, 1}: Player1, {5, 2}: Player1, {5, 3}: Player1, {5, 4}: Player2,
	})
	require.Nil(t, EvaluateWin(b, 5, 1, Player1))
	require.Nil(t, EvaluateWin(b, 5, 4, Player2))
}

func TestEvaluateWin_Vertical(t *testing.T) {
	b := boardFrom(map[Coord]PlayerID{
		{2, 0}: Player2, {3, 0}: Player2, {4, 0}: Player2, {5, 0}: Player2,
	})
	require.Equal(t, WinningLine{{2, 0}, {3, 0}, {4, 0}, {5, 0}}, EvaluateWin(b, 2, 0, Player2))
	require.Nil(t, EvaluateWin(b, 2, 0, Player1))
}

func TestEvaluateWin_Diagonals(t *testing.T) {
	t.Run("down-right", func(t *testing.T) {
		b := boardFrom(map[Coord]PlayerID{
			{2, 2}: Player1, {3, 3}: Player1, {4, 4}: Player1, {5, 5}: Player1,
		})
		line := EvaluateWin(b, 5, 5, Player1)
		require.Equal(t, WinningLine{{5, 5}, {4, 4}, {3, 3}, {2, 2}}, line)
	})

	t.Run("down-left", func(t *testing.T) {
		b := boardFrom(map[Coord]PlayerID{
			{2, 5}: Player2, {3, 4}: Player2, {4, 3}: Player2, {5, 2}: Player2,
		})
		line := EvaluateWin(b, 5, 2, Player2)
		require.Equal(t, WinningLine{{5, 2}, {4, 3}, {3, 4}, {2, 5}}, line)
	})

	t.Run("broken diagonal", func(t *testing.T) {
		b := boardFrom(map[Coord]PlayerID{
			{2, 2}: Player1, {3, 3}: Player2, {4, 4}: Player1, {5, 5}: Player1,
		})
		require.Nil(t, EvaluateWin(b, 5, 5, Player1))
	})
}

func TestEvaluateWin_LongRun(t *testing.T) {
	b := NewBoard()
	for col := 0; col < Columns; col++ {
		b[5][col] = Player1
	}

	line := EvaluateWin(b, 5, 3, Player1)
	requireConnected(t, b, line, Player1)
	// at most three steps each way from the origin
	require.Len(t, line, 7)
}

func TestEvaluateWin_FirstDirectionWins(t *testing.T) {
	// horizontal and vertical both connect through (5,3); horizontal is checked first
	b := boardFrom(map[Coord]PlayerID{
		{5, 0}: Player1, {5, 1}: Player1, {5, 2}: Player1, {5, 3}: Player1,
		{4, 3}: Player1, {3, 3}: Player1, {2, 3}: Player1,
	})
	line := EvaluateWin(b, 5, 3, Player1)
	require.Equal(t, WinningLine{{5, 3}, {5, 2}, {5, 1}, {5, 0}}, line)
}
