package domain

// NoRow is returned by LowestEmptyRow when a column has no empty cell.
const NoRow = -1

// Board is the occupancy grid. Row 0 is the top row, Rows-1 the bottom.
type Board [Rows][Columns]PlayerID

func NewBoard() *Board {
	return &Board{}
}

func (b *Board) checkColumn(col int) {
	if !IsValidColumn(col) {
		violation(ErrInvalidColumn, "column %d outside [0,%d)", col, Columns)
	}
}

func (b *Board) checkCell(row, col int) {
	if row < 0 || row >= Rows || col < 0 || col >= Columns {
		violation(ErrInvalidCell, "cell (%d,%d) outside %dx%d board", row, col, Rows, Columns)
	}
}

// IsColumnFull reports whether the top cell of col is occupied.
func (b *Board) IsColumnFull(col int) bool {
	b.checkColumn(col)
	return b[0][col] != Empty
}

// LowestEmptyRow scans col from the bottom up and returns the first empty row,
// or NoRow when the column is full.
func (b *Board) LowestEmptyRow(col int) int {
	b.checkColumn(col)
	for row := Rows - 1; row >= 0; row-- {
		if b[row][col] == Empty {
			return row
		}
	}
	return NoRow
}

// Place writes player into (row, col). The cell must be the lowest empty row
// of its column; anything else panics.
func (b *Board) Place(row, col int, player PlayerID) {
	b.checkCell(row, col)
	if player != Player1 && player != Player2 {
		violation(ErrInvalidPlayer, "player %d", player)
	}
	if b[row][col] != Empty {
		violation(ErrCellOccupied, "cell (%d,%d) holds player %d", row, col, b[row][col])
	}
	if lowest := b.LowestEmptyRow(col); lowest != row {
		violation(ErrNotLowestEmpty, "row %d requested, lowest empty row of column %d is %d", row, col, lowest)
	}
	b[row][col] = player
}

func (b *Board) CellAt(row, col int) PlayerID {
	b.checkCell(row, col)
	return b[row][col]
}

// IsTopRowFull reports whether every column is full. Gravity guarantees this
// means the whole board is full.
func (b *Board) IsTopRowFull() bool {
	for c := 0; c < Columns; c++ {
		if b[0][c] == Empty {
			return false
		}
	}
	return true
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Columns
}

// Ints converts the board for JSON and database storage.
func (b *Board) Ints() [][]int {
	out := make([][]int, Rows)
	for r := range b {
		out[r] = make([]int, Columns)
		for c := range b[r] {
			out[r][c] = int(b[r][c])
		}
	}
	return out
}
