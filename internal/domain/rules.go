package domain

// directions through a cell: horizontal, vertical, diagonal down-right,
// diagonal down-left. Each is walked both ways.
var directions = [4]Coord{
	{Row: 0, Col: 1},
	{Row: 1, Col: 0},
	{Row: 1, Col: 1},
	{Row: 1, Col: -1},
}

// EvaluateWin checks only the lines passing through the piece just placed at
// (row, col). It returns the first run of ToWin or more cells, origin first,
// then the positive direction and then the negative one by increasing distance.
func EvaluateWin(b *Board, row, col int, player PlayerID) WinningLine {
	for _, d := range directions {
		line := WinningLine{{Row: row, Col: col}}
		line = b.walk(line, row, col, d.Row, d.Col, player)
		line = b.walk(line, row, col, -d.Row, -d.Col, player)
		if len(line) >= ToWin {
			return line
		}
	}
	return nil
}

func (b *Board) walk(line WinningLine, row, col, dr, dc int, player PlayerID) WinningLine {
	for i := 1; i < ToWin; i++ {
		r, c := row+dr*i, col+dc*i
		if !b.inBounds(r, c) || b[r][c] != player {
			break
		}
		line = append(line, Coord{Row: r, Col: c})
	}
	return line
}
