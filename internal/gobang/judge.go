package gobang

// windows lists, per line direction, the three 3-cell windows that contain a
// freshly placed stone. Each window names the two other cells as row/column offsets.
var windows = [4][3][2][2]int{
	// vertical
	{
		{{-1, 0}, {1, 0}},
		{{-2, 0}, {-1, 0}},
		{{1, 0}, {2, 0}},
	},
	// horizontal
	{
		{{0, -1}, {0, 1}},
		{{0, -2}, {0, -1}},
		{{0, 1}, {0, 2}},
	},
	// slash
	{
		{{1, -1}, {-1, 1}},
		{{2, -2}, {1, -1}},
		{{-1, 1}, {-2, 2}},
	},
	// backslash
	{
		{{-1, -1}, {1, 1}},
		{{-2, -2}, {-1, -1}},
		{{1, 1}, {2, 2}},
	},
}

// Judge plays the next stone at (x, y) and judges the result.
// A rejected move returns ErrInvalidCell or ErrCellOccupied and leaves the board untouched.
//
// The decision keeps the historical rule: completing exactly one line reports
// the mover's opponent as the winner, completing two or more reports the mover.
func (that *Board) Judge(x, y int) (Outcome, error) {
	if err := that.move(x, y); err != nil {
		return OutcomeNone, err
	}

	turn := that.cells[x+margin][y+margin]

	switch lines := that.lines(x+margin, y+margin, turn); lines {
	case 0:
		if that.Full() {
			return OutcomeTie, nil
		}
		return OutcomeNone, nil
	case 1:
		return outcomeOf(turn.Opposite()), nil
	default:
		return outcomeOf(turn), nil
	}
}

// lines counts directions through the internal cell (i, j) holding three
// consecutive turn stones. Counting stops at two.
func (that *Board) lines(i, j int, turn Stone) int {
	lines := 0

	for _, direction := range windows {
		for _, window := range direction {
			if that.cells[i+window[0][0]][j+window[0][1]] == turn &&
				that.cells[i+window[1][0]][j+window[1][1]] == turn {
				lines++
				break
			}
		}

		if lines >= 2 {
			break
		}
	}

	return lines
}
