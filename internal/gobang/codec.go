package gobang

import (
	"errors"
	"fmt"
)

// headerSize is rows, columns and next turn.
const headerSize = 3

var ErrMalformed = errors.New("malformed board")

// MarshalBinary encodes the board as
// [rows, columns, next, cell(0,0), cell(0,1), ..., cell(rows-1, columns-1)].
// Only the playing field is encoded; stones use their Stone values.
func (that *Board) MarshalBinary() ([]byte, error) {
	data := make([]byte, headerSize, headerSize+int(that.rows)*int(that.columns))
	data[0] = that.rows
	data[1] = that.columns
	data[2] = byte(that.next)

	for row := range that.Grid() {
		for _, stone := range row {
			data = append(data, byte(stone))
		}
	}

	return data, nil
}

// UnmarshalBinary replaces the board with the one encoded in data.
func (that *Board) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("%w: %d bytes", ErrMalformed, len(data))
	}

	rows, columns, next := data[0], data[1], Stone(data[2])
	if rows == 0 || columns == 0 {
		return fmt.Errorf("%w: %w: %dx%d", ErrMalformed, ErrInvalidSize, rows, columns)
	}

	if want := int(rows)*int(columns) + headerSize; len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrMalformed, len(data), want)
	}

	board, err := New(rows, columns, next)
	if err != nil {
		return fmt.Errorf("%w: next turn: %w", ErrMalformed, err)
	}

	for i, value := range data[headerSize:] {
		stone := Stone(value)
		if stone != Empty && !stone.IsColor() {
			return fmt.Errorf("%w: %w %d at offset %d", ErrMalformed, ErrInvalidStone, value, i+headerSize)
		}

		board.cells[i/int(columns)+margin][i%int(columns)+margin] = stone
	}

	*that = *board

	return nil
}

// Decode builds a board from its binary encoding.
func Decode(data []byte) (*Board, error) {
	board := &Board{}
	if err := board.UnmarshalBinary(data); err != nil {
		return nil, err
	}

	return board, nil
}
