package gobang

import (
	"errors"
	"iter"
)

// margin is the number of always-empty cells around the playing field.
// Direction lookups reach at most two cells away, so they never leave the grid.
const margin = 2

var (
	ErrInvalidSize  = errors.New("invalid board size")
	ErrInvalidStone = errors.New("invalid stone")
	ErrInvalidCell  = errors.New("invalid cell")
	ErrCellOccupied = errors.New("cell is already occupied")
)

// Stone is a cell value and also the colour whose turn it is.
type Stone uint8

const (
	Empty Stone = iota
	Black
	White
)

func (that Stone) Opposite() Stone {
	switch that {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

func (that Stone) IsColor() bool {
	return that == Black || that == White
}

func (that Stone) String() string {
	switch that {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "empty"
	}
}

// Outcome is the judgement of a single move.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeBlack
	OutcomeWhite
	OutcomeTie
)

func outcomeOf(stone Stone) Outcome {
	switch stone {
	case Black:
		return OutcomeBlack
	case White:
		return OutcomeWhite
	default:
		return OutcomeNone
	}
}

func (that Outcome) String() string {
	switch that {
	case OutcomeBlack:
		return "black"
	case OutcomeWhite:
		return "white"
	case OutcomeTie:
		return "tie"
	default:
		return "none"
	}
}

// Board is a GoBang grid plus whose turn is next.
// External coordinates are 0-based; x selects the row and y the column.
type Board struct {
	rows    uint8
	columns uint8
	cells   [][]Stone
	next    Stone
}

// New creates an empty board where first moves first.
func New(rows, columns uint8, first Stone) (*Board, error) {
	if rows == 0 || columns == 0 {
		return nil, ErrInvalidSize
	}

	if !first.IsColor() {
		return nil, ErrInvalidStone
	}

	cells := make([][]Stone, int(rows)+2*margin)
	for i := range cells {
		cells[i] = make([]Stone, int(columns)+2*margin)
	}

	return &Board{
		rows:    rows,
		columns: columns,
		cells:   cells,
		next:    first,
	}, nil
}

// NewDefault creates an empty board where black moves first.
func NewDefault(rows, columns uint8) (*Board, error) {
	return New(rows, columns, Black)
}

func (that *Board) Rows() uint8 {
	return that.rows
}

func (that *Board) Columns() uint8 {
	return that.columns
}

func (that *Board) NextTurn() Stone {
	return that.next
}

// At returns the stone at external coordinates, Empty when they are off the field.
func (that *Board) At(x, y int) Stone {
	if !that.inField(x, y) {
		return Empty
	}

	return that.cells[x+margin][y+margin]
}

// Full reports whether no playing-field cell is empty.
func (that *Board) Full() bool {
	for i := margin; i < int(that.rows)+margin; i++ {
		for j := margin; j < int(that.columns)+margin; j++ {
			if that.cells[i][j] == Empty {
				return false
			}
		}
	}

	return true
}

// Grid yields copies of the visible rows, top to bottom.
func (that *Board) Grid() iter.Seq[[]Stone] {
	return func(yield func([]Stone) bool) {
		for i := margin; i < int(that.rows)+margin; i++ {
			row := make([]Stone, that.columns)
			copy(row, that.cells[i][margin:int(that.columns)+margin])
			if !yield(row) {
				return
			}
		}
	}
}

func (that *Board) inField(x, y int) bool {
	return x >= 0 && x < int(that.rows) && y >= 0 && y < int(that.columns)
}

// move places the next stone at external coordinates and passes the turn.
func (that *Board) move(x, y int) error {
	if !that.inField(x, y) {
		return ErrInvalidCell
	}

	if that.cells[x+margin][y+margin] != Empty {
		return ErrCellOccupied
	}

	that.cells[x+margin][y+margin] = that.next
	that.next = that.next.Opposite()

	return nil
}
