package gobang

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_MarshalBinary(t *testing.T) {
	t.Run("Encodes header and playing field row-major", func(t *testing.T) {
		// Given: a 2x3 board where black played (0,1) and white (1,2)
		board, err := NewDefault(2, 3)
		require.NoError(t, err)
		play(t, board, point{0, 1}, point{1, 2})

		// When: it is encoded
		data, err := board.MarshalBinary()
		require.NoError(t, err)

		// Then: the layout is rows, columns, next, cells
		assert.Equal(t, []byte{2, 3, 1, 0, 1, 0, 0, 0, 2}, data)
	})

	t.Run("Encodes rows*columns+3 bytes", func(t *testing.T) {
		board, err := NewDefault(255, 255)
		require.NoError(t, err)

		data, err := board.MarshalBinary()
		require.NoError(t, err)

		assert.Len(t, data, 255*255+3)
	})
}

func TestDecode(t *testing.T) {
	t.Run("Round trip keeps dimensions, turn and every cell", func(t *testing.T) {
		// Given: a board in the middle of a game
		board, err := NewDefault(4, 5)
		require.NoError(t, err)
		play(t, board, point{0, 0}, point{3, 4}, point{2, 2}, point{1, 3}, point{3, 0})

		data, err := board.MarshalBinary()
		require.NoError(t, err)

		// When: it is decoded
		decoded, err := Decode(data)
		require.NoError(t, err)

		// Then: the decoded board is identical
		assert.Equal(t, board.Rows(), decoded.Rows())
		assert.Equal(t, board.Columns(), decoded.Columns())
		assert.Equal(t, board.NextTurn(), decoded.NextTurn())
		assert.Equal(t, slices.Collect(board.Grid()), slices.Collect(decoded.Grid()))
		assert.Equal(t, board, decoded)
	})

	t.Run("Decoded board keeps playing", func(t *testing.T) {
		board, err := Decode([]byte{3, 3, 2, 1, 0, 0, 0, 0, 0, 0, 0, 0})
		require.NoError(t, err)

		_, err = board.Judge(0, 0)
		require.ErrorIs(t, err, ErrCellOccupied)

		outcome, err := board.Judge(1, 1)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNone, outcome)
		assert.Equal(t, White, board.At(1, 1))
		assert.Equal(t, Black, board.NextTurn())
	})

	cases := []struct {
		name string
		data []byte
	}{
		{name: "nil", data: nil},
		{name: "shorter than header", data: []byte{1, 1}},
		{name: "zero rows", data: []byte{0, 3, 1}},
		{name: "zero columns", data: []byte{3, 0, 1}},
		{name: "missing cells", data: []byte{2, 2, 1, 0, 0, 0}},
		{name: "extra cells", data: []byte{1, 1, 1, 0, 0}},
		{name: "empty next turn", data: []byte{1, 1, 0, 0}},
		{name: "unknown next turn", data: []byte{1, 1, 3, 0}},
		{name: "unknown cell", data: []byte{1, 2, 1, 0, 7}},
	}

	for _, tc := range cases {
		t.Run("Rejects "+tc.name, func(t *testing.T) {
			board, err := Decode(tc.data)

			require.ErrorIs(t, err, ErrMalformed)
			assert.Nil(t, board)
		})
	}

	t.Run("Failed unmarshal leaves the receiver untouched", func(t *testing.T) {
		board, err := NewDefault(2, 2)
		require.NoError(t, err)
		before := snapshot(t, board)

		err = board.UnmarshalBinary([]byte{2, 2, 1})

		require.ErrorIs(t, err, ErrMalformed)
		assert.Equal(t, before, snapshot(t, board))
	})
}
