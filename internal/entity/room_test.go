package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gobang-backend/internal/apperror"
	"github.com/rocketscienceinc/gobang-backend/internal/gobang"
)

var board = []byte{1, 1, 1, 0}

func roomWithGuest() *Room {
	room := NewRoom("r1", "owner", "Olga")
	room.Guest = "guest"
	room.GuestName = "Gleb"

	return room
}

func TestRoom_Join(t *testing.T) {
	t.Run("Seats the first guest", func(t *testing.T) {
		// Given: a fresh room
		room := NewRoom("r1", "owner", "Olga")

		// When: a guest joins
		err := room.Join("guest", "Gleb")

		// Then: guest fields are set
		require.NoError(t, err)
		assert.True(t, room.HasGuest())
		assert.Equal(t, "guest", room.Guest)
		assert.Equal(t, "Gleb", room.GuestName)
	})

	t.Run("Rejects a second guest", func(t *testing.T) {
		room := roomWithGuest()

		err := room.Join("other", "Oleg")

		require.ErrorIs(t, err, apperror.ErrRoomFull)
		require.ErrorIs(t, err, apperror.ErrRejected)
		assert.Equal(t, "guest", room.Guest)
	})

	t.Run("Rejects an empty identity", func(t *testing.T) {
		// Given: a fresh room
		room := NewRoom("r1", "owner", "Olga")

		// When: a guest without identity joins
		err := room.Join("", "Ghost")

		// Then: nobody is seated and no name is left behind
		require.ErrorIs(t, err, apperror.ErrNoIdentity)
		require.ErrorIs(t, err, apperror.ErrRejected)
		assert.False(t, room.HasGuest())
		assert.Empty(t, room.GuestName)
	})

	t.Run("Rejects the owner", func(t *testing.T) {
		room := NewRoom("r1", "owner", "Olga")

		require.ErrorIs(t, room.Join("owner", "Olga"), apperror.ErrOwnRoom)
		assert.False(t, room.HasGuest())
	})

	t.Run("Rejects while a game is running", func(t *testing.T) {
		room := NewRoom("r1", "owner", "Olga")
		room.Game = board

		require.ErrorIs(t, room.Join("guest", "Gleb"), apperror.ErrGameInProgress)
	})
}

func TestRoom_Leave(t *testing.T) {
	t.Run("Clears the guest", func(t *testing.T) {
		room := roomWithGuest()

		require.NoError(t, room.Leave("guest"))
		assert.False(t, room.HasGuest())
		assert.Empty(t, room.GuestName)
	})

	t.Run("Rejects anyone but the guest", func(t *testing.T) {
		room := roomWithGuest()

		require.ErrorIs(t, room.Leave("owner"), apperror.ErrNotRoomGuest)
		require.ErrorIs(t, room.Leave(""), apperror.ErrNotRoomGuest)
		assert.True(t, room.HasGuest())
	})

	t.Run("Rejects an empty identity on an empty seat", func(t *testing.T) {
		room := NewRoom("r1", "owner", "Olga")

		require.ErrorIs(t, room.Leave(""), apperror.ErrNotRoomGuest)
	})

	t.Run("Rejects during a game", func(t *testing.T) {
		room := roomWithGuest()
		room.Game = board

		require.ErrorIs(t, room.Leave("guest"), apperror.ErrGameInProgress)
	})
}

func TestRoom_StartAndEnd(t *testing.T) {
	t.Run("Start needs owner, guest and no game", func(t *testing.T) {
		room := NewRoom("r1", "owner", "Olga")
		require.ErrorIs(t, room.Start("owner", board), apperror.ErrNoGuest)

		room = roomWithGuest()
		require.ErrorIs(t, room.Start("guest", board), apperror.ErrNotRoomOwner)

		require.NoError(t, room.Start("owner", board))
		assert.True(t, room.HasGame())

		require.ErrorIs(t, room.Start("owner", board), apperror.ErrGameInProgress)
	})

	t.Run("End is allowed to both players once", func(t *testing.T) {
		for _, caller := range []string{"owner", "guest"} {
			room := roomWithGuest()
			room.Game = board

			require.NoError(t, room.End(caller))
			assert.False(t, room.HasGame())
			require.ErrorIs(t, room.End(caller), apperror.ErrGameIsNotStarted)
		}
	})

	t.Run("End rejects outsiders", func(t *testing.T) {
		room := roomWithGuest()
		room.Game = board

		require.ErrorIs(t, room.End("spectator"), apperror.ErrNotParticipant)
		assert.True(t, room.HasGame())
	})
}

func TestRoom_Helpers(t *testing.T) {
	room := roomWithGuest()
	room.Game = board

	assert.Equal(t, "owner", room.PlayerFor(gobang.Black))
	assert.Equal(t, "guest", room.PlayerFor(gobang.White))
	assert.Empty(t, room.PlayerFor(gobang.Empty))

	assert.Equal(t, gobang.Black, ColorOf(true))
	assert.Equal(t, gobang.White, ColorOf(false))

	assert.Equal(t, RoomInfo{ID: "r1", OwnerName: "Olga", GuestName: "Gleb", GameStarted: true}, room.Info())

	clone := room.Clone()
	clone.Game[0] = 9
	assert.Equal(t, byte(1), room.Game[0])

	assert.Nil(t, NewRoom("r2", "o", "O").Clone().Game)
}

func TestEvent_RoomScoped(t *testing.T) {
	assert.True(t, MadeMove("r1", MoveInfo{X: 1, Y: 2, Turn: gobang.Black}).RoomScoped())

	for _, ev := range []Event{
		RoomCreated("r1", "Olga"), JoinedRoom("r1", "Gleb"), LeftRoom("r1"),
		RoomDeleted("r1"), GameStarted("r1"), GameEnded("r1"),
	} {
		assert.False(t, ev.RoomScoped(), ev.Kind)
	}
}
