package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gobang-backend/internal/apperror"
	"github.com/rocketscienceinc/gobang-backend/internal/entity"
)

type repoFactory func(t *testing.T) (context.Context, RoomRepository)

// runRoomRepositoryContract checks behaviour every backend must share.
func runRoomRepositoryContract(t *testing.T, newRepo repoFactory) {
	t.Run("Create and GetByID", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: a new room
		room := entity.NewRoom("r1", "owner", "Olga")

		// When: it is created and read back
		require.NoError(t, repo.Create(ctx, room))
		stored, err := repo.GetByID(ctx, "r1")

		// Then: the stored room has no guest and no game
		require.NoError(t, err)
		assert.Equal(t, room, stored)
		assert.False(t, stored.HasGuest())
		assert.Nil(t, stored.Game)
	})

	t.Run("Create rejects a taken id", func(t *testing.T) {
		ctx, repo := newRepo(t)

		require.NoError(t, repo.Create(ctx, entity.NewRoom("r1", "owner", "Olga")))

		err := repo.Create(ctx, entity.NewRoom("r1", "other", "Oleg"))

		require.ErrorIs(t, err, ErrRoomExists)
		stored, err := repo.GetByID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "owner", stored.Owner)
	})

	t.Run("GetByID of a missing room", func(t *testing.T) {
		ctx, repo := newRepo(t)

		_, err := repo.GetByID(ctx, "missing")

		require.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("Update commits every field", func(t *testing.T) {
		ctx, repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, entity.NewRoom("r1", "owner", "Olga")))

		// When: a guest joins and a game starts
		err := repo.Update(ctx, "r1", func(room *entity.Room) error {
			if err := room.Join("guest", "Gleb"); err != nil {
				return err
			}
			return room.Start("owner", []byte{1, 1, 1, 0})
		})

		// Then: both changes are stored
		require.NoError(t, err)
		stored, err := repo.GetByID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "guest", stored.Guest)
		assert.Equal(t, "Gleb", stored.GuestName)
		assert.Equal(t, []byte{1, 1, 1, 0}, stored.Game)
	})

	t.Run("Update removes cleared fields", func(t *testing.T) {
		ctx, repo := newRepo(t)
		room := entity.NewRoom("r1", "owner", "Olga")
		room.Guest, room.GuestName = "guest", "Gleb"
		room.Game = []byte{1, 1, 1, 0}
		require.NoError(t, repo.Create(ctx, room))

		err := repo.Update(ctx, "r1", func(room *entity.Room) error {
			if err := room.End("guest"); err != nil {
				return err
			}
			return room.Leave("guest")
		})

		require.NoError(t, err)
		stored, err := repo.GetByID(ctx, "r1")
		require.NoError(t, err)
		assert.False(t, stored.HasGuest())
		assert.Empty(t, stored.GuestName)
		assert.False(t, stored.HasGame())
	})

	t.Run("Update aborts on a rejected precondition", func(t *testing.T) {
		ctx, repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, entity.NewRoom("r1", "owner", "Olga")))

		// When: fn mutates the room and then fails
		err := repo.Update(ctx, "r1", func(room *entity.Room) error {
			room.Guest = "sneaky"
			return apperror.ErrRoomFull
		})

		// Then: the error passes through and nothing is written
		require.ErrorIs(t, err, apperror.ErrRoomFull)
		stored, err := repo.GetByID(ctx, "r1")
		require.NoError(t, err)
		assert.False(t, stored.HasGuest())
	})

	t.Run("Update of a missing room", func(t *testing.T) {
		ctx, repo := newRepo(t)

		called := false
		err := repo.Update(ctx, "missing", func(*entity.Room) error {
			called = true
			return nil
		})

		require.ErrorIs(t, err, ErrRoomNotFound)
		assert.False(t, called)
	})

	t.Run("Delete removes the room", func(t *testing.T) {
		ctx, repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, entity.NewRoom("r1", "owner", "Olga")))

		require.ErrorIs(t, repo.Delete(ctx, "r1", func(room *entity.Room) error {
			return room.CanDelete("guest")
		}), apperror.ErrNotRoomOwner)
		_, err := repo.GetByID(ctx, "r1")
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, "r1", func(room *entity.Room) error {
			return room.CanDelete("owner")
		}))
		_, err = repo.GetByID(ctx, "r1")
		require.ErrorIs(t, err, ErrRoomNotFound)

		// the id can be reused afterwards
		require.NoError(t, repo.Create(ctx, entity.NewRoom("r1", "owner", "Olga")))
	})

	t.Run("All lists every room", func(t *testing.T) {
		ctx, repo := newRepo(t)
		for i := range 5 {
			require.NoError(t, repo.Create(ctx, entity.NewRoom(fmt.Sprintf("r%d", i), "owner", "Olga")))
		}

		ids := make([]string, 0, 5)
		for room, err := range repo.All(ctx) {
			require.NoError(t, err)
			ids = append(ids, room.ID)
		}

		assert.ElementsMatch(t, []string{"r0", "r1", "r2", "r3", "r4"}, ids)
	})

	t.Run("All stops when the consumer does", func(t *testing.T) {
		ctx, repo := newRepo(t)
		for i := range 3 {
			require.NoError(t, repo.Create(ctx, entity.NewRoom(fmt.Sprintf("r%d", i), "owner", "Olga")))
		}

		seen := 0
		for range repo.All(ctx) {
			seen++
			break
		}

		assert.Equal(t, 1, seen)
	})

	t.Run("Concurrent joins seat exactly one guest", func(t *testing.T) {
		ctx, repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, entity.NewRoom("r1", "owner", "Olga")))

		const guests = 10
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted []string
		)

		for i := range guests {
			wg.Add(1)
			go func() {
				defer wg.Done()

				guest := fmt.Sprintf("guest-%d", i)
				err := repo.Update(ctx, "r1", func(room *entity.Room) error {
					return room.Join(guest, guest)
				})
				if err == nil {
					mu.Lock()
					accepted = append(accepted, guest)
					mu.Unlock()
					return
				}

				if !errors.Is(err, ErrTxConflict) && !errors.Is(err, apperror.ErrRejected) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		require.Len(t, accepted, 1)
		stored, err := repo.GetByID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, accepted[0], stored.Guest)
	})
}
