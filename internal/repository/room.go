package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gobang-backend/internal/entity"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
	ErrTxConflict   = errors.New("room changed during transaction")
)

const (
	roomKeyPrefix = "room:"
	scanBatch     = 100
)

// Stored field names. A missing Guest/GuestName/Game field is meaningful state.
const (
	fieldOwner     = "Owner"
	fieldOwnerName = "OwnerName"
	fieldGuest     = "Guest"
	fieldGuestName = "GuestName"
	fieldGame      = "Game"
)

// TxFunc checks preconditions on a loaded room and mutates it.
// A non-nil error aborts the transaction without writing.
type TxFunc func(room *entity.Room) error

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)

	// Update commits fn's changes only if the room was not modified by anyone
	// else since it was loaded. A lost race returns ErrTxConflict.
	Update(ctx context.Context, id string, fn TxFunc) error
	Delete(ctx context.Context, id string, fn TxFunc) error

	All(ctx context.Context) iter.Seq2[*entity.Room, error]
}

type dbRoom struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomRepository stores rooms as Redis hashes. A positive ttl is refreshed
// on every write so that rooms abandoned by a crashed server expire.
func NewRoomRepository(client *redis.Client, ttl time.Duration) RoomRepository {
	return &dbRoom{
		client: client,
		ttl:    ttl,
	}
}

func roomKey(id string) string {
	return roomKeyPrefix + id
}

func (that *dbRoom) Create(ctx context.Context, room *entity.Room) error {
	key := roomKey(room.ID)

	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to check room: %w", err)
		}

		if exists > 0 {
			return ErrRoomExists
		}

		return that.commit(ctx, tx, func(pipe redis.Pipeliner) {
			that.write(ctx, pipe, key, room)
		})
	}, key)

	return txError(err)
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	return that.get(ctx, that.client, id)
}

func (that *dbRoom) Update(ctx context.Context, id string, fn TxFunc) error {
	key := roomKey(id)

	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		room, err := that.get(ctx, tx, id)
		if err != nil {
			return err
		}

		if err = fn(room); err != nil {
			return err
		}

		return that.commit(ctx, tx, func(pipe redis.Pipeliner) {
			that.write(ctx, pipe, key, room)
		})
	}, key)

	return txError(err)
}

func (that *dbRoom) Delete(ctx context.Context, id string, fn TxFunc) error {
	key := roomKey(id)

	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		room, err := that.get(ctx, tx, id)
		if err != nil {
			return err
		}

		if err = fn(room); err != nil {
			return err
		}

		return that.commit(ctx, tx, func(pipe redis.Pipeliner) {
			pipe.Del(ctx, key)
		})
	}, key)

	return txError(err)
}

// All walks the keyspace lazily. Rooms removed while scanning are skipped.
func (that *dbRoom) All(ctx context.Context) iter.Seq2[*entity.Room, error] {
	return func(yield func(*entity.Room, error) bool) {
		keys := that.client.Scan(ctx, 0, roomKeyPrefix+"*", scanBatch).Iterator()

		for keys.Next(ctx) {
			room, err := that.get(ctx, that.client, strings.TrimPrefix(keys.Val(), roomKeyPrefix))
			if errors.Is(err, ErrRoomNotFound) {
				continue
			}

			if !yield(room, err) || err != nil {
				return
			}
		}

		if err := keys.Err(); err != nil {
			yield(nil, fmt.Errorf("failed to scan rooms: %w", err))
		}
	}
}

// hashReader is satisfied by both *redis.Client and *redis.Tx.
type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func (that *dbRoom) get(ctx context.Context, cmd hashReader, id string) (*entity.Room, error) {
	values, err := cmd.HGetAll(ctx, roomKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	if len(values) == 0 {
		return nil, ErrRoomNotFound
	}

	room := &entity.Room{
		ID:        id,
		Owner:     values[fieldOwner],
		OwnerName: values[fieldOwnerName],
		Guest:     values[fieldGuest],
		GuestName: values[fieldGuestName],
	}

	if game, ok := values[fieldGame]; ok {
		room.Game = []byte(game)
	}

	return room, nil
}

// write queues the full room state: present fields are set, absent ones deleted.
func (that *dbRoom) write(ctx context.Context, pipe redis.Pipeliner, key string, room *entity.Room) {
	set := []any{
		fieldOwner, room.Owner,
		fieldOwnerName, room.OwnerName,
	}
	var absent []string

	if room.HasGuest() {
		set = append(set, fieldGuest, room.Guest, fieldGuestName, room.GuestName)
	} else {
		absent = append(absent, fieldGuest, fieldGuestName)
	}

	if room.HasGame() {
		set = append(set, fieldGame, room.Game)
	} else {
		absent = append(absent, fieldGame)
	}

	pipe.HSet(ctx, key, set...)

	if len(absent) > 0 {
		pipe.HDel(ctx, key, absent...)
	}

	if that.ttl > 0 {
		pipe.Expire(ctx, key, that.ttl)
	}
}

// commit runs queue inside MULTI/EXEC. EXEC fails with redis.TxFailedErr if a
// watched key changed.
func (that *dbRoom) commit(ctx context.Context, tx *redis.Tx, queue func(pipe redis.Pipeliner)) error {
	_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		queue(pipe)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to commit room: %w", err)
	}

	return nil
}

func txError(err error) error {
	if errors.Is(err, redis.TxFailedErr) {
		return ErrTxConflict
	}

	return err
}
