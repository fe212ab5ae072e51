package repository

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/rocketscienceinc/gobang-backend/internal/entity"
)

type memEntry struct {
	mu      sync.RWMutex
	room    *entity.Room
	removed bool
}

// memRoom keeps rooms in process memory. Transactions on one room run under
// that room's write lock, so they are atomic and never conflict. Reads share
// the lock and never wait for each other.
type memRoom struct {
	mu    sync.RWMutex
	rooms map[string]*memEntry
}

func NewMemoryRoomRepository() RoomRepository {
	return &memRoom{
		rooms: make(map[string]*memEntry),
	}
}

func (that *memRoom) Create(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[room.ID]; ok {
		return ErrRoomExists
	}

	that.rooms[room.ID] = &memEntry{room: room.Clone()}

	return nil
}

func (that *memRoom) GetByID(_ context.Context, id string) (*entity.Room, error) {
	entry, err := that.rlock(id)
	if err != nil {
		return nil, err
	}
	defer entry.mu.RUnlock()

	return entry.room.Clone(), nil
}

func (that *memRoom) Update(_ context.Context, id string, fn TxFunc) error {
	entry, err := that.lock(id)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()

	room := entry.room.Clone()
	if err = fn(room); err != nil {
		return err
	}

	entry.room = room

	return nil
}

func (that *memRoom) Delete(_ context.Context, id string, fn TxFunc) error {
	entry, err := that.lock(id)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()

	if err = fn(entry.room.Clone()); err != nil {
		return err
	}

	entry.removed = true

	that.mu.Lock()
	delete(that.rooms, id)
	that.mu.Unlock()

	return nil
}

func (that *memRoom) All(_ context.Context) iter.Seq2[*entity.Room, error] {
	return func(yield func(*entity.Room, error) bool) {
		that.mu.RLock()
		ids := make([]string, 0, len(that.rooms))
		for id := range that.rooms {
			ids = append(ids, id)
		}
		that.mu.RUnlock()

		slices.Sort(ids)

		for _, id := range ids {
			entry, err := that.rlock(id)
			if err != nil {
				continue
			}

			room := entry.room.Clone()
			entry.mu.RUnlock()

			if !yield(room, nil) {
				return
			}
		}
	}
}

// lock returns the live entry for id with its mutex held.
func (that *memRoom) lock(id string) (*memEntry, error) {
	that.mu.RLock()
	entry, ok := that.rooms[id]
	that.mu.RUnlock()

	if !ok {
		return nil, ErrRoomNotFound
	}

	entry.mu.Lock()
	if entry.removed {
		entry.mu.Unlock()
		return nil, ErrRoomNotFound
	}

	return entry, nil
}

func (that *memRoom) rlock(id string) (*memEntry, error) {
	that.mu.RLock()
	entry, ok := that.rooms[id]
	that.mu.RUnlock()

	if !ok {
		return nil, ErrRoomNotFound
	}

	entry.mu.RLock()
	if entry.removed {
		entry.mu.RUnlock()
		return nil, ErrRoomNotFound
	}

	return entry, nil
}
