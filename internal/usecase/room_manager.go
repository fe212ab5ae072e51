package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/gobang-backend/internal/apperror"
	"github.com/rocketscienceinc/gobang-backend/internal/entity"
	"github.com/rocketscienceinc/gobang-backend/internal/gobang"
	"github.com/rocketscienceinc/gobang-backend/internal/repository"
)

type roomRepo interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, id string, fn repository.TxFunc) error
	Delete(ctx context.Context, id string, fn repository.TxFunc) error
	All(ctx context.Context) iter.Seq2[*entity.Room, error]
}

type Option func(*RoomManager)

// WithIDGenerator replaces uuid.NewString as the source of room ids.
func WithIDGenerator(gen func() string) Option {
	return func(that *RoomManager) {
		that.newID = gen
	}
}

// RoomManager coordinates rooms and their games over a shared room store.
// It keeps no state of its own; every race is settled by the store's
// conditional transactions.
//
// Boolean results report whether the operation happened. A false result with
// a nil error is a rejection, either a failed precondition or a lost race.
// Errors are reserved for store failures and corrupt games.
type RoomManager struct {
	logger *slog.Logger
	repo   roomRepo
	newID  func() string
}

func NewRoomManager(logger *slog.Logger, repo roomRepo, opts ...Option) *RoomManager {
	manager := &RoomManager{
		logger: logger.With("component", "room-manager"),
		repo:   repo,
		newID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

// CreateRoom stores a new room owned by owner. An empty owner is refused with
// apperror.ErrNoIdentity.
func (that *RoomManager) CreateRoom(ctx context.Context, owner, ownerName string) (string, error) {
	if owner == "" {
		return "", apperror.ErrNoIdentity
	}

	room := entity.NewRoom(that.newID(), owner, ownerName)

	if err := that.repo.Create(ctx, room); err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}

	that.logger.Debug("room created", "roomID", room.ID, "caller", owner)

	return room.ID, nil
}

func (that *RoomManager) JoinRoom(ctx context.Context, id, guest, guestName string) (bool, error) {
	err := that.repo.Update(ctx, id, func(room *entity.Room) error {
		return room.Join(guest, guestName)
	})

	return that.verdict("JoinRoom", id, guest, err)
}

func (that *RoomManager) LeaveRoom(ctx context.Context, id, guest string) (bool, error) {
	err := that.repo.Update(ctx, id, func(room *entity.Room) error {
		return room.Leave(guest)
	})

	return that.verdict("LeaveRoom", id, guest, err)
}

func (that *RoomManager) DeleteRoom(ctx context.Context, id, owner string) (bool, error) {
	err := that.repo.Delete(ctx, id, func(room *entity.Room) error {
		return room.CanDelete(owner)
	})

	return that.verdict("DeleteRoom", id, owner, err)
}

func (that *RoomManager) StartGame(ctx context.Context, id, owner string, rows, columns int) (bool, error) {
	if !validSide(rows) || !validSide(columns) {
		return that.verdict("StartGame", id, owner, apperror.ErrInvalidBoardSize)
	}

	board, err := gobang.NewDefault(uint8(rows), uint8(columns))
	if err != nil {
		return that.verdict("StartGame", id, owner, fmt.Errorf("%w: %w", apperror.ErrInvalidBoardSize, err))
	}

	data, err := board.MarshalBinary()
	if err != nil {
		return false, fmt.Errorf("failed to encode board: %w", err)
	}

	err = that.repo.Update(ctx, id, func(room *entity.Room) error {
		return room.Start(owner, data)
	})

	return that.verdict("StartGame", id, owner, err)
}

func (that *RoomManager) EndGame(ctx context.Context, id, caller string) (bool, error) {
	err := that.repo.Update(ctx, id, func(room *entity.Room) error {
		return room.End(caller)
	})

	return that.verdict("EndGame", id, caller, err)
}

// GetBoard returns the visible rows of the room's current board. The sequence
// is empty when the room or its game does not exist.
func (that *RoomManager) GetBoard(ctx context.Context, id string) (iter.Seq[[]gobang.Stone], error) {
	room, err := that.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return noRows, nil
	}

	if err != nil {
		return noRows, fmt.Errorf("failed to get room: %w", err)
	}

	if !room.HasGame() {
		return noRows, nil
	}

	board, err := gobang.Decode(room.Game)
	if err != nil {
		return noRows, that.dropCorruptGame(ctx, id, room.Game, err)
	}

	return board.Grid(), nil
}

// MakeMove plays (x, y) for the caller. A nil result with a nil error means the
// move was rejected. The caller ends the game once Result is not OutcomeNone.
func (that *RoomManager) MakeMove(ctx context.Context, id, caller string, isOwner bool, x, y int) (*entity.MoveInfo, error) {
	var (
		info    *entity.MoveInfo
		corrupt []byte
	)

	err := that.repo.Update(ctx, id, func(room *entity.Room) error {
		if !room.HasGame() {
			return apperror.ErrGameIsNotStarted
		}

		color := entity.ColorOf(isOwner)
		if room.PlayerFor(color) != caller || caller == "" {
			return apperror.ErrNotParticipant
		}

		board, err := gobang.Decode(room.Game)
		if err != nil {
			corrupt = room.Game
			return err
		}

		if board.NextTurn() != color {
			return apperror.ErrNotYourTurn
		}

		outcome, err := board.Judge(x, y)
		if err != nil {
			return fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
		}

		if room.Game, err = board.MarshalBinary(); err != nil {
			return fmt.Errorf("failed to encode board: %w", err)
		}

		info = &entity.MoveInfo{X: x, Y: y, Turn: color, Result: outcome}

		return nil
	})

	if corrupt != nil {
		return nil, that.dropCorruptGame(ctx, id, corrupt, err)
	}

	if ok, err := that.verdict("MakeMove", id, caller, err); !ok {
		return nil, err
	}

	return info, nil
}

// GetRooms lists every stored room lazily.
func (that *RoomManager) GetRooms(ctx context.Context) iter.Seq2[entity.RoomInfo, error] {
	return func(yield func(entity.RoomInfo, error) bool) {
		for room, err := range that.repo.All(ctx) {
			if err != nil {
				yield(entity.RoomInfo{}, fmt.Errorf("failed to list rooms: %w", err))
				return
			}

			if !yield(room.Info(), nil) {
				return
			}
		}
	}
}

// dropCorruptGame clears a game that failed to decode, unless it was replaced
// in the meantime, and reports apperror.ErrCorruptGame.
func (that *RoomManager) dropCorruptGame(ctx context.Context, id string, game []byte, cause error) error {
	log := that.logger.With("method", "dropCorruptGame", "roomID", id)
	log.Error("stored game is corrupt", "error", cause)

	err := that.repo.Update(ctx, id, func(room *entity.Room) error {
		if !bytes.Equal(room.Game, game) {
			return apperror.ErrGameIsNotStarted
		}

		room.Game = nil

		return nil
	})
	if err != nil && !isRejection(err) {
		log.Error("failed to clear corrupt game", "error", err)
		return fmt.Errorf("%w: %w", apperror.ErrCorruptGame, err)
	}

	return apperror.ErrCorruptGame
}

func (that *RoomManager) verdict(method, id, caller string, err error) (bool, error) {
	if err == nil {
		return true, nil
	}

	log := that.logger.With("method", method, "roomID", id, "caller", caller)

	if isRejection(err) {
		log.Debug("rejected", "reason", err)
		return false, nil
	}

	log.Error("store failure", "error", err)

	return false, fmt.Errorf("failed to %s: %w", method, err)
}

func isRejection(err error) bool {
	return errors.Is(err, apperror.ErrRejected) ||
		errors.Is(err, repository.ErrRoomNotFound) ||
		errors.Is(err, repository.ErrTxConflict)
}

func validSide(n int) bool {
	return n >= 1 && n <= math.MaxUint8
}

func noRows(func([]gobang.Stone) bool) {}
