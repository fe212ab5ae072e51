package usecase

import (
	"context"
	"iter"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/gobang-backend/internal/entity"
	"github.com/rocketscienceinc/gobang-backend/internal/repository"
)

type mockRoomRepo struct {
	mock.Mock
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{}
}

func (that *mockRoomRepo) Create(ctx context.Context, room *entity.Room) error {
	return that.Called(ctx, room).Error(0)
}

func (that *mockRoomRepo) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	args := that.Called(ctx, id)

	room, _ := args.Get(0).(*entity.Room)

	return room, args.Error(1)
}

func (that *mockRoomRepo) Update(ctx context.Context, id string, fn repository.TxFunc) error {
	return that.Called(ctx, id, fn).Error(0)
}

func (that *mockRoomRepo) Delete(ctx context.Context, id string, fn repository.TxFunc) error {
	return that.Called(ctx, id, fn).Error(0)
}

func (that *mockRoomRepo) All(ctx context.Context) iter.Seq2[*entity.Room, error] {
	return that.Called(ctx).Get(0).(iter.Seq2[*entity.Room, error])
}
