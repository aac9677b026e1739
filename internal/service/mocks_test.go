package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, u *model.UserAccount) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*model.UserAccount, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.UserAccount)
	return u, args.Error(1)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uint64) (*model.UserAccount, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.UserAccount)
	return u, args.Error(1)
}

func (m *mockUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) PhoneExists(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) Delete(ctx context.Context, id uint64, username string) error {
	args := m.Called(ctx, id, username)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
