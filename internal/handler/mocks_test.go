package handler

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/receipt"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) SignUp(ctx context.Context, req service.SignUpRequest) (*model.UserAccount, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*model.UserAccount)
	return u, args.Error(1)
}

func (m *mockAccounts) SignIn(ctx context.Context, username, password string) (*model.UserAccount, error) {
	args := m.Called(ctx, username, password)
	u, _ := args.Get(0).(*model.UserAccount)
	return u, args.Error(1)
}

func (m *mockAccounts) Account(ctx context.Context, id uint64) (*model.UserAccount, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.UserAccount)
	return u, args.Error(1)
}

func (m *mockAccounts) DeleteAccount(ctx context.Context, username, password string, confirm func(*model.UserAccount) bool) error {
	args := m.Called(ctx, username, password)
	if u, ok := args.Get(0).(*model.UserAccount); ok && !confirm(u) {
		return service.ErrNotConfirmed
	}
	return args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return m.Called(ctx, userID, tokenHash, exp).Error(0)
}

func (m *mockTokens) ConsumeRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	args := m.Called(ctx, tokenHash, now)
	id, _ := args.Get(0).(uint64)
	return id, args.Error(1)
}

func (m *mockTokens) RevokeByHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *mockTokens) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) Programme(date time.Time) ([]model.Movie, error) {
	args := m.Called(date)
	mv, _ := args.Get(0).([]model.Movie)
	return mv, args.Error(1)
}

func (m *mockBookings) SeatMap(ctx context.Context, key model.BookingKey) ([model.GridSize][model.GridSize]model.SeatState, error) {
	args := m.Called(ctx, key)
	g, _ := args.Get(0).([model.GridSize][model.GridSize]model.SeatState)
	return g, args.Error(1)
}

func (m *mockBookings) BookSeats(ctx context.Context, req service.BookingRequest, seats []string) (*service.Confirmation, error) {
	args := m.Called(ctx, req, seats)
	cf, _ := args.Get(0).(*service.Confirmation)
	return cf, args.Error(1)
}

func (m *mockBookings) CancelSeat(ctx context.Context, key model.BookingKey, seat model.SeatID, phone string) (*service.Confirmation, error) {
	args := m.Called(ctx, key, seat, phone)
	cf, _ := args.Get(0).(*service.Confirmation)
	return cf, args.Error(1)
}

func (m *mockBookings) OwnedTickets(ctx context.Context, phone string) ([]model.BookingRecord, error) {
	args := m.Called(ctx, phone)
	recs, _ := args.Get(0).([]model.BookingRecord)
	return recs, args.Error(1)
}

func (m *mockBookings) Find(ctx context.Context, key model.BookingKey) (*model.BookingRecord, error) {
	args := m.Called(ctx, key)
	r, _ := args.Get(0).(*model.BookingRecord)
	return r, args.Error(1)
}

type stubRenderer struct {
	got receipt.Receipt
}

func (s *stubRenderer) TicketPDF(w io.Writer, r receipt.Receipt) error {
	s.got = r
	_, err := io.WriteString(w, "%PDF-1.3 stub")
	return err
}
