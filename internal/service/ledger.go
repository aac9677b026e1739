package service

import (
	"context"
	"errors"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/validate"
)

// MaxTickets bounds the ticket count of one booking.
const MaxTickets = 10

// BookingStore is the persistence the ledger needs.
type BookingStore interface {
	Find(ctx context.Context, key model.BookingKey) (*model.BookingRecord, error)
	Commit(ctx context.Context, key model.BookingKey, seats []model.SeatID, phone, gender string, tickets int) (*model.BookingRecord, error)
	RemoveSeat(ctx context.Context, key model.BookingKey, seat model.SeatID) (*model.BookingRecord, error)
	RemoveAllSeats(ctx context.Context, key model.BookingKey, phone string) ([]model.SeatID, error)
	ListByPhone(ctx context.Context, phone string) ([]model.BookingRecord, error)
	ListBySeatPhone(ctx context.Context, phone string) ([]model.BookingRecord, error)
}

// Ledger owns the booking records, one per movie, date and seat class.
type Ledger struct {
	store BookingStore
}

// NewLedger returns a ledger over store.
func NewLedger(store BookingStore) *Ledger { return &Ledger{store: store} }

// FindBooking returns the record for key or ErrBookingNotFound.
func (l *Ledger) FindBooking(ctx context.Context, key model.BookingKey) (*model.BookingRecord, error) {
	rec, err := l.store.Find(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, dbError("find booking", err)
	}
	return rec, nil
}

// CommitBooking appends seats to the record for key, creating it on first
// use.  The record's phone, gender and ticket count are replaced by the
// values of this call.  ErrAlreadyBooked is returned, with nothing
// written, when any seat is already booked or repeated.
func (l *Ledger) CommitBooking(ctx context.Context, key model.BookingKey, seats []model.SeatID, phone, gender string, tickets int) (*model.BookingRecord, error) {
	if len(seats) == 0 {
		return nil, ErrNoSeatsSelected
	}
	if !key.Class.Valid() {
		return nil, ErrInvalidSeatClass
	}
	if !validate.Phone(phone) {
		return nil, ErrInvalidPhone
	}
	if !validate.Gender(gender) {
		return nil, ErrInvalidGender
	}
	if tickets <= 0 || tickets > MaxTickets {
		return nil, ErrInvalidTicketCount
	}
	for _, s := range seats {
		if _, err := model.ParseSeatID(string(s)); err != nil {
			return nil, ErrInvalidSeat
		}
	}

	rec, err := l.store.Commit(ctx, key, seats, phone, gender, tickets)
	switch {
	case errors.Is(err, repository.ErrSeatTaken):
		return nil, ErrAlreadyBooked
	case errors.Is(err, repository.ErrConflict):
		return nil, ErrConflict
	case err != nil:
		return nil, dbError("commit booking", err)
	}
	return rec, nil
}

// CancelSeat removes one seat from the record for key and returns the
// refund, which is the flat class price.  The record is left unchanged
// when the seat is not booked.
func (l *Ledger) CancelSeat(ctx context.Context, key model.BookingKey, seat model.SeatID) (int, error) {
	if !key.Class.Valid() {
		return 0, ErrInvalidSeatClass
	}
	if _, err := model.ParseSeatID(string(seat)); err != nil {
		return 0, ErrSeatNotFound
	}
	_, err := l.store.RemoveSeat(ctx, key, seat)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return 0, ErrBookingNotFound
	case errors.Is(err, repository.ErrSeatNotFound):
		return 0, ErrSeatNotFound
	case err != nil:
		return 0, dbError("cancel seat", err)
	}
	return key.Class.Price(), nil
}

// TicketsByPhone lists every record last booked with phone, across all
// seat classes.
func (l *Ledger) TicketsByPhone(ctx context.Context, phone string) ([]model.BookingRecord, error) {
	if !validate.Phone(phone) {
		return nil, ErrInvalidPhone
	}
	recs, err := l.store.ListByPhone(ctx, phone)
	if err != nil {
		return nil, dbError("list tickets", err)
	}
	return recs, nil
}

// SeatsByPhone lists the records holding seats booked with phone, each
// narrowed to those seats.  Unlike TicketsByPhone it is not affected by a
// later booking on the same key with another phone.
func (l *Ledger) SeatsByPhone(ctx context.Context, phone string) ([]model.BookingRecord, error) {
	if !validate.Phone(phone) {
		return nil, ErrInvalidPhone
	}
	recs, err := l.store.ListBySeatPhone(ctx, phone)
	if err != nil {
		return nil, dbError("list seats", err)
	}
	for i := range recs {
		recs[i].BookedSeats = recs[i].SeatsOf(phone)
	}
	return recs, nil
}

// CancelTicket releases every seat of the record for key when it belongs
// to phone.  The refund is the number of released seats times the class
// price.
func (l *Ledger) CancelTicket(ctx context.Context, key model.BookingKey, phone string) ([]model.SeatID, int, error) {
	if !validate.Phone(phone) {
		return nil, 0, ErrInvalidPhone
	}
	released, err := l.store.RemoveAllSeats(ctx, key, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, 0, ErrBookingNotFound
	}
	if err != nil {
		return nil, 0, dbError("cancel ticket", err)
	}
	return released, len(released) * key.Class.Price(), nil
}
