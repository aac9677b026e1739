// Package servicetest provides an in-memory booking store for tests of
// packages built on the service layer.
package servicetest

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// Bookings is an in-memory BookingStore with the same contract as the
// MySQL repository.
type Bookings struct {
	mu     sync.Mutex
	nextID uint64
	recs   map[string]*model.BookingRecord

	// Err is returned by every call when set.
	Err error
}

func NewBookings() *Bookings {
	return &Bookings{recs: make(map[string]*model.BookingRecord)}
}

func storeKey(k model.BookingKey) string { return k.Movie + "|" + k.Day() + "|" + k.Class.Key() }

func clone(r *model.BookingRecord) *model.BookingRecord {
	c := *r
	c.BookedSeats = append([]model.SeatID{}, r.BookedSeats...)
	c.SeatPhones = make(map[model.SeatID]string, len(r.SeatPhones))
	for k, v := range r.SeatPhones {
		c.SeatPhones[k] = v
	}
	return &c
}

func (m *Bookings) Find(_ context.Context, key model.BookingKey) (*model.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	rec, ok := m.recs[storeKey(key)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(rec), nil
}

func (m *Bookings) Commit(_ context.Context, key model.BookingKey, seats []model.SeatID, phone, gender string, tickets int) (*model.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	seen := map[model.SeatID]bool{}
	for _, s := range seats {
		if seen[s] {
			return nil, repository.ErrSeatTaken
		}
		seen[s] = true
	}
	rec, ok := m.recs[storeKey(key)]
	if ok {
		for _, s := range seats {
			if rec.HasSeat(s) {
				return nil, repository.ErrSeatTaken
			}
		}
	} else {
		m.nextID++
		rec = &model.BookingRecord{ID: m.nextID, Key: key, BookedSeats: []model.SeatID{}, SeatPhones: map[model.SeatID]string{}}
		m.recs[storeKey(key)] = rec
	}
	rec.BookedSeats = append(rec.BookedSeats, seats...)
	for _, s := range seats {
		rec.SeatPhones[s] = phone
	}
	rec.Phone, rec.Gender, rec.TicketCount = phone, gender, tickets
	rec.Version++
	return clone(rec), nil
}

func (m *Bookings) RemoveSeat(_ context.Context, key model.BookingKey, seat model.SeatID) (*model.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	rec, ok := m.recs[storeKey(key)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for i, s := range rec.BookedSeats {
		if s == seat {
			rec.BookedSeats = append(rec.BookedSeats[:i], rec.BookedSeats[i+1:]...)
			delete(rec.SeatPhones, seat)
			rec.Version++
			return clone(rec), nil
		}
	}
	return nil, repository.ErrSeatNotFound
}

func (m *Bookings) RemoveAllSeats(_ context.Context, key model.BookingKey, phone string) ([]model.SeatID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	rec, ok := m.recs[storeKey(key)]
	if !ok || rec.Phone != phone {
		return nil, repository.ErrNotFound
	}
	released := rec.BookedSeats
	rec.BookedSeats = []model.SeatID{}
	rec.SeatPhones = map[model.SeatID]string{}
	rec.Version++
	return released, nil
}

// ListByPhone orders records by date, class and movie like the repository.
func (m *Bookings) ListByPhone(_ context.Context, phone string) ([]model.BookingRecord, error) {
	return m.list(func(rec *model.BookingRecord) bool { return rec.Phone == phone })
}

func (m *Bookings) ListBySeatPhone(_ context.Context, phone string) ([]model.BookingRecord, error) {
	return m.list(func(rec *model.BookingRecord) bool { return len(rec.SeatsOf(phone)) > 0 })
}

func (m *Bookings) list(match func(*model.BookingRecord) bool) ([]model.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []model.BookingRecord{}
	for _, rec := range m.recs {
		if match(rec) {
			out = append(out, *clone(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return a.Movie < b.Movie
	})
	return out, nil
}
