package model

import "time"

// DateLayout is the calendar format used for show dates everywhere.
const DateLayout = "2006-01-02"

// BookingKey identifies a booking record: one per movie, show date and
// seat class.
type BookingKey struct {
	Movie string
	Date  time.Time
	Class SeatClass
}

// Day returns the show date formatted as YYYY-MM-DD.
func (k BookingKey) Day() string { return k.Date.Format(DateLayout) }

// BookingRecord is the persisted state of a booking key.  BookedSeats is
// ordered by booking time and never contains duplicates.  TicketCount,
// Phone and Gender belong to the most recent booking call only.
//
// Fields:
//  ID          – bookings.id
//  Key         – bookings.mname, bookings.show_date, bookings.seat_class
//  BookedSeats – booking_seats.seat_id ordered by position
//  SeatPhones  – booking_seats.phno, the phone each seat was booked with
//  TicketCount – bookings.tkts
//  Phone       – bookings.phno
//  Gender      – bookings.gender
//  Version     – bookings.version, bumped on every write
type BookingRecord struct {
	ID          uint64
	Key         BookingKey
	BookedSeats []SeatID
	SeatPhones  map[SeatID]string
	TicketCount int
	Phone       string
	Gender      string
	Version     uint32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasSeat reports whether id is already booked in the record.
func (r *BookingRecord) HasSeat(id SeatID) bool {
	for _, s := range r.BookedSeats {
		if s == id {
			return true
		}
	}
	return false
}

// SeatPhone returns the phone seat id was booked with, or "" when the seat
// is not booked.
func (r *BookingRecord) SeatPhone(id SeatID) string { return r.SeatPhones[id] }

// SeatsOf returns the seats booked with phone in booking order, whatever
// the record's Phone currently is.
func (r *BookingRecord) SeatsOf(phone string) []SeatID {
	out := make([]SeatID, 0, len(r.BookedSeats))
	for _, s := range r.BookedSeats {
		if r.SeatPhones[s] == phone {
			out = append(out, s)
		}
	}
	return out
}
