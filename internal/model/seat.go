package model

import (
	"errors"
	"fmt"
)

// GridSize is the number of rows and columns in the auditorium.
const GridSize = 10

// ErrInvalidSeat is returned when a seat identifier does not name a cell
// of the 10x10 grid.
var ErrInvalidSeat = errors.New("invalid seat")

// SeatID identifies a seat by two characters: the row digit followed by
// the column digit.  Digits run 1..9 and "0" stands for the 10th row or
// column, so "11" is the top-left seat and "00" the bottom-right one.
type SeatID string

// NewSeatID builds the identifier for a zero-based (row, col) position.
func NewSeatID(row, col int) (SeatID, error) {
	if row < 0 || row >= GridSize || col < 0 || col >= GridSize {
		return "", fmt.Errorf("%w: position (%d,%d)", ErrInvalidSeat, row, col)
	}
	return SeatID([]byte{digit(row), digit(col)}), nil
}

// MustSeatID is NewSeatID for positions known to be in range.
func MustSeatID(row, col int) SeatID {
	id, err := NewSeatID(row, col)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseSeatID validates a raw identifier such as "47".
func ParseSeatID(s string) (SeatID, error) {
	id := SeatID(s)
	if _, _, err := id.Position(); err != nil {
		return "", err
	}
	return id, nil
}

// Position returns the zero-based row and column of the seat.
func (id SeatID) Position() (row, col int, err error) {
	if len(id) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeat, string(id))
	}
	row, okRow := index(id[0])
	col, okCol := index(id[1])
	if !okRow || !okCol {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeat, string(id))
	}
	return row, col, nil
}

func (id SeatID) String() string { return string(id) }

func digit(i int) byte { return byte('0' + (i+1)%10) }

func index(b byte) (int, bool) {
	if b < '0' || b > '9' {
		return 0, false
	}
	if b == '0' {
		return GridSize - 1, true
	}
	return int(b-'0') - 1, true
}

// SeatState is the tagged state of a single grid cell.  It is independent
// of how a cell is rendered; renderers read it and never write it.
type SeatState uint8

const (
	SeatFree     SeatState = iota // available for selection
	SeatSelected                  // picked in the current session, not yet committed
	SeatBooked                    // persisted in the booking ledger
)

func (s SeatState) String() string {
	switch s {
	case SeatFree:
		return "FREE"
	case SeatSelected:
		return "SELECTED"
	case SeatBooked:
		return "BOOKED"
	}
	return "UNKNOWN"
}

// MarshalText renders the state in JSON responses.
func (s SeatState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
