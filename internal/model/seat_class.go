package model

import (
	"errors"
	"strings"
)

// ErrUnknownSeatClass is returned by ParseSeatClass for unrecognised input.
var ErrUnknownSeatClass = errors.New("unknown seat class")

// SeatClass is one of the three priced seating tiers.  The numeric values
// match the choices offered by the booking menu.
type SeatClass uint8

const (
	NonAC      SeatClass = 1
	AC         SeatClass = 2
	FirstClass SeatClass = 3
)

// SeatClasses lists every tier in menu order.
var SeatClasses = []SeatClass{NonAC, AC, FirstClass}

// Price is the fixed price of one seat in rupees.
func (c SeatClass) Price() int {
	switch c {
	case NonAC:
		return 200
	case AC:
		return 400
	case FirstClass:
		return 700
	}
	return 0
}

// Label is the human readable name printed on receipts.
func (c SeatClass) Label() string {
	switch c {
	case NonAC:
		return "Non AC"
	case AC:
		return "AC"
	case FirstClass:
		return "First Class"
	}
	return ""
}

// Key is the value stored in bookings.seat_class.
func (c SeatClass) Key() string {
	switch c {
	case NonAC:
		return "non_ac"
	case AC:
		return "ac"
	case FirstClass:
		return "firstclass"
	}
	return ""
}

func (c SeatClass) Valid() bool { return c.Key() != "" }

func (c SeatClass) String() string { return c.Label() }

// ParseSeatClass accepts a menu choice ("1".."3"), a storage key
// ("non_ac", "ac", "firstclass") or a label ("First Class").
func ParseSeatClass(s string) (SeatClass, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, c := range SeatClasses {
		if v == string('0'+rune(c)) || v == c.Key() || v == strings.ToLower(c.Label()) {
			return c, nil
		}
	}
	return 0, ErrUnknownSeatClass
}
