// Package service implements the booking rules on top of the repositories:
// accounts, the booking ledger and interactive booking sessions.
package service

import (
	"errors"
	"fmt"
)

// Error kinds.  Callers switch on these with errors.Is; the specific errors
// below wrap one of them.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrDuplicate      = errors.New("already exists")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyBooked  = errors.New("seat already booked")
	ErrConflict       = errors.New("concurrent update, try again")
	ErrNotConfirmed   = errors.New("not confirmed")
	ErrDatabase       = errors.New("database error")
)

var (
	ErrInvalidPhone       = fmt.Errorf("%w: enter a valid phone number", ErrValidation)
	ErrInvalidGender      = fmt.Errorf("%w: gender must be m, f or n", ErrValidation)
	ErrInvalidDate        = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrDateInPast         = fmt.Errorf("%w: date cannot be in the past", ErrValidation)
	ErrDateTooFar         = fmt.Errorf("%w: date is too far in advance", ErrValidation)
	ErrInvalidTicketCount = fmt.Errorf("%w: invalid number of tickets", ErrValidation)
	ErrInvalidSeatClass   = fmt.Errorf("%w: invalid seat type", ErrValidation)
	ErrInvalidSeat        = fmt.Errorf("%w: invalid seat number", ErrValidation)
	ErrInvalidMovie       = fmt.Errorf("%w: invalid movie choice", ErrValidation)
	ErrPasswordMismatch   = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrInvalidDOB         = fmt.Errorf("%w: date of birth must be DD-MM-YYYY", ErrValidation)
	ErrInvalidAge         = fmt.Errorf("%w: invalid age", ErrValidation)
	ErrMissingField       = fmt.Errorf("%w: required field missing", ErrValidation)
	ErrNoSeatsSelected    = fmt.Errorf("%w: select at least one seat to book", ErrValidation)

	ErrDuplicateUsername = fmt.Errorf("%w: username", ErrDuplicate)
	ErrDuplicatePhone    = fmt.Errorf("%w: phone number", ErrDuplicate)

	ErrBookingNotFound = fmt.Errorf("%w: no booked seats found", ErrNotFound)
	ErrSeatNotFound    = fmt.Errorf("%w: seat is not booked", ErrNotFound)
)

// dbError tags a driver failure so it is never mistaken for absence.
func dbError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDatabase, op, err)
}
