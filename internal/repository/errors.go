// Package repository holds the MySQL data access layer.  Every method
// returns driver failures unchanged; absence of a row is reported through
// the sentinel values below so callers never confuse "not found" with a
// broken connection.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrSeatNotFound is returned when a seat is not part of a booking record.
var ErrSeatNotFound = errors.New("seat not found in booking")

// ErrSeatTaken is returned when a commit contains a seat that is already
// booked for the same movie, date and class, or repeats a seat.
var ErrSeatTaken = errors.New("seat already booked")

// ErrConflict signals a unique key race, e.g. two sessions creating the
// same booking record at once.  The operation may be retried.
var ErrConflict = errors.New("conflict")

// ErrUsernameExists and ErrPhoneExists report unique key violations on
// user_accounts.
var (
	ErrUsernameExists = errors.New("username already exists")
	ErrPhoneExists    = errors.New("phone number already in use")
)

const (
	mysqlDuplicateEntry = 1062
	mysqlDeadlock       = 1213
)

// isDuplicate reports whether err is a MySQL duplicate key error and, if
// so, returns the server message naming the violated key.
func isDuplicate(err error) (string, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return me.Message, true
	}
	return "", false
}

// isDeadlock reports whether InnoDB picked this transaction as a deadlock
// victim.  Two first bookings for the same key collide this way on their
// gap locks.
func isDeadlock(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDeadlock
}
