package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

var (
	testDate = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	testKey  = model.BookingKey{Movie: "X", Date: testDate, Class: model.AC}
	stamp    = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func bookingRow(id int64, tickets int64, phone, gender string, version int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "mname", "show_date", "seat_class", "tkts", "phno", "gender", "version", "created_at", "updated_at"}).
		AddRow(id, "X", testDate, "ac", tickets, phone, gender, version, stamp, stamp)
}

// seatRows returns seats booked with phone.
func seatRows(phone string, ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"seat_id", "phno"})
	for _, id := range ids {
		rows.AddRow(id, phone)
	}
	return rows
}

func keyArgs() []driver.Value { return []driver.Value{"X", "2026-10-16", "ac"} }

func TestBookingRepo_FindNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(qSelectBooking).WithArgs(keyArgs()...).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewBookingRepo(db).Find(context.Background(), testKey)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_FindDriverErrorIsNotNotFound(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(qSelectBooking).WithArgs(keyArgs()...).WillReturnError(boom)

	_, err := NewBookingRepo(db).Find(context.Background(), testKey)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestBookingRepo_FindLoadsOrderedSeats(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(qSelectBooking).WithArgs(keyArgs()...).WillReturnRows(bookingRow(3, 2, "9876543210", "f", 2))
	mock.ExpectQuery(qSelectSeats).WithArgs(int64(3)).WillReturnRows(
		sqlmock.NewRows([]string{"seat_id", "phno"}).AddRow("12", "9876543210").AddRow("11", "8123456789"))

	rec, err := NewBookingRepo(db).Find(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, []model.SeatID{"12", "11"}, rec.BookedSeats)
	assert.Equal(t, "8123456789", rec.SeatPhone("11"))
	assert.Equal(t, []model.SeatID{"12"}, rec.SeatsOf("9876543210"))
	assert.Equal(t, model.AC, rec.Key.Class)
	assert.Equal(t, 2, rec.TicketCount)
	assert.Equal(t, "9876543210", rec.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CommitCreatesRecord(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qSelectBookingForUpdate).WithArgs(keyArgs()...).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(qInsertBooking).WithArgs("X", "2026-10-16", "ac", "m", int64(2), "9876543210").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(`INSERT INTO booking_seats (booking_id, seat_id, position, phno) VALUES (?, ?, ?, ?),(?, ?, ?, ?)`).
		WithArgs(int64(7), "11", int64(1), "9876543210", int64(7), "12", int64(2), "9876543210").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(qSelectBooking).WithArgs(keyArgs()...).WillReturnRows(bookingRow(7, 2, "9876543210", "m", 1))
	mock.ExpectQuery(qSelectSeats).WithArgs(int64(7)).WillReturnRows(seatRows("9876543210", "11", "12"))
	mock.ExpectCommit()

	rec, err := NewBookingRepo(db).Commit(context.Background(), testKey, []model.SeatID{"11", "12"}, "9876543210", "m", 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), rec.ID)
	assert.Equal(t, []model.SeatID{"11", "12"}, rec.BookedSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CommitAppendsAndOverwritesMetadata(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qSelectBookingForUpdate).WithArgs(keyArgs()...).WillReturnRows(bookingRow(7, 2, "9876543210", "m", 1))
	mock.ExpectQuery(qSelectSeats).WithArgs(int64(7)).WillReturnRows(seatRows("9876543210", "11", "12"))
	mock.ExpectQuery(qNextSeatPosition).WithArgs(int64(7)).WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(2)))
	mock.ExpectExec(`INSERT INTO booking_seats (booking_id, seat_id, position, phno) VALUES (?, ?, ?, ?)`).
		WithArgs(int64(7), "13", int64(3), "8123456789").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qUpdateBookingMeta).WithArgs("f", int64(1), "8123456789", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(qSelectBooking).WithArgs(keyArgs()...).WillReturnRows(bookingRow(7, 1, "8123456789", "f", 2))
	mock.ExpectQuery(qSelectSeats).WithArgs(int64(7)).WillReturnRows(
		sqlmock.NewRows([]string{"seat_id", "phno"}).
			AddRow("11", "9876543210").AddRow("12", "9876543210").AddRow("13", "8123456789"))
	mock.ExpectCommit()

	rec, err := NewBookingRepo(db).Commit(context.Background(), testKey, []model.SeatID{"13"}, "8123456789", "f", 1)
	require.NoError(t, err)
	assert.Equal(t, []model.SeatID{"11", "12", "13"}, rec.BookedSeats)
	assert.Equal(t, 1, rec.TicketCount)
	assert.Equal(t, "8123456789", rec.Phone)
	assert.Equal(t, []model.SeatID{"11", "12"}, rec.SeatsOf("9876543210"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CommitRejectsBookedSeat(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qSelectBookingForUpdate).WithArgs(keyArgs()...).WillReturnRows(bookingRow(7, 2, "9876543210", "m", 1))
	mock.ExpectQuery(qSelectSeats).WithArgs(int64(7)).WillReturnRows(seatRows("9876543210", "11", "12"))
	mock.ExpectRollback()

	_, err := NewBookingRepo(db).Commit(context.Background(), testKey, []model.SeatID{"13", "12"}, "9876543210", "m", 2)
	assert.ErrorIs(t, err, ErrSeatTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CommitRejectsRepeatedSeatWithoutQuerying(t *testing.T) {
	db, mock := newMock(t)

	_, err := NewBookingRepo(db).Commit(context.Background(), testKey, []model.SeatID{"11", "11"}, "9876543210", "m", 2)
	assert.ErrorIs(t, err, ErrSeatTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_RemoveSeatMissingLeavesRecord(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qSelectBookingForUpdate).WithArgs(keyArgs()...).WillReturnRows(bookingRow(7, 2, "9876543210", "m", 1))
	mock.ExpectQuery(qSelectSeats).WithArgs(int64(7)).WillReturnRows(seatRows("9876543210", "11", "12"))
	mock.ExpectExec(qDeleteSeat).WithArgs(int64(7), "55").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := NewBookingRepo(db).RemoveSeat(context.Background(), testKey, "55")
	assert.ErrorIs(t, err, ErrSeatNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_RemoveSeat(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qSelectBookingForUpdate).WithArgs(keyArgs()...).WillReturnRows(bookingRow(7, 2, "9876543210", "m", 1))
	mock.ExpectQuery(qSelectSeats).WithArgs(int64(7)).WillReturnRows(seatRows("9876543210", "11", "12"))
	mock.ExpectExec(qDeleteSeat).WithArgs(int64(7), "12").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qTouchBooking).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(qSelectBooking).WithArgs(keyArgs()...).WillReturnRows(bookingRow(7, 2, "9876543210", "m", 2))
	mock.ExpectQuery(qSelectSeats).WithArgs(int64(7)).WillReturnRows(seatRows("9876543210", "11"))
	mock.ExpectCommit()

	rec, err := NewBookingRepo(db).RemoveSeat(context.Background(), testKey, "12")
	require.NoError(t, err)
	assert.Equal(t, []model.SeatID{"11"}, rec.BookedSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_RemoveAllSeatsPhoneMismatch(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qSelectBookingForUpdate).WithArgs(keyArgs()...).WillReturnRows(bookingRow(7, 2, "9876543210", "m", 1))
	mock.ExpectQuery(qSelectSeats).WithArgs(int64(7)).WillReturnRows(seatRows("9876543210", "11"))
	mock.ExpectRollback()

	_, err := NewBookingRepo(db).RemoveAllSeats(context.Background(), testKey, "7000000000")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_ListByPhone(t *testing.T) {
	db, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"id", "mname", "show_date", "seat_class", "tkts", "phno", "gender", "version", "created_at", "updated_at"}).
		AddRow(int64(1), "X", testDate, "non_ac", int64(1), "9876543210", "m", int64(1), stamp, stamp).
		AddRow(int64(2), "Y", testDate, "firstclass", int64(2), "9876543210", "m", int64(1), stamp, stamp)
	mock.ExpectQuery(qSelectBookingsByPhone).WithArgs("9876543210").WillReturnRows(rows)
	mock.ExpectQuery(`SELECT booking_id, seat_id, phno FROM booking_seats WHERE booking_id IN (?,?) ORDER BY booking_id, position`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "seat_id", "phno"}).
			AddRow(int64(1), "44", "9876543210").AddRow(int64(2), "01", "9876543210").AddRow(int64(2), "02", "9876543210"))

	recs, err := NewBookingRepo(db).ListByPhone(context.Background(), "9876543210")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, model.NonAC, recs[0].Key.Class)
	assert.Equal(t, []model.SeatID{"44"}, recs[0].BookedSeats)
	assert.Equal(t, model.FirstClass, recs[1].Key.Class)
	assert.Equal(t, []model.SeatID{"01", "02"}, recs[1].BookedSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_ListBySeatPhone(t *testing.T) {
	db, mock := newMock(t)
	// the record was last booked by another phone; one seat is still ours
	mock.ExpectQuery(qSelectBookingsBySeat).WithArgs("9876543210").
		WillReturnRows(bookingRow(7, 1, "8123456789", "f", 2))
	mock.ExpectQuery(`SELECT booking_id, seat_id, phno FROM booking_seats WHERE booking_id IN (?) ORDER BY booking_id, position`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "seat_id", "phno"}).
			AddRow(int64(7), "11", "9876543210").AddRow(int64(7), "13", "8123456789"))

	recs, err := NewBookingRepo(db).ListBySeatPhone(context.Background(), "9876543210")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "8123456789", recs[0].Phone)
	assert.Equal(t, []model.SeatID{"11"}, recs[0].SeatsOf("9876543210"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_ListByPhoneEmpty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(qSelectBookingsByPhone).WithArgs("9876543210").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	recs, err := NewBookingRepo(db).ListByPhone(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestBookingRepo_CommitInsertRaceIsConflict(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qSelectBookingForUpdate).WithArgs(keyArgs()...).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(qInsertBooking).WithArgs("X", "2026-10-16", "ac", "m", int64(1), "9876543210").
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectRollback()

	_, err := NewBookingRepo(db).Commit(context.Background(), testKey, []model.SeatID{"11"}, "9876543210", "m", 1)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
