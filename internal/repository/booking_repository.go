package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	bookingColumns = `id, mname, show_date, seat_class, tkts, phno, gender, version, created_at, updated_at`

	qSelectBooking          = `SELECT ` + bookingColumns + ` FROM bookings WHERE mname = ? AND show_date = ? AND seat_class = ?`
	qSelectBookingForUpdate = qSelectBooking + ` FOR UPDATE`
	qSelectBookingsByPhone  = `SELECT ` + bookingColumns + ` FROM bookings WHERE phno = ? ORDER BY show_date, seat_class, mname`
	qSelectBookingsBySeat   = `SELECT ` + bookingColumns + ` FROM bookings WHERE id IN (SELECT booking_id FROM booking_seats WHERE phno = ?) ORDER BY show_date, seat_class, mname`
	qSelectSeats            = `SELECT seat_id, phno FROM booking_seats WHERE booking_id = ? ORDER BY position`
	qNextSeatPosition       = `SELECT COALESCE(MAX(position), 0) FROM booking_seats WHERE booking_id = ?`
	qInsertBooking          = `INSERT INTO bookings (mname, show_date, seat_class, gender, tkts, phno) VALUES (?, ?, ?, ?, ?, ?)`
	qUpdateBookingMeta      = `UPDATE bookings SET gender = ?, tkts = ?, phno = ?, version = version + 1 WHERE id = ?`
	qTouchBooking           = `UPDATE bookings SET version = version + 1 WHERE id = ?`
	qDeleteSeat             = `DELETE FROM booking_seats WHERE booking_id = ? AND seat_id = ?`
	qDeleteAllSeats         = `DELETE FROM booking_seats WHERE booking_id = ?`
)

// BookingRepo persists booking records and their seats.  A record is
// unique per (mname, show_date, seat_class); its seats live in
// booking_seats ordered by position, each with the phone it was booked
// with.  Rows in bookings are never deleted.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for health checks.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// Find loads the record for key with its seats.  ErrNotFound is returned
// when nothing was ever booked for the key.
func (r *BookingRepo) Find(ctx context.Context, key model.BookingKey) (*model.BookingRecord, error) {
	return r.find(ctx, r.db, qSelectBooking, key)
}

// Commit appends seats to the record for key, creating it on first use,
// and overwrites gender, ticket count and phone with the given values.
// The record row is locked for the duration of the transaction so two
// sessions cannot interleave their read-modify-write.  ErrSeatTaken is
// returned, and nothing is written, when any seat is already booked.
func (r *BookingRepo) Commit(ctx context.Context, key model.BookingKey, seats []model.SeatID, phone, gender string, tickets int) (*model.BookingRecord, error) {
	if err := uniqueSeats(seats); err != nil {
		return nil, err
	}
	var out *model.BookingRecord
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		rec, err := r.find(ctx, tx, qSelectBookingForUpdate, key)
		switch {
		case errors.Is(err, ErrNotFound):
			id, err := insertBookingTx(ctx, tx, key, phone, gender, tickets)
			if err != nil {
				return err
			}
			if err := insertSeatsTx(ctx, tx, id, 1, seats, phone); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			for _, s := range seats {
				if rec.HasSeat(s) {
					return fmt.Errorf("%w: %s", ErrSeatTaken, s)
				}
			}
			var last int
			if err := tx.QueryRowContext(ctx, qNextSeatPosition, rec.ID).Scan(&last); err != nil {
				return err
			}
			if err := insertSeatsTx(ctx, tx, rec.ID, last+1, seats, phone); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, qUpdateBookingMeta, gender, tickets, phone, rec.ID); err != nil {
				return err
			}
		}
		out, err = r.find(ctx, tx, qSelectBooking, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveSeat deletes one seat from the record for key.  The record row
// stays even when its last seat is removed.  It returns ErrNotFound when
// the record does not exist and ErrSeatNotFound when the seat is not
// booked; in both cases nothing changes.
func (r *BookingRepo) RemoveSeat(ctx context.Context, key model.BookingKey, seat model.SeatID) (*model.BookingRecord, error) {
	var out *model.BookingRecord
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		rec, err := r.find(ctx, tx, qSelectBookingForUpdate, key)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, qDeleteSeat, rec.ID, string(seat))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrSeatNotFound, seat)
		}
		if _, err := tx.ExecContext(ctx, qTouchBooking, rec.ID); err != nil {
			return err
		}
		out, err = r.find(ctx, tx, qSelectBooking, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveAllSeats empties the record for key when it was last booked with
// phone and returns the released seats.  ErrNotFound covers both a
// missing record and a phone mismatch.
func (r *BookingRepo) RemoveAllSeats(ctx context.Context, key model.BookingKey, phone string) ([]model.SeatID, error) {
	var released []model.SeatID
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		rec, err := r.find(ctx, tx, qSelectBookingForUpdate, key)
		if err != nil {
			return err
		}
		if rec.Phone != phone {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, qDeleteAllSeats, rec.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, qTouchBooking, rec.ID); err != nil {
			return err
		}
		released = rec.BookedSeats
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

// ListByPhone returns every record whose latest booking used phone, with
// seats populated.  An empty slice means no tickets.
func (r *BookingRepo) ListByPhone(ctx context.Context, phone string) ([]model.BookingRecord, error) {
	return r.list(ctx, qSelectBookingsByPhone, phone)
}

// ListBySeatPhone returns every record holding at least one seat booked
// with phone, with all of its seats populated.
func (r *BookingRepo) ListBySeatPhone(ctx context.Context, phone string) ([]model.BookingRecord, error) {
	return r.list(ctx, qSelectBookingsBySeat, phone)
}

func (r *BookingRepo) list(ctx context.Context, query, phone string) ([]model.BookingRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BookingRecord, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		rec, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		index[rec.ID] = len(out)
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	// Populate seats for all records in a single query
	ids := make([]any, 0, len(out))
	placeholders := make([]string, 0, len(out))
	for _, rec := range out {
		ids = append(ids, rec.ID)
		placeholders = append(placeholders, "?")
	}
	seatQuery := `SELECT booking_id, seat_id, phno FROM booking_seats WHERE booking_id IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY booking_id, position`
	srows, err := r.db.QueryContext(ctx, seatQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var (
			id          uint64
			seat, owner string
		)
		if err := srows.Scan(&id, &seat, &owner); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			out[i].BookedSeats = append(out[i].BookedSeats, model.SeatID(seat))
			out[i].SeatPhones[model.SeatID(seat)] = owner
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingRepo) find(ctx context.Context, q dbtx, query string, key model.BookingKey) (*model.BookingRecord, error) {
	rec, err := scanBooking(q.QueryRowContext(ctx, query, key.Movie, key.Day(), key.Class.Key()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := loadSeats(ctx, q, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *BookingRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type scanner interface{ Scan(dest ...any) error }

func scanBooking(s scanner) (*model.BookingRecord, error) {
	var (
		rec   model.BookingRecord
		class string
	)
	if err := s.Scan(&rec.ID, &rec.Key.Movie, &rec.Key.Date, &class, &rec.TicketCount,
		&rec.Phone, &rec.Gender, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	c, err := model.ParseSeatClass(class)
	if err != nil {
		return nil, fmt.Errorf("booking %d: %w", rec.ID, err)
	}
	rec.Key.Class = c
	rec.BookedSeats = []model.SeatID{}
	rec.SeatPhones = make(map[model.SeatID]string)
	return &rec, nil
}

func loadSeats(ctx context.Context, q dbtx, rec *model.BookingRecord) error {
	rows, err := q.QueryContext(ctx, qSelectSeats, rec.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var seat, owner string
		if err := rows.Scan(&seat, &owner); err != nil {
			return err
		}
		rec.BookedSeats = append(rec.BookedSeats, model.SeatID(seat))
		rec.SeatPhones[model.SeatID(seat)] = owner
	}
	return rows.Err()
}

func insertBookingTx(ctx context.Context, tx *sql.Tx, key model.BookingKey, phone, gender string, tickets int) (uint64, error) {
	res, err := tx.ExecContext(ctx, qInsertBooking, key.Movie, key.Day(), key.Class.Key(), gender, tickets, phone)
	if err != nil {
		if _, dup := isDuplicate(err); dup || isDeadlock(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// insertSeatsTx inserts seats booked with phone in one statement, with
// consecutive positions starting at first.
func insertSeatsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, first int, seats []model.SeatID, phone string) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, seat_id, position, phno) VALUES `
	args := make([]any, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, bookingID, string(s), first+i, phone)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if _, dup := isDuplicate(err); dup {
			return ErrSeatTaken
		}
		return err
	}
	return nil
}

func uniqueSeats(seats []model.SeatID) error {
	seen := make(map[model.SeatID]struct{}, len(seats))
	for _, s := range seats {
		if _, ok := seen[s]; ok {
			return fmt.Errorf("%w: %s repeated", ErrSeatTaken, s)
		}
		seen[s] = struct{}{}
	}
	return nil
}
