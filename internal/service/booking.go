package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/receipt"
	"github.com/iliyamo/movie-ticket-booking/internal/seatmap"
	"github.com/iliyamo/movie-ticket-booking/internal/validate"
)

// Receipts renders receipts and payment codes.
type Receipts interface {
	Text(r receipt.Receipt) string
	PaymentURI(amount int) string
	WritePaymentQR(amount int) (string, error)
}

// BookingRequest describes one seat picking run.
type BookingRequest struct {
	Movie   string
	Date    time.Time
	Class   model.SeatClass
	Phone   string
	Gender  string
	Tickets int
}

// Confirmation is the outcome of a booking or a cancellation.
type Confirmation struct {
	Reference  string
	Action     receipt.Action
	Key        model.BookingKey
	Seats      []model.SeatID
	Cost       int
	Receipt    string
	PaymentURI string
	QRPath     string // empty when no QR image was written
}

// BookingService opens booking sessions and performs the side effects of a
// committed change: receipt, payment QR and event.
type BookingService struct {
	Ledger         *Ledger
	Receipts       Receipts
	Events         Publisher
	Log            *slog.Logger
	MaxAdvanceDays int
	Now            func() time.Time
}

// Check validates req against the booking rules and returns the
// normalised key.  Movie may be a title or a full programme name.
func (s *BookingService) Check(req BookingRequest) (model.BookingKey, error) {
	if !req.Class.Valid() {
		return model.BookingKey{}, ErrInvalidSeatClass
	}
	if err := CheckShowDate(req.Date, s.now(), s.MaxAdvanceDays); err != nil {
		return model.BookingKey{}, err
	}
	movie, ok := model.FindMovie(req.Movie)
	if !ok {
		return model.BookingKey{}, ErrInvalidMovie
	}
	if !validate.Phone(req.Phone) {
		return model.BookingKey{}, ErrInvalidPhone
	}
	if !validate.Gender(req.Gender) {
		return model.BookingKey{}, ErrInvalidGender
	}
	if req.Tickets <= 0 || req.Tickets > MaxTickets {
		return model.BookingKey{}, ErrInvalidTicketCount
	}
	return model.BookingKey{Movie: movie.Name(), Date: Today(req.Date), Class: req.Class}, nil
}

// OpenSession validates req and loads the current seat map for its key.
func (s *BookingService) OpenSession(ctx context.Context, req BookingRequest) (*Session, error) {
	key, err := s.Check(req)
	if err != nil {
		return nil, err
	}
	req.Movie = key.Movie
	req.Date = key.Date
	sess := &Session{svc: s, req: req, key: key, sel: seatmap.New()}
	if err := sess.Reload(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// CancelSeat cancels one seat of key outside of a session and issues the
// cancellation receipt.
func (s *BookingService) CancelSeat(ctx context.Context, key model.BookingKey, seat model.SeatID, phone string) (*Confirmation, error) {
	refund, err := s.Ledger.CancelSeat(ctx, key, seat)
	if err != nil {
		return nil, err
	}
	conf := s.confirm(ctx, receipt.Cancellation, key, []model.SeatID{seat}, refund, phone)
	s.Log.Info("seat cancelled", "ref", conf.Reference, "movie", key.Movie, "date", key.Day(),
		"class", key.Class.Key(), "seat", seat, "refund", refund)
	return conf, nil
}

// CancelTicket releases every seat of the record for key booked with
// phone and issues one cancellation receipt for all of them.
func (s *BookingService) CancelTicket(ctx context.Context, key model.BookingKey, phone string) (*Confirmation, error) {
	seats, refund, err := s.Ledger.CancelTicket(ctx, key, phone)
	if err != nil {
		return nil, err
	}
	conf := s.confirm(ctx, receipt.Cancellation, key, seats, refund, phone)
	s.Log.Info("ticket cancelled", "ref", conf.Reference, "movie", key.Movie, "date", key.Day(),
		"class", key.Class.Key(), "seats", len(seats), "refund", refund)
	return conf, nil
}

// confirm builds the receipt and publishes the event.  Booking receipts
// also get a payment QR; failures there are logged and do not affect the
// committed change.
func (s *BookingService) confirm(ctx context.Context, action receipt.Action, key model.BookingKey, seats []model.SeatID, cost int, phone string) *Confirmation {
	conf := &Confirmation{
		Reference: uuid.NewString(),
		Action:    action,
		Key:       key,
		Seats:     seats,
		Cost:      cost,
		Receipt: s.Receipts.Text(receipt.Receipt{
			Action:   action,
			Movie:    key.Movie,
			Date:     key.Date,
			SeatType: key.Class.Label(),
			Seats:    seats,
			Cost:     cost,
		}),
	}
	if action == receipt.Booking {
		conf.PaymentURI = s.Receipts.PaymentURI(cost)
		path, err := s.Receipts.WritePaymentQR(cost)
		if err != nil {
			s.Log.Warn("payment qr not written", "ref", conf.Reference, "err", err)
		} else {
			conf.QRPath = path
		}
	}

	evAction := queue.ActionBooked
	if action == receipt.Cancellation {
		evAction = queue.ActionCancelled
	}
	labels := make([]string, len(seats))
	for i, id := range seats {
		labels[i] = string(id)
	}
	ev := queue.BookingEvent{
		Reference:  conf.Reference,
		Action:     evAction,
		Movie:      key.Movie,
		Date:       key.Day(),
		SeatClass:  key.Class.Key(),
		Seats:      labels,
		Amount:     cost,
		Phone:      phone,
		OccurredAt: s.now().UTC().Format(time.RFC3339),
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.Events.Publish(pctx, ev); err != nil {
		s.Log.Warn("booking event not published", "ref", conf.Reference, "err", err)
	}
	return conf
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Session is one seat picking run for a single booking key.  It keeps the
// display grid in a Selector and writes through the ledger.  A Session is
// not safe for concurrent use.
type Session struct {
	svc *BookingService
	req BookingRequest
	key model.BookingKey
	sel *seatmap.Selector
}

// Key returns the booking key of the session.
func (s *Session) Key() model.BookingKey { return s.key }

// Request returns the normalised request that opened the session.
func (s *Session) Request() BookingRequest { return s.req }

// Reload replaces the grid with the ledger's current state.  The pending
// selection is discarded.
func (s *Session) Reload(ctx context.Context) error {
	sel := seatmap.New()
	rec, err := s.svc.Ledger.FindBooking(ctx, s.key)
	switch {
	case errors.Is(err, ErrBookingNotFound):
	case err != nil:
		return err
	default:
		if err := sel.Load(rec.BookedSeats); err != nil {
			return err
		}
	}
	s.sel = sel
	return nil
}

// Toggle flips a seat between free and selected.
func (s *Session) Toggle(seat string) (model.SeatState, error) {
	id, err := model.ParseSeatID(seat)
	if err != nil {
		return model.SeatFree, ErrInvalidSeat
	}
	st, err := s.sel.Toggle(id)
	if errors.Is(err, seatmap.ErrAlreadyBooked) {
		return st, ErrAlreadyBooked
	}
	return st, err
}

// State returns the displayed state of a seat.
func (s *Session) State(id model.SeatID) model.SeatState { return s.sel.State(id) }

// Grid returns a snapshot of the displayed grid.
func (s *Session) Grid() [model.GridSize][model.GridSize]model.SeatState { return s.sel.Grid() }

// Selected returns the pending selection in toggle order.
func (s *Session) Selected() []model.SeatID { return s.sel.Selected() }

// Cost is the price of the pending selection.
func (s *Session) Cost() int { return s.sel.ComputeCost(s.key.Class.Price()) }

// Book commits the pending selection.  On success the selected seats show
// as booked and the selection is empty; on failure nothing changes.
func (s *Session) Book(ctx context.Context) (*Confirmation, error) {
	seats := s.sel.Selected()
	if len(seats) == 0 {
		return nil, ErrNoSeatsSelected
	}
	if _, err := s.svc.Ledger.CommitBooking(ctx, s.key, seats, s.req.Phone, s.req.Gender, s.req.Tickets); err != nil {
		return nil, err
	}
	cost := s.Cost()
	s.sel.MarkBooked()
	conf := s.svc.confirm(ctx, receipt.Booking, s.key, seats, cost, s.req.Phone)
	s.svc.Log.Info("seats booked", "ref", conf.Reference, "movie", s.key.Movie, "date", s.key.Day(),
		"class", s.key.Class.Key(), "seats", seats, "cost", cost)
	return conf, nil
}

// CancelSeat cancels one booked seat of the session's key and frees it on
// the grid.
func (s *Session) CancelSeat(ctx context.Context, seat string) (*Confirmation, error) {
	id, err := model.ParseSeatID(seat)
	if err != nil {
		return nil, ErrSeatNotFound
	}
	conf, err := s.svc.CancelSeat(ctx, s.key, id, s.req.Phone)
	if err != nil {
		return nil, err
	}
	// the seat may already show as free after Clear
	_ = s.sel.Release(id)
	return conf, nil
}

// Clear resets booked seats to free on the display only.  The ledger is
// unchanged, so those seats still cannot be booked again.
func (s *Session) Clear() { s.sel.Reset() }

// ParseKey resolves the movie, YYYY-MM-DD date and seat class strings of
// an API request into a booking key.  The date window is not checked.
func ParseKey(movie, date, class string) (model.BookingKey, error) {
	m, ok := model.FindMovie(movie)
	if !ok {
		return model.BookingKey{}, ErrInvalidMovie
	}
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return model.BookingKey{}, ErrInvalidDate
	}
	c, err := model.ParseSeatClass(class)
	if err != nil {
		return model.BookingKey{}, ErrInvalidSeatClass
	}
	return model.BookingKey{Movie: m.Name(), Date: d, Class: c}, nil
}

// Programme returns the movies showing on date, which must be bookable.
func (s *BookingService) Programme(date time.Time) ([]model.Movie, error) {
	if err := CheckShowDate(date, s.now(), s.MaxAdvanceDays); err != nil {
		return nil, err
	}
	out := make([]model.Movie, len(model.DailyMovies))
	copy(out, model.DailyMovies)
	return out, nil
}

// SeatMap returns the booked state of every seat for key.
func (s *BookingService) SeatMap(ctx context.Context, key model.BookingKey) ([model.GridSize][model.GridSize]model.SeatState, error) {
	sel := seatmap.New()
	rec, err := s.Ledger.FindBooking(ctx, key)
	switch {
	case errors.Is(err, ErrBookingNotFound):
	case err != nil:
		return sel.Grid(), err
	default:
		if err := sel.Load(rec.BookedSeats); err != nil {
			return sel.Grid(), err
		}
	}
	return sel.Grid(), nil
}

// BookSeats runs a whole session in one call: open, select seats in
// order, book.  Used by callers that hold no state between requests.
func (s *BookingService) BookSeats(ctx context.Context, req BookingRequest, seats []string) (*Confirmation, error) {
	sess, err := s.OpenSession(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, id := range seats {
		st, err := sess.Toggle(id)
		if err != nil {
			return nil, err
		}
		if st != model.SeatSelected {
			return nil, ErrAlreadyBooked
		}
	}
	return sess.Book(ctx)
}

// Tickets lists the records booked with phone.
func (s *BookingService) Tickets(ctx context.Context, phone string) ([]model.BookingRecord, error) {
	return s.Ledger.TicketsByPhone(ctx, phone)
}

// OwnedTickets lists the seats booked with phone, grouped by record.
func (s *BookingService) OwnedTickets(ctx context.Context, phone string) ([]model.BookingRecord, error) {
	return s.Ledger.SeatsByPhone(ctx, phone)
}

// Find returns the record for key.
func (s *BookingService) Find(ctx context.Context, key model.BookingKey) (*model.BookingRecord, error) {
	return s.Ledger.FindBooking(ctx, key)
}
