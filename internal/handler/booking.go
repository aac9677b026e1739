package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/receipt"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
	"github.com/iliyamo/movie-ticket-booking/internal/validate"
)

// BookingAPI is the part of the booking service exposed over HTTP.
type BookingAPI interface {
	Programme(date time.Time) ([]model.Movie, error)
	SeatMap(ctx context.Context, key model.BookingKey) ([model.GridSize][model.GridSize]model.SeatState, error)
	BookSeats(ctx context.Context, req service.BookingRequest, seats []string) (*service.Confirmation, error)
	CancelSeat(ctx context.Context, key model.BookingKey, seat model.SeatID, phone string) (*service.Confirmation, error)
	OwnedTickets(ctx context.Context, phone string) ([]model.BookingRecord, error)
	Find(ctx context.Context, key model.BookingKey) (*model.BookingRecord, error)
}

// TicketRenderer writes printable tickets.
type TicketRenderer interface {
	TicketPDF(w io.Writer, r receipt.Receipt) error
}

// BookingHandler serves the programme, seat maps, bookings and tickets.
type BookingHandler struct {
	Bookings BookingAPI
	Accounts AccountService
	Tickets  TicketRenderer
	Validate *validator.Validate
	Log      *slog.Logger
}

func NewBookingHandler(b BookingAPI, a AccountService, t TicketRenderer, log *slog.Logger) *BookingHandler {
	return &BookingHandler{Bookings: b, Accounts: a, Tickets: t, Validate: validate.New(), Log: log}
}

// ----- DTOs -----

type movieResp struct {
	Title   string `json:"title"`
	Timings string `json:"timings"`
	Name    string `json:"name"`
}

type seatMapResp struct {
	Movie string                                          `json:"movie"`
	Date  string                                          `json:"date"`
	Class string                                          `json:"class"`
	Price int                                             `json:"price"`
	Grid  [model.GridSize][model.GridSize]model.SeatState `json:"grid"`
	Free  int                                             `json:"free"`
}

type bookReq struct {
	Movie   string   `json:"movie" validate:"required"`
	Date    string   `json:"date" validate:"required"`
	Class   string   `json:"class" validate:"required"`
	Gender  string   `json:"gender" validate:"required,gender"`
	Tickets int      `json:"tickets" validate:"min=1,max=10"`
	Seats   []string `json:"seats" validate:"required,min=1,dive,len=2"`
}

type cancelSeatReq struct {
	Movie string `json:"movie" validate:"required"`
	Date  string `json:"date" validate:"required"`
	Class string `json:"class" validate:"required"`
	Seat  string `json:"seat" validate:"required,len=2"`
}

type confirmationResp struct {
	Reference  string   `json:"reference"`
	Action     string   `json:"action"`
	Movie      string   `json:"movie"`
	Date       string   `json:"date"`
	Class      string   `json:"class"`
	Seats      []string `json:"seats"`
	Cost       int      `json:"cost"`
	Receipt    string   `json:"receipt"`
	PaymentURI string   `json:"payment_uri,omitempty"`
}

type ticketResp struct {
	Movie   string   `json:"movie"`
	Date    string   `json:"date"`
	Class   string   `json:"class"`
	Seats   []string `json:"seats"`
	Tickets int      `json:"tickets"`
	Cost    int      `json:"cost"`
}

func seatStrings(ids []model.SeatID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func confirmationView(cf *service.Confirmation) confirmationResp {
	return confirmationResp{
		Reference:  cf.Reference,
		Action:     string(cf.Action),
		Movie:      cf.Key.Movie,
		Date:       cf.Key.Day(),
		Class:      cf.Key.Class.Key(),
		Seats:      seatStrings(cf.Seats),
		Cost:       cf.Cost,
		Receipt:    cf.Receipt,
		PaymentURI: cf.PaymentURI,
	}
}

// Movies lists the programme for ?date=YYYY-MM-DD.
func (h *BookingHandler) Movies(c echo.Context) error {
	date, err := time.Parse(model.DateLayout, c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	movies, err := h.Bookings.Programme(date)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]movieResp, 0, len(movies))
	for _, m := range movies {
		out = append(out, movieResp{Title: m.Title, Timings: m.Timings, Name: m.Name()})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date.Format(model.DateLayout), "movies": out})
}

// Seats returns the seat map for ?movie=&date=&class=.
func (h *BookingHandler) Seats(c echo.Context) error {
	key, err := service.ParseKey(c.QueryParam("movie"), c.QueryParam("date"), c.QueryParam("class"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	grid, err := h.Bookings.SeatMap(ctx, key)
	if err != nil {
		return fail(c, h.Log, err)
	}
	free := 0
	for _, row := range grid {
		for _, st := range row {
			if st == model.SeatFree {
				free++
			}
		}
	}
	return c.JSON(http.StatusOK, seatMapResp{
		Movie: key.Movie,
		Date:  key.Day(),
		Class: key.Class.Key(),
		Price: key.Class.Price(),
		Grid:  grid,
		Free:  free,
	})
}

// Book commits the requested seats in one step under the caller's phone.
func (h *BookingHandler) Book(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validate.Message(err)})
	}
	key, err := service.ParseKey(req.Movie, req.Date, req.Class)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	phone, err := h.ownerPhone(ctx, c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	cf, err := h.Bookings.BookSeats(ctx, service.BookingRequest{
		Movie:   key.Movie,
		Date:    key.Date,
		Class:   key.Class,
		Phone:   phone,
		Gender:  req.Gender,
		Tickets: req.Tickets,
	}, req.Seats)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, confirmationView(cf))
}

// CancelSeat releases one booked seat.  Only the account whose phone the
// seat was booked with may cancel it; anyone else gets 404.
func (h *BookingHandler) CancelSeat(c echo.Context) error {
	var req cancelSeatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validate.Message(err)})
	}
	key, err := service.ParseKey(req.Movie, req.Date, req.Class)
	if err != nil {
		return fail(c, h.Log, err)
	}
	seat, err := model.ParseSeatID(req.Seat)
	if err != nil {
		return fail(c, h.Log, service.ErrInvalidSeat)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	phone, err := h.ownerPhone(ctx, c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	rec, err := h.Bookings.Find(ctx, key)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if rec.SeatPhone(seat) != phone {
		return fail(c, h.Log, service.ErrSeatNotFound)
	}
	cf, err := h.Bookings.CancelSeat(ctx, key, seat, phone)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, confirmationView(cf))
}
