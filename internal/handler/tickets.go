package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/receipt"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// ownerPhone returns the phone number of the authenticated account.
func (h *BookingHandler) ownerPhone(ctx context.Context, c echo.Context) (string, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return "", service.ErrAuthentication
	}
	u, err := h.Accounts.Account(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Phone, nil
}

// MyTickets lists the seats booked with the caller's phone.
func (h *BookingHandler) MyTickets(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	phone, err := h.ownerPhone(ctx, c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	recs, err := h.Bookings.OwnedTickets(ctx, phone)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]ticketResp, 0, len(recs))
	for _, r := range recs {
		if len(r.BookedSeats) == 0 {
			continue
		}
		out = append(out, ticketResp{
			Movie:   r.Key.Movie,
			Date:    r.Key.Day(),
			Class:   r.Key.Class.Key(),
			Seats:   seatStrings(r.BookedSeats),
			Tickets: len(r.BookedSeats),
			Cost:    len(r.BookedSeats) * r.Key.Class.Price(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"phone": phone, "tickets": out})
}

// TicketPDF renders the caller's seats for ?movie=&date=&class= as a PDF.
func (h *BookingHandler) TicketPDF(c echo.Context) error {
	key, err := service.ParseKey(c.QueryParam("movie"), c.QueryParam("date"), c.QueryParam("class"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	phone, err := h.ownerPhone(ctx, c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	rec, err := h.Bookings.Find(ctx, key)
	if err != nil {
		return fail(c, h.Log, err)
	}
	seats := rec.SeatsOf(phone)
	if len(seats) == 0 {
		return fail(c, h.Log, service.ErrBookingNotFound)
	}

	var buf bytes.Buffer
	err = h.Tickets.TicketPDF(&buf, receipt.Receipt{
		Action:   receipt.Booking,
		Movie:    key.Movie,
		Date:     key.Date,
		SeatType: key.Class.Label(),
		Seats:    seats,
		Cost:     len(seats) * key.Class.Price(),
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	name := fmt.Sprintf("ticket-%s-%s.pdf", key.Day(), key.Class.Key())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
