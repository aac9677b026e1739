package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/logger"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/receipt"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
	"github.com/iliyamo/movie-ticket-booking/internal/service/servicetest"
)

var bob = &model.UserAccount{
	ID:       8,
	Username: "bob",
	Phone:    "8123456789",
	Gender:   "m",
}

// newSharedKeyServer serves the booking routes over a real BookingService
// so two accounts can book the same movie, date and class.
func newSharedKeyServer(t *testing.T) (*echo.Echo, *stubRenderer) {
	t.Helper()
	accounts := new(mockAccounts)
	accounts.On("Account", mock.Anything, alice.ID).Return(alice, nil).Maybe()
	accounts.On("Account", mock.Anything, bob.ID).Return(bob, nil).Maybe()

	svc := &service.BookingService{
		Ledger:         service.NewLedger(servicetest.NewBookings()),
		Receipts:       &receipt.Generator{Theatre: "PVR", PayeeID: "6397749277@paytm", OutDir: t.TempDir()},
		Events:         service.NopPublisher{},
		Log:            logger.Discard(),
		MaxAdvanceDays: 4,
		Now:            func() time.Time { return time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC) },
	}
	pdf := &stubRenderer{}
	h := NewBookingHandler(svc, accounts, pdf, logger.Discard())
	e := echo.New()
	g := e.Group("/v1", middleware.JWTAuth(testSecret))
	g.POST("/bookings", h.Book)
	g.DELETE("/bookings/seat", h.CancelSeat)
	g.GET("/tickets", h.MyTickets)
	g.GET("/tickets/pdf", h.TicketPDF)
	return e, pdf
}

func ticketsOf(t *testing.T, e *echo.Echo, token string) []ticketResp {
	t.Helper()
	rec := do(e, http.MethodGet, "/v1/tickets", "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Tickets []ticketResp `json:"tickets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Tickets
}

func TestSeatsStayWithTheAccountThatBookedThem(t *testing.T) {
	e, pdf := newSharedKeyServer(t)
	aliceTok, bobTok := bearer(t, alice), bearer(t, bob)
	const where = `"movie":"PUSHPA 2 (Hindi dub)","date":"2026-10-16","class":"ac"`

	rec := do(e, http.MethodPost, "/v1/bookings", `{`+where+`,"gender":"f","tickets":2,"seats":["11","12"]}`, aliceTok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	// bob books on the same key and claims alice's phone in the body
	rec = do(e, http.MethodPost, "/v1/bookings", `{`+where+`,"phone":"9876543210","gender":"m","tickets":1,"seats":["13"]}`, bobTok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodDelete, "/v1/bookings/seat", `{`+where+`,"seat":"11"}`, bobTok)
	assert.Equal(t, http.StatusNotFound, rec.Code, "bob must not cancel alice's seat")

	rec = do(e, http.MethodDelete, "/v1/bookings/seat", `{`+where+`,"seat":"12"}`, aliceTok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cf confirmationResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cf))
	assert.Equal(t, 400, cf.Cost)

	mine := ticketsOf(t, e, aliceTok)
	require.Len(t, mine, 1)
	assert.Equal(t, []string{"11"}, mine[0].Seats)
	assert.Equal(t, 400, mine[0].Cost)

	theirs := ticketsOf(t, e, bobTok)
	require.Len(t, theirs, 1)
	assert.Equal(t, []string{"13"}, theirs[0].Seats)

	rec = do(e, http.MethodGet, "/v1/tickets/pdf?movie=PUSHPA+2+(Hindi+dub)&date=2026-10-16&class=ac", "", bobTok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []model.SeatID{"13"}, pdf.got.Seats)
}
