package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.  Currently
// it exposes only a health check.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers sign-up, sign-in and token routes under /v1/auth
// and the account routes under /v1.  limit guards the credential
// endpoints and may be nil.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if limit != nil {
		mw = append(mw, limit)
	}
	g := e.Group("/v1/auth", mw...)
	g.POST("/signup", a.SignUp)
	g.POST("/signin", a.SignIn)
	// rotates the refresh token
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.DELETE("/me", a.DeleteMe)
	auth.POST("/logout-all", a.LogoutAll)
}

// RegisterBooking registers the programme and seat map as public routes
// and everything that touches a booking behind JWT auth.  cache fronts the
// programme and may be nil.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	if cache != nil {
		e.GET("/v1/movies", b.Movies, cache)
	} else {
		e.GET("/v1/movies", b.Movies)
	}
	e.GET("/v1/seats", b.Seats)

	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	g.POST("/bookings", b.Book)
	g.DELETE("/bookings/seat", b.CancelSeat)
	g.GET("/tickets", b.MyTickets)
	g.GET("/tickets/pdf", b.TicketPDF)
}
