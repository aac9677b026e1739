package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
)

// UserID returns the authenticated account id.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok
}

// Username returns the authenticated login name.
func Username(c echo.Context) string {
	s, _ := c.Get(ctxUsername).(string)
	return s
}

// actor identifies the caller for rate limiting: the account id when
// authenticated, "anon" otherwise.
func actor(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
