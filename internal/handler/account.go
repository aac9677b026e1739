package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

type deleteAccountReq struct {
	Password string `json:"password"`
	Confirm  bool   `json:"confirm"`
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Accounts.Account(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, accountView(u))
}

// DeleteMe deletes the authenticated account after re-checking the
// password.  The body must carry confirm: true.
func (h *AuthHandler) DeleteMe(c echo.Context) error {
	var req deleteAccountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	username := middleware.Username(c)
	err := h.Accounts.DeleteAccount(c.Request().Context(), username, req.Password, func(*model.UserAccount) bool {
		return req.Confirm
	})
	if err != nil {
		if errors.Is(err, service.ErrNotConfirmed) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "confirm must be true"})
		}
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
