package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

// AccountService is the account directory as the API uses it.
type AccountService interface {
	SignUp(ctx context.Context, req service.SignUpRequest) (*model.UserAccount, error)
	SignIn(ctx context.Context, username, password string) (*model.UserAccount, error)
	Account(ctx context.Context, id uint64) (*model.UserAccount, error)
	DeleteAccount(ctx context.Context, username, password string, confirm func(*model.UserAccount) bool) error
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ConsumeRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler serves sign-up, sign-in and token rotation.
type AuthHandler struct {
	Cfg      config.Config
	Accounts AccountService
	Tokens   TokenStore
	Log      *slog.Logger
}

func NewAuthHandler(cfg config.Config, a AccountService, t TokenStore, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Accounts: a, Tokens: t, Log: log}
}

// ----- DTOs -----

type signInReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type accountPart struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Gender    string `json:"gender"`
	DOB       string `json:"dob"`
	Age       int    `json:"age"`
}

type authResp struct {
	User    accountPart `json:"user"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

func accountView(u *model.UserAccount) accountPart {
	return accountPart{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Gender:    u.Gender,
		DOB:       u.DOB.Format(model.DateLayout),
		Age:       u.Age,
	}
}

// SignUp creates the account and returns a token pair.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req service.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Accounts.SignUp(ctx, req)
	if err != nil {
		return fail(c, h.Log, err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// SignIn verifies credentials and returns a new token pair.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Accounts.SignIn(ctx, req.Username, req.Password)
	if err != nil {
		return fail(c, h.Log, err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh revokes a live refresh token and issues a new pair.  A token
// can be exchanged once.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ConsumeRefresh(ctx, hash, time.Now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return fail(c, h.Log, err)
	}
	u, err := h.Accounts.Account(ctx, userID)
	if errors.Is(err, service.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return fail(c, h.Log, err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the given refresh token.  Unknown tokens are ignored.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll revokes every refresh token of the authenticated account.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Tokens.RevokeAllForUser(c.Request().Context(), id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) issue(ctx context.Context, u *model.UserAccount) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    accountView(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}
