package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
	"github.com/iliyamo/movie-ticket-booking/internal/validate"
)

// UserStore is the persistence the account directory needs.
type UserStore interface {
	Create(ctx context.Context, u *model.UserAccount) error
	GetByUsername(ctx context.Context, username string) (*model.UserAccount, error)
	GetByID(ctx context.Context, id uint64) (*model.UserAccount, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	Delete(ctx context.Context, id uint64, username string) error
}

// SignUpRequest carries the sign-up form.  DOB is DD-MM-YYYY.
type SignUpRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Phone           string `json:"phone"`
	Gender          string `json:"gender"`
	DOB             string `json:"dob"`
	Age             int    `json:"age"`
}

const maxAge = 120

// Accounts signs users up and in and deletes accounts.
type Accounts struct {
	users      UserStore
	bcryptCost int
	log        *slog.Logger
	now        func() time.Time
}

// NewAccounts returns an account directory over users.
func NewAccounts(users UserStore, bcryptCost int, log *slog.Logger) *Accounts {
	return &Accounts{users: users, bcryptCost: bcryptCost, log: log, now: time.Now}
}

// SignUp validates req and creates the account.  Every field check runs
// before the store is touched, in the order phone, gender, password
// confirmation, date of birth, age.
func (a *Accounts) SignUp(ctx context.Context, req SignUpRequest) (*model.UserAccount, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if !validate.Phone(req.Phone) {
		return nil, ErrInvalidPhone
	}
	if !validate.Gender(req.Gender) {
		return nil, ErrInvalidGender
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	dob, err := ParseDOB(req.DOB)
	if err != nil {
		return nil, err
	}
	if dob.After(a.now()) {
		return nil, ErrInvalidDOB
	}
	if req.Age <= 0 || req.Age > maxAge {
		return nil, ErrInvalidAge
	}
	if req.Username == "" || req.FirstName == "" || req.Password == "" {
		return nil, ErrMissingField
	}

	taken, err := a.users.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, dbError("check username", err)
	}
	if taken {
		return nil, ErrDuplicateUsername
	}
	taken, err = a.users.PhoneExists(ctx, req.Phone)
	if err != nil {
		return nil, dbError("check phone", err)
	}
	if taken {
		return nil, ErrDuplicatePhone
	}

	hash, err := utils.HashPassword(req.Password, a.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &model.UserAccount{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		PasswordHash: hash,
		Phone:        req.Phone,
		Gender:       req.Gender,
		DOB:          dob,
		Age:          req.Age,
	}
	switch err := a.users.Create(ctx, u); {
	case errors.Is(err, repository.ErrUsernameExists):
		return nil, ErrDuplicateUsername
	case errors.Is(err, repository.ErrPhoneExists):
		return nil, ErrDuplicatePhone
	case err != nil:
		return nil, dbError("create account", err)
	}
	a.log.Info("account created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// SignIn returns the account when username and password match.
func (a *Accounts) SignIn(ctx context.Context, username, password string) (*model.UserAccount, error) {
	u, err := a.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAuthentication
	}
	if err != nil {
		return nil, dbError("load account", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrAuthentication
	}
	return u, nil
}

// Details re-authenticates and returns the account for display.
func (a *Accounts) Details(ctx context.Context, username, password string) (*model.UserAccount, error) {
	return a.SignIn(ctx, username, password)
}

// Account loads an account by id, e.g. from an access token subject.
func (a *Accounts) Account(ctx context.Context, id uint64) (*model.UserAccount, error) {
	u, err := a.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dbError("load account", err)
	}
	return u, nil
}

// DeleteAccount authenticates, shows the account to confirm and deletes it
// when confirm returns true.  A declined confirmation yields
// ErrNotConfirmed and leaves the account in place.
func (a *Accounts) DeleteAccount(ctx context.Context, username, password string, confirm func(*model.UserAccount) bool) error {
	u, err := a.SignIn(ctx, username, password)
	if err != nil {
		return err
	}
	if confirm == nil || !confirm(u) {
		return ErrNotConfirmed
	}
	switch err := a.users.Delete(ctx, u.ID, u.Username); {
	case errors.Is(err, repository.ErrNotFound):
		return ErrAuthentication
	case err != nil:
		return dbError("delete account", err)
	}
	a.log.Info("account deleted", "user_id", u.ID, "username", u.Username)
	return nil
}
