package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const (
	userColumns = `id, fname, lname, user_name, password, phno, gender, dob, age, created_at`

	qInsertUser         = `INSERT INTO user_accounts (fname, lname, user_name, password, phno, gender, dob, age) VALUES (?,?,?,?,?,?,?,?)`
	qSelectUserByName   = `SELECT ` + userColumns + ` FROM user_accounts WHERE user_name = ? LIMIT 1`
	qSelectUserByID     = `SELECT ` + userColumns + ` FROM user_accounts WHERE id = ? LIMIT 1`
	qUsernameExists     = `SELECT EXISTS(SELECT 1 FROM user_accounts WHERE user_name = ?)`
	qPhoneExists        = `SELECT EXISTS(SELECT 1 FROM user_accounts WHERE phno = ?)`
	qDeleteUserByIDName = `DELETE FROM user_accounts WHERE id = ? AND user_name = ?`
)

// UserRepo persists accounts in user_accounts.  Passwords arrive already
// hashed.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts the account and sets its ID.  Unique key violations map
// to ErrUsernameExists or ErrPhoneExists.
func (r *UserRepo) Create(ctx context.Context, u *model.UserAccount) error {
	res, err := r.DB.ExecContext(ctx, qInsertUser,
		u.FirstName, u.LastName, u.Username, u.PasswordHash, u.Phone, u.Gender, u.DOB, u.Age)
	if err != nil {
		if msg, dup := isDuplicate(err); dup {
			if strings.Contains(msg, "phno") {
				return ErrPhoneExists
			}
			return ErrUsernameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByUsername fetches an account by its login name.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.UserAccount, error) {
	return r.get(ctx, qSelectUserByName, username)
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.UserAccount, error) {
	return r.get(ctx, qSelectUserByID, id)
}

// UsernameExists reports whether the login name is taken.
func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var ok bool
	err := r.DB.QueryRowContext(ctx, qUsernameExists, username).Scan(&ok)
	return ok, err
}

// PhoneExists reports whether the phone number is registered.
func (r *UserRepo) PhoneExists(ctx context.Context, phone string) (bool, error) {
	var ok bool
	err := r.DB.QueryRowContext(ctx, qPhoneExists, phone).Scan(&ok)
	return ok, err
}

// Delete removes the account.  ErrNotFound is returned when no row matched.
func (r *UserRepo) Delete(ctx context.Context, id uint64, username string) error {
	res, err := r.DB.ExecContext(ctx, qDeleteUserByIDName, id, username)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (*model.UserAccount, error) {
	var u model.UserAccount
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.PasswordHash,
		&u.Phone, &u.Gender, &u.DOB, &u.Age, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
