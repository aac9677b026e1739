package repository

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

func sampleAccount() *model.UserAccount {
	return &model.UserAccount{
		FirstName:    "Alice",
		LastName:     "Rao",
		Username:     "alice",
		PasswordHash: "$2a$04$hash",
		Phone:        "9876543210",
		Gender:       "f",
		DOB:          time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC),
		Age:          26,
	}
}

func insertArgs(u *model.UserAccount) []driver.Value {
	return []driver.Value{u.FirstName, u.LastName, u.Username, u.PasswordHash, u.Phone, u.Gender, u.DOB, int64(u.Age)}
}

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	u := sampleAccount()
	mock.ExpectExec(qInsertUser).WithArgs(insertArgs(u)...).WillReturnResult(sqlmock.NewResult(11, 1))

	require.NoError(t, NewUserRepo(db).Create(context.Background(), u))
	assert.Equal(t, uint64(11), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreateDuplicateKeys(t *testing.T) {
	cases := []struct {
		name string
		msg  string
		want error
	}{
		{"phone", "Duplicate entry '9876543210' for key 'user_accounts.uq_user_accounts_phno'", ErrPhoneExists},
		{"username", "Duplicate entry 'alice' for key 'user_accounts.uq_user_accounts_user_name'", ErrUsernameExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMock(t)
			u := sampleAccount()
			mock.ExpectExec(qInsertUser).WithArgs(insertArgs(u)...).
				WillReturnError(&mysql.MySQLError{Number: 1062, Message: tc.msg})

			err := NewUserRepo(db).Create(context.Background(), u)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUserRepo_GetByUsernameNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(qSelectUserByName).WithArgs("ghost").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewUserRepo(db).GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock := newMock(t)
	u := sampleAccount()
	mock.ExpectQuery(qSelectUserByName).WithArgs("alice").WillReturnRows(
		sqlmock.NewRows([]string{"id", "fname", "lname", "user_name", "password", "phno", "gender", "dob", "age", "created_at"}).
			AddRow(int64(11), u.FirstName, u.LastName, u.Username, u.PasswordHash, u.Phone, u.Gender, u.DOB, int64(u.Age), stamp))

	got, err := NewUserRepo(db).GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(11), got.ID)
	assert.Equal(t, "Alice Rao", got.FullName())
	assert.Equal(t, 26, got.Age)
}

func TestUserRepo_Exists(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(qUsernameExists).WithArgs("alice").WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(int64(1)))
	mock.ExpectQuery(qPhoneExists).WithArgs("9876543210").WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(int64(0)))

	repo := NewUserRepo(db)
	taken, err := repo.UsernameExists(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.PhoneExists(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepo_DeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(qDeleteUserByIDName).WithArgs(int64(3), "alice").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewUserRepo(db).Delete(context.Background(), 3, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}
