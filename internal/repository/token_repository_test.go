package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepo_ConsumeRefresh(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(qConsumeRefresh).WithArgs("h", now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(qRefreshOwner).WithArgs("h").WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(5)))
	mock.ExpectCommit()
	id, err := repo.ConsumeRefresh(context.Background(), "h", now)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)

	// the same token again: already revoked, so the update matches nothing
	mock.ExpectBegin()
	mock.ExpectExec(qConsumeRefresh).WithArgs("h", now).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	_, err = repo.ConsumeRefresh(context.Background(), "h", now)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_ConsumeRefreshDriverError(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectExec(qConsumeRefresh).WithArgs("h", sqlmock.AnyArg()).WillReturnError(boom)
	mock.ExpectRollback()

	_, err := NewTokenRepo(db).ConsumeRefresh(context.Background(), "h", time.Now())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_PurgeExpired(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(qPurgeRefresh).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewTokenRepo(db).PurgeExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
