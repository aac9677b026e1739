package repository

import (
	"context"
	"database/sql"
	"time"
)

const (
	qInsertRefresh    = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
	qConsumeRefresh   = `UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ?`
	qRefreshOwner     = `SELECT user_id FROM refresh_tokens WHERE token_hash = ?`
	qRevokeRefresh    = `UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_hash = ? AND revoked_at IS NULL`
	qRevokeUserTokens = `UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = ? AND revoked_at IS NULL`
	qPurgeRefresh     = `DELETE FROM refresh_tokens WHERE expires_at < ? OR revoked_at IS NOT NULL`
)

// TokenRepo persists refresh tokens for the HTTP API.  Only the SHA-256
// hash of a token is stored.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx, qInsertRefresh, userID, tokenHash, exp)
	return err
}

// ConsumeRefresh revokes a live token and returns its owner.  The revoke
// is a single conditional update, so of two concurrent calls with the same
// token only one succeeds.  Unknown, revoked and expired tokens all yield
// ErrNotFound.
func (r *TokenRepo) ConsumeRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, qConsumeRefresh, tokenHash, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	var owner uint64
	if err := tx.QueryRowContext(ctx, qRefreshOwner, tokenHash).Scan(&owner); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return owner, nil
}

// RevokeByHash is a no-op for unknown or already revoked tokens.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx, qRevokeRefresh, tokenHash)
	return err
}

// RevokeAllForUser signs an account out of every device.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, qRevokeUserTokens, userID)
	return err
}

// PurgeExpired deletes tokens that expired before now or were revoked and
// reports how many rows went.
func (r *TokenRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, qPurgeRefresh, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
