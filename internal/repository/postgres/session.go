package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adhub/backend/internal/apperrors"
	"github.com/adhub/backend/internal/models"
)

type SessionRepo struct {
	DB DBTX
}

const replaceSession = `-- name: ReplaceSession
INSERT INTO sessions (user_id, token, created_at, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE
SET token = EXCLUDED.token, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at
RETURNING id, user_id, token, created_at, expires_at
`

// Replace stores a new session for the user
// Any previous session of the same user is superseded in the same statement,
// so its refresh token stops working the moment this returns
func (r *SessionRepo) Replace(ctx context.Context, session models.Session) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, replaceSession, session.UserID, session.Token, session.CreatedAt, session.ExpiresAt)
	saved, err := pgx.CollectOneRow(rows, rowToSession)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}

	return saved, nil
}

const getSession = `-- name: GetSession by refresh token string
SELECT id, user_id, token, created_at, expires_at
FROM sessions
WHERE token = $1
`

// Get returns the session even if it is already expired, expiry is the
// caller's call to make
func (r *SessionRepo) Get(ctx context.Context, token string) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, getSession, token)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, apperrors.ErrSessionNotFound
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

const rotateSession = `-- name: RotateSession
UPDATE sessions
SET token = $2, expires_at = $3, created_at = now()
WHERE token = $1
RETURNING id, user_id, token, created_at, expires_at
`

// Rotate overwrites the stored token in place
// The old token string is unusable as soon as the update commits
func (r *SessionRepo) Rotate(ctx context.Context, oldToken string, newToken string, expiresAt time.Time) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, rotateSession, oldToken, newToken, expiresAt)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, apperrors.ErrSessionNotFound
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

const deleteSession = `-- name: DeleteSession
DELETE FROM sessions
WHERE token = $1
`

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	tag, err := r.DB.Exec(ctx, deleteSession, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

const deleteExpiredSessions = `-- name: DeleteExpiredSessions
DELETE FROM sessions
WHERE expires_at <= $1
`

func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteExpiredSessions, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func rowToSession(row pgx.CollectableRow) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.UserID, &s.Token, &s.CreatedAt, &s.ExpiresAt)
	return s, err
}
