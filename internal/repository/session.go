package repository

import (
	"context"
	"time"

	"github.com/adhub/backend/internal/models"
)

// Session repository interface
// One live session per user: Replace supersedes whatever was stored before.
// Concurrent Replace/Rotate/Delete on the same user are last-write-wins by
// completion order, nothing here serializes them.
type SessionRepo interface {
	// Insert session or atomically supersede the existing one for the user
	Replace(ctx context.Context, session models.Session) (models.Session, error)

	// Get session by its refresh token string
	// Must return apperrors.ErrSessionNotFound if absent
	Get(ctx context.Context, token string) (models.Session, error)

	// Overwrite token and expiry in place (refresh rotation)
	// Must return apperrors.ErrSessionNotFound if oldToken matches nothing
	Rotate(ctx context.Context, oldToken string, newToken string, expiresAt time.Time) (models.Session, error)

	// Delete session by token (logout, expired-on-refresh cleanup)
	// Must return apperrors.ErrSessionNotFound if absent
	Delete(ctx context.Context, token string) error

	// Delete sessions expired before now, returns number of rows swept
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
