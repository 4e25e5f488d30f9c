package repository

import (
	"context"

	"github.com/adhub/backend/internal/models"
)

type CreateUserParams struct {
	Email        string
	Username     string
	PasswordHash string
	FirstName    *string
	LastName     *string
	Phone        *string
	RoleName     string
	Status       string
}

type ListUsersOpts struct {
	Limit  int
	Offset int
}

// User repository interface
type UserRepo interface {
	// Create user with the given role
	// Must return apperrors.ErrEmailTaken or apperrors.ErrUsernameTaken on
	// the matching unique violation and apperrors.ErrRoleNotFound if the
	// role is not seeded
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or login email, role always loaded
	// Must return apperrors.ErrUserNotFound if absent
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Stamp last successful login with now
	UpdateLastLogin(ctx context.Context, id int64) error

	// Set avatar url, used by default-avatar initialization
	UpdateAvatarURL(ctx context.Context, id int64, url string) error

	// List users ordered by id, admin listing
	ListUsers(ctx context.Context, opts ListUsersOpts) ([]models.User, error)
}
