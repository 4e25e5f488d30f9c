package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adhub/backend/internal/apperrors"
	"github.com/adhub/backend/internal/models"
	"github.com/adhub/backend/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `u.id, u.email, u.username, u.password_hash,
	u.first_name, u.last_name, u.phone, u.avatar_url, u.status, u.rating,
	u.created_at, u.updated_at, u.last_login,
	r.id, r.name, r.created_at`

const createUser = `-- name: CreateUser
WITH role AS (
    SELECT id FROM user_roles WHERE name = $7
)
INSERT INTO users (email, username, password_hash, first_name, last_name, phone, role_id, status)
VALUES ($1, $2, $3, $4, $5, $6, (SELECT id FROM role), $8)
RETURNING id
`

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	var user models.User

	rows, _ := r.DB.Query(ctx, createUser,
		arg.Email, arg.Username, arg.PasswordHash,
		arg.FirstName, arg.LastName, arg.Phone,
		arg.RoleName, arg.Status,
	)
	id, err := pgx.CollectOneRow(rows, pgx.RowTo[int64])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == "users_email_key":
				return user, apperrors.ErrEmailTaken
			case pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == "users_username_key":
				return user, apperrors.ErrUsernameTaken
			case pgErr.Code == pgerrcode.NotNullViolation && pgErr.ColumnName == "role_id":
				return user, apperrors.ErrRoleNotFound
			}
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return r.GetUserByID(ctx, id)
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + `
FROM users u
JOIN user_roles r ON r.id = u.role_id
WHERE u.id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + `
FROM users u
JOIN user_roles r ON r.id = u.role_id
WHERE u.email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const updateLastLogin = `-- name: UpdateLastLogin
UPDATE users
SET last_login = now(), updated_at = now()
WHERE id = $1
`

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, updateLastLogin, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

const updateAvatarURL = `-- name: UpdateAvatarURL
UPDATE users
SET avatar_url = $2, updated_at = now()
WHERE id = $1
`

func (r *UserRepo) UpdateAvatarURL(ctx context.Context, id int64, url string) error {
	tag, err := r.DB.Exec(ctx, updateAvatarURL, id, url)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

const listUsers = `-- name: ListUsers
SELECT ` + userColumns + `
FROM users u
JOIN user_roles r ON r.id = u.role_id
ORDER BY u.id
LIMIT $1 OFFSET $2
`

func (r *UserRepo) ListUsers(ctx context.Context, opts repository.ListUsersOpts) ([]models.User, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, _ := r.DB.Query(ctx, listUsers, limit, opts.Offset)
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Phone, &u.AvatarURL, &u.Status, &u.Rating,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLogin,
		&u.Role.ID, &u.Role.Name, &u.Role.CreatedAt,
	)
	return u, err
}
