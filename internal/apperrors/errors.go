package apperrors

import (
	"errors"
)

var (
	ErrEmailTaken     = errors.New("email already taken")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrUserNotFound   = errors.New("user not found")
	ErrUserBlocked    = errors.New("user is blocked")
	ErrBadCredentials = errors.New("password does not match")

	ErrRoleNotFound = errors.New("role not found")

	ErrTokenInvalid = errors.New("token is malformed or forged")
	ErrTokenExpired = errors.New("token is expired")

	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session is expired")
)
