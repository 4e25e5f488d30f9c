package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User statuses stored as text in the users table
const (
	StatusActive  = "ACTIVE"
	StatusBlocked = "BLOCKED"
)

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	FirstName    *string
	LastName     *string
	Phone        *string
	AvatarURL    *string
	Role         Role
	Status       string
	Rating       decimal.NullDecimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
}

// IsActive reports whether the user may authenticate
func (u User) IsActive() bool {
	return u.Status == StatusActive
}
