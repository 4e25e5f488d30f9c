package models

import "time"

// Role names form a small closed set seeded by migration
const (
	RoleUser      = "USER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

type Role struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
