package models

import "time"

// Session backs one live refresh token. The users table owns at most one
// session per user: login and refresh replace the previous row atomically.
type Session struct {
	ID        int64
	UserID    int64
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}
