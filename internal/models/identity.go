package models

// Identity is what the request authenticator resolves a bearer token into.
// Downstream services read it from the request context and never mutate it.
type Identity struct {
	UserID int64
	Role   string
}
