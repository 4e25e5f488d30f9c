package repository

import (
	"context"
)

// Storage aggregates all repositories over a single connection or transaction
type Storage interface {
	User() UserRepo
	Session() SessionRepo

	// Run fn with storage bound to one db transaction
	// Rollback everything fn did if it returns an error
	InTx(ctx context.Context, fn func(s Storage) error) error
}
