package user

import (
	"context"
	"fmt"

	"github.com/adhub/backend/internal/models"
	"github.com/adhub/backend/internal/repository"
)

// UserService serves profile lookups for authenticated consumers
// It trusts the identity resolved by the request authenticator
type UserService struct {
	userRepo repository.UserRepo
}

func NewService(userRepo repository.UserRepo) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return user, fmt.Errorf("can't get user. Err: %w", err)
	}

	return user, nil
}

// List returns users page by page, used by the moderation listing
func (s *UserService) List(ctx context.Context, opts repository.ListUsersOpts) ([]models.User, error) {
	users, err := s.userRepo.ListUsers(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("can't list users. Err: %w", err)
	}

	return users, nil
}
