package avatar

import (
	"context"
	"fmt"

	"github.com/adhub/backend/internal/models"
	"github.com/adhub/backend/internal/repository"
)

const defaultAvatarURL = "/static/avatars/default.png"

// Service assigns profile pictures
// Only the default-avatar part lives here, uploads belong to media storage
type Service struct {
	userRepo repository.UserRepo
	url      string
}

func NewService(userRepo repository.UserRepo) *Service {
	return &Service{
		userRepo: userRepo,
		url:      defaultAvatarURL,
	}
}

// SetDefault stores the stock avatar for users that have none yet
func (s *Service) SetDefault(ctx context.Context, user models.User) error {
	if user.AvatarURL != nil && *user.AvatarURL != "" {
		return nil
	}

	if err := s.userRepo.UpdateAvatarURL(ctx, user.ID, s.url); err != nil {
		return fmt.Errorf("can't set default avatar. Err: %w", err)
	}

	return nil
}
