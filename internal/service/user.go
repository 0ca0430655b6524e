package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/usedgoods/marketplace/internal/model"
	"github.com/usedgoods/marketplace/internal/repository"
	"github.com/usedgoods/marketplace/internal/storage"
)

type UserService struct {
	userRepository repository.UserRepository
	storage        storage.Storage
}

func NewUserService(userRepository repository.UserRepository, storage storage.Storage) *UserService {
	return &UserService{
		userRepository: userRepository,
		storage:        storage,
	}
}

// Profile is the signed-in user's own account view.
type Profile struct {
	*model.User
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (s *UserService) ByID(ctx context.Context, id string) (*Profile, error) {
	user, err := s.userRepository.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFoundError("user %s", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	profile := &Profile{User: user}
	if user.Avatar != nil {
		profile.AvatarURL = s.storage.URL(*user.Avatar)
	}

	return profile, nil
}
