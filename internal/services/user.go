package services

import (
	"context"
	"fmt"

	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/db/models"
	"github.com/celestiaorg/quill/internal/db/repos"
	"github.com/celestiaorg/quill/internal/types"
)

// User provides business logic for user operations
type User struct {
	repo *repos.UserRepository
}

// NewUserService creates a new user service instance
func NewUserService(repo *repos.UserRepository) *User {
	return &User{repo: repo}
}

// Create creates a new user
func (s *User) Create(ctx context.Context, user *models.User) error {
	if err := s.repo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by email
func (s *User) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, wrapLookup("user", email, err)
	}
	return user, nil
}

// UpdateSettings replaces the caller's generation credentials
func (s *User) UpdateSettings(ctx context.Context, p *auth.Principal, req *types.UpdateSettingsRequest) error {
	userID, err := requireUser(p)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateSettings(ctx, userID, req.GoogleAPIKey, req.GoogleModelName, req.GoogleFallbackModels); err != nil {
		return wrapLookup("user", userID, err)
	}
	return nil
}
