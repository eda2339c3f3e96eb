package services

import (
	"context"
	"fmt"

	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/db/models"
	"github.com/celestiaorg/quill/internal/db/repos"
	"github.com/celestiaorg/quill/internal/types"
)

// Website handles website operations for users
type Website struct {
	repo *repos.WebsiteRepository
}

// NewWebsiteService creates a new instance of the website service
func NewWebsiteService(repo *repos.WebsiteRepository) *Website {
	return &Website{repo: repo}
}

// Create registers a website owned by the caller
func (s *Website) Create(ctx context.Context, p *auth.Principal, req *types.CreateWebsiteRequest) (*models.Website, error) {
	userID, err := requireUser(p)
	if err != nil {
		return nil, err
	}

	website := &models.Website{
		UserID:      userID,
		Name:        req.Name,
		URL:         req.URL,
		Username:    req.Username,
		AppPassword: req.AppPassword,
	}
	if website.Name == "" {
		website.Name = req.URL
	}
	if err := s.repo.Create(ctx, website); err != nil {
		return nil, fmt.Errorf("failed to create website: %w", err)
	}
	return website, nil
}

// List returns the caller's websites
func (s *Website) List(ctx context.Context, p *auth.Principal) ([]models.Website, error) {
	userID, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}
