package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/celestiaorg/quill/internal/db/models"
)

// WebsiteRepository handles database operations for websites
type WebsiteRepository struct {
	db *gorm.DB
}

// NewWebsiteRepository creates a new instance of WebsiteRepository
func NewWebsiteRepository(db *gorm.DB) *WebsiteRepository {
	return &WebsiteRepository{db: db}
}

// Create creates a new website in the database
func (r *WebsiteRepository) Create(ctx context.Context, website *models.Website) error {
	return r.db.WithContext(ctx).Create(website).Error
}

// GetByID retrieves a website by ID
func (r *WebsiteRepository) GetByID(ctx context.Context, id string) (*models.Website, error) {
	var website models.Website
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&website).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("website not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get website: %w", err)
	}
	return &website, nil
}

// ListByUser retrieves the websites owned by a user
func (r *WebsiteRepository) ListByUser(ctx context.Context, userID string) ([]models.Website, error) {
	var websites []models.Website
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&websites).Error
	return websites, err
}
