package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/celestiaorg/quill/internal/db/models"
)

// ContentRepository handles database operations for content items
type ContentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new instance of ContentRepository
func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create creates a new content item in the database
func (r *ContentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	if item.ScheduledFor != nil {
		utc := item.ScheduledFor.UTC()
		item.ScheduledFor = &utc
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID retrieves a content item by ID
func (r *ContentRepository) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("content item not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}
	return &item, nil
}

// GetWithOwner retrieves a content item together with its website and the website's user
func (r *ContentRepository) GetWithOwner(ctx context.Context, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := r.db.WithContext(ctx).
		Preload("Website.User").
		Where("id = ?", id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("content item not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}
	return &item, nil
}

// ListDue retrieves scheduled items whose scheduled time is at or before now
func (r *ContentRepository) ListDue(ctx context.Context, now time.Time) ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?",
			models.ContentStatusScheduled, now.UTC()).
		Order("scheduled_for ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due content items: %w", err)
	}
	return items, nil
}

// ListByUser retrieves the content items of every website owned by a user
func (r *ContentRepository) ListByUser(ctx context.Context, userID string, opts *models.ListOptions) ([]models.ContentItem, error) {
	var items []models.ContentItem
	query := r.db.WithContext(ctx).
		Joins("JOIN websites ON websites.id = content_items.website_id").
		Where("websites.user_id = ?", userID)
	if opts != nil {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}
	return items, nil
}

// UpdateFields applies a partial update to a content item
func (r *ContentRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update content item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("content item not found: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete removes a content item and all of its jobs
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("content_item_id = ?", id).Delete(&models.AgentJob{}).Error; err != nil {
			return fmt.Errorf("failed to delete jobs: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.ContentItem{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete content item: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("content item not found: %w", gorm.ErrRecordNotFound)
		}
		return nil
	})
}
