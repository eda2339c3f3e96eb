package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/db/models"
	"github.com/celestiaorg/quill/internal/db/repos"
	"github.com/celestiaorg/quill/internal/types"
)

// Content handles content item operations for users
type Content struct {
	contents *repos.ContentRepository
	websites *repos.WebsiteRepository
	jobs     *repos.JobRepository
}

// NewContentService creates a new instance of the content service
func NewContentService(contents *repos.ContentRepository, websites *repos.WebsiteRepository, jobs *repos.JobRepository) *Content {
	return &Content{contents: contents, websites: websites, jobs: jobs}
}

// Create schedules a topic on one of the caller's websites. Items with a
// scheduled time are created scheduled, others as drafts.
func (s *Content) Create(ctx context.Context, p *auth.Principal, req *types.CreateContentRequest) (*models.ContentItem, error) {
	website, err := s.websites.GetByID(ctx, req.WebsiteID)
	if err != nil {
		return nil, wrapLookup("website", req.WebsiteID, err)
	}
	if err := auth.Authorize(p, website.UserID); err != nil {
		return nil, err
	}

	item := &models.ContentItem{
		WebsiteID:    &website.ID,
		Topic:        req.Topic,
		Title:        req.Title,
		Status:       models.ContentStatusDraft,
		ScheduledFor: req.ScheduledFor,
	}
	if req.ScheduledFor != nil {
		item.Status = models.ContentStatusScheduled
	}
	if err := s.contents.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create content item: %w", err)
	}
	return item, nil
}

// List returns the caller's items with their latest job, ordered by
// scheduled time with unscheduled items last
func (s *Content) List(ctx context.Context, p *auth.Principal, opts *models.ListOptions) ([]types.ContentView, error) {
	userID, err := requireUser(p)
	if err != nil {
		return nil, err
	}

	items, err := s.contents.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	latest, err := s.jobs.LatestForContents(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]types.ContentView, len(items))
	for i, item := range items {
		views[i] = types.ContentView{ContentItem: item}
		if job, ok := latest[item.ID]; ok {
			views[i].LatestJob = &job
		}
		views[i].EffectiveStatus = EffectiveStatus(&item, views[i].LatestJob)
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].ScheduledFor, views[j].ScheduledFor
		switch {
		case a == nil && b == nil:
			return views[i].CreatedAt.Before(views[j].CreatedAt)
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return views, nil
}

// Delete removes one of the caller's items together with its jobs
func (s *Content) Delete(ctx context.Context, p *auth.Principal, id string) error {
	item, err := s.contents.GetWithOwner(ctx, id)
	if err != nil {
		return wrapLookup("content item", id, err)
	}
	var owner string
	if item.Website != nil {
		owner = item.Website.UserID
	}
	if err := auth.Authorize(p, owner); err != nil {
		return err
	}
	return s.contents.Delete(ctx, id)
}

// EffectiveStatus is the status shown for an item: running while its latest
// job is active, the stored status otherwise
func EffectiveStatus(item *models.ContentItem, latest *models.AgentJob) models.ContentStatus {
	if latest != nil && latest.Status.IsActive() {
		return models.ContentStatusRunning
	}
	return item.Status
}

func requireUser(p *auth.Principal) (string, error) {
	if p == nil {
		return "", ErrUnauthorized
	}
	if p.UserID == "" {
		return "", fmt.Errorf("%w: a user session is required", ErrForbidden)
	}
	return p.UserID, nil
}
