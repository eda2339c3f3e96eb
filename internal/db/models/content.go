package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Field names for content item model
const (
	// ContentScheduledForField is the field name for the scheduled time
	ContentScheduledForField = "scheduled_for"
	// ContentPublishedURLField is the field name for the published URL
	ContentPublishedURLField = "published_url"
	// ContentTitleField is the field name for the title
	ContentTitleField = "title"
	// ContentWebsiteIDField is the field name for the owning website
	ContentWebsiteIDField = "website_id"
)

// ContentStatus represents the editorial state of a content item
type ContentStatus string

// Content status constants
const (
	// ContentStatusDraft is an unscheduled item, or one the agent saved as draft
	ContentStatusDraft ContentStatus = "draft"
	// ContentStatusScheduled is waiting for its scheduled time
	ContentStatusScheduled ContentStatus = "scheduled"
	// ContentStatusRunning is never stored; it is derived from the latest job
	ContentStatusRunning ContentStatus = "running"
	// ContentStatusPublished has a live post
	ContentStatusPublished ContentStatus = "published"
	// ContentStatusFailed could not be published
	ContentStatusFailed ContentStatus = "failed"
)

// String returns the string representation of the content status
func (s ContentStatus) String() string {
	return string(s)
}

// ParseContentStatus converts a string to a ContentStatus type
func ParseContentStatus(str string) (ContentStatus, error) {
	switch ContentStatus(strings.ToLower(str)) {
	case ContentStatusDraft:
		return ContentStatusDraft, nil
	case ContentStatusScheduled:
		return ContentStatusScheduled, nil
	case ContentStatusRunning:
		return ContentStatusRunning, nil
	case ContentStatusPublished:
		return ContentStatusPublished, nil
	case ContentStatusFailed:
		return ContentStatusFailed, nil
	default:
		return "", fmt.Errorf("invalid content status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for ContentStatus
func (s *ContentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseContentStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// ContentItem is a topic to be written and published by the agent
type ContentItem struct {
	ID           string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	WebsiteID    *string       `json:"website_id,omitempty" gorm:"type:varchar(36);index"`
	Website      *Website      `json:"-" gorm:"foreignKey:WebsiteID"`
	Title        string        `json:"title" gorm:"not null"`
	Topic        string        `json:"topic" gorm:"type:text;not null"`
	Status       ContentStatus `json:"status" gorm:"not null;index"`
	ScheduledFor *time.Time    `json:"scheduled_for,omitempty" gorm:"index"`
	PublishedURL *string       `json:"published_url,omitempty" gorm:"type:text"`
	Jobs         []AgentJob    `json:"-" gorm:"foreignKey:ContentItemID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsDue reports whether a scheduled item should be dispatched at now
func (c *ContentItem) IsDue(now time.Time) bool {
	return c.Status == ContentStatusScheduled &&
		c.ScheduledFor != nil &&
		!c.ScheduledFor.After(now)
}

// Validate ensures that the content item data is valid
func (c *ContentItem) Validate() error {
	if strings.TrimSpace(c.Topic) == "" {
		return fmt.Errorf("content topic cannot be empty")
	}
	if c.Status == ContentStatusRunning {
		return fmt.Errorf("content status %q is derived and cannot be stored", c.Status)
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new content item
func (c *ContentItem) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Title == "" {
		c.Title = c.Topic
	}
	if c.Status == "" {
		c.Status = ContentStatusDraft
	}
	return c.Validate()
}
