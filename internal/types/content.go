package types

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/celestiaorg/quill/internal/db/models"
)

// CreateContentRequest schedules a topic for generation
type CreateContentRequest struct {
	WebsiteID    string     `json:"website_id"`
	Topic        string     `json:"topic"`
	Title        string     `json:"title,omitempty"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}

// Validate validates the content request
func (r *CreateContentRequest) Validate() error {
	if strings.TrimSpace(r.WebsiteID) == "" {
		return fmt.Errorf("website_id is required")
	}
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	return nil
}

// ContentView is a content item with its latest job and the status shown to users
type ContentView struct {
	models.ContentItem
	LatestJob       *models.AgentJob     `json:"latest_job,omitempty"`
	EffectiveStatus models.ContentStatus `json:"effective_status"`
}

// CreateWebsiteRequest registers a publishing target
type CreateWebsiteRequest struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Username    string `json:"username"`
	AppPassword string `json:"app_password"`
}

// Validate validates the website request
func (r *CreateWebsiteRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url must be an absolute http(s) URL")
	}
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(r.AppPassword) == "" {
		return fmt.Errorf("app_password is required")
	}
	return nil
}

// UpdateSettingsRequest replaces the caller's generation credentials
type UpdateSettingsRequest struct {
	GoogleAPIKey         string `json:"google_api_key"`
	GoogleModelName      string `json:"google_model_name"`
	GoogleFallbackModels string `json:"google_fallback_models"`
}

// Validate validates the settings request
func (r *UpdateSettingsRequest) Validate() error {
	if strings.TrimSpace(r.GoogleAPIKey) == "" {
		return fmt.Errorf("google_api_key is required")
	}
	return nil
}
