package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Website is an external WordPress site the agent publishes to
type Website struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `json:"user_id" gorm:"type:varchar(36);not null;index"`
	User        *User     `json:"-" gorm:"foreignKey:UserID"`
	Name        string    `json:"name"`
	URL         string    `json:"url" gorm:"not null"`
	Username    string    `json:"username"`
	AppPassword string    `json:"-" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasCredentials reports whether the site can be published to
func (w *Website) HasCredentials() bool {
	return strings.TrimSpace(w.URL) != "" &&
		strings.TrimSpace(w.Username) != "" &&
		strings.TrimSpace(w.AppPassword) != ""
}

// Validate ensures that the website data is valid
func (w *Website) Validate() error {
	if w.UserID == "" {
		return fmt.Errorf("website user_id cannot be empty")
	}
	if strings.TrimSpace(w.URL) == "" {
		return fmt.Errorf("website url cannot be empty")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new website
func (w *Website) BeforeCreate(_ *gorm.DB) error {
	if w.ID == "" {
		w.ID = newID()
	}
	return w.Validate()
}
