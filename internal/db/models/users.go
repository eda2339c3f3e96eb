package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// User owns websites and carries the generation credentials used by the agent
type User struct {
	ID                   string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email                string    `json:"email" gorm:"not null;uniqueIndex"`
	Name                 string    `json:"name"`
	GoogleAPIKey         string    `json:"-" gorm:"type:text"`
	GoogleModelName      string    `json:"google_model_name,omitempty"`
	GoogleFallbackModels string    `json:"google_fallback_models,omitempty"`
	Websites             []Website `json:"websites,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// HasAPIKey reports whether the user configured a generation API key
func (u *User) HasAPIKey() bool {
	return strings.TrimSpace(u.GoogleAPIKey) != ""
}

// Validate ensures that the user data is valid
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("user email cannot be empty")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new user
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = newID()
	}
	return u.Validate()
}
