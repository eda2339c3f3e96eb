// Package models defines the GORM models persisted by the service
package models

import (
	"github.com/google/uuid"
)

const (
	// DefaultLimit is the max number of rows that are retrieved from the DB per listing API call
	DefaultLimit = 50
)

// Field names shared by the models
const (
	// IDField is the primary key column
	IDField = "id"
	// StatusField is the status column
	StatusField = "status"
	// CreatedAtField is the creation timestamp column
	CreatedAtField = "created_at"
	// UpdatedAtField is the update timestamp column
	UpdatedAtField = "updated_at"
)

// ListOptions represents pagination options for list operations
type ListOptions struct {
	Limit  int `json:"limit"`  // Number of items to return
	Offset int `json:"offset"` // Number of items to skip
}

// newID returns a new opaque identifier
func newID() string {
	return uuid.NewString()
}
