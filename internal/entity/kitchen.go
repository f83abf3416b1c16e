package entity

import (
	"time"

	"github.com/google/uuid"
)

// Kitchen is a named inventory container owned by one user.
type Kitchen struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// KitchenStats summarises a kitchen's inventory.
type KitchenStats struct {
	TotalItems    int `json:"totalItems"`
	ExpiringCount int `json:"expiringCount"`
	ExpiredCount  int `json:"expiredCount"`
}
