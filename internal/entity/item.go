package entity

import (
	"time"

	"github.com/google/uuid"
)

// Item is a persisted kitchen inventory item.
type Item struct {
	ID           uuid.UUID
	KitchenID    uuid.UUID
	Name         string
	Brand        string
	Quantity     int
	Unit         string
	CategoryID   *uuid.UUID
	Location     string
	PurchaseDate *time.Time // calendar date, 00:00 UTC
	ExpiryDate   *time.Time // calendar date, 00:00 UTC
	Notes        string
	Barcode      string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Populated by joined reads only.
	CategoryName  string
	CategoryColor string
}

// ItemLog is an append-only record of an item mutation.
type ItemLog struct {
	ID               uuid.UUID  `json:"id"`
	ItemID           uuid.UUID  `json:"itemId"`
	Action           string     `json:"action"`
	Quantity         int        `json:"quantity"`
	PreviousQuantity int        `json:"previousQuantity"`
	UserID           *uuid.UUID `json:"userId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}
