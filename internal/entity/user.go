package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity-provider account mirrored locally.
type User struct {
	ID           uuid.UUID `json:"id"`
	ExternalID   string    `json:"externalId"`
	Email        string    `json:"email,omitempty"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
