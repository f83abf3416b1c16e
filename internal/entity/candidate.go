package entity

import "github.com/shopspring/decimal"

// CandidateItem is a sanitized row proposed by invoice extraction.
// It is never persisted as-is.
type CandidateItem struct {
	Name     string           `json:"name"`
	Brand    *string          `json:"brand"`
	Quantity int              `json:"quantity"`
	Unit     string           `json:"unit"`
	Location string           `json:"location"`
	Category *string          `json:"category"`
	Notes    *string          `json:"notes"`
	Status   string           `json:"status"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// CommitRow is a reviewed candidate as submitted for commit.
type CommitRow struct {
	CandidateItem
	Selected bool `json:"selected"`
}
