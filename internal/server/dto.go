package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/items"
	"github.com/joseph-ayodele/pantry-tracker/internal/kitchens"
)

const dateLayout = "2006-01-02"

type itemResponse struct {
	ID              uuid.UUID  `json:"id"`
	KitchenID       uuid.UUID  `json:"kitchenId"`
	Name            string     `json:"name"`
	Brand           string     `json:"brand,omitempty"`
	Quantity        int        `json:"quantity"`
	Unit            string     `json:"unit"`
	CategoryID      *uuid.UUID `json:"categoryId"`
	CategoryName    string     `json:"categoryName,omitempty"`
	CategoryColor   string     `json:"categoryColor,omitempty"`
	Location        string     `json:"location"`
	PurchaseDate    *string    `json:"purchaseDate"`
	ExpiryDate      *string    `json:"expiryDate"`
	Notes           string     `json:"notes,omitempty"`
	Barcode         string     `json:"barcode,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	DaysUntilExpiry *int       `json:"daysUntilExpiry,omitempty"`
}

func toItem(it *entity.Item) itemResponse {
	return itemResponse{
		ID:            it.ID,
		KitchenID:     it.KitchenID,
		Name:          it.Name,
		Brand:         it.Brand,
		Quantity:      it.Quantity,
		Unit:          it.Unit,
		CategoryID:    it.CategoryID,
		CategoryName:  it.CategoryName,
		CategoryColor: it.CategoryColor,
		Location:      it.Location,
		PurchaseDate:  formatDate(it.PurchaseDate),
		ExpiryDate:    formatDate(it.ExpiryDate),
		Notes:         it.Notes,
		Barcode:       it.Barcode,
		Status:        it.Status,
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
	}
}

func toItems(in []*entity.Item) []itemResponse {
	out := make([]itemResponse, 0, len(in))
	for _, it := range in {
		out = append(out, toItem(it))
	}
	return out
}

type expiryGroupResponse struct {
	Bucket string         `json:"bucket"`
	Count  int            `json:"count"`
	Items  []itemResponse `json:"items"`
}

func toExpiryGroups(groups []kitchens.ExpiryGroup) []expiryGroupResponse {
	out := make([]expiryGroupResponse, 0, len(groups))
	for _, g := range groups {
		rows := make([]itemResponse, 0, len(g.Items))
		for _, ei := range g.Items {
			r := toItem(ei.Item)
			r.DaysUntilExpiry = ei.DaysUntilExpiry
			rows = append(rows, r)
		}
		out = append(out, expiryGroupResponse{Bucket: string(g.Bucket), Count: len(rows), Items: rows})
	}
	return out
}

// itemFields is the JSON shape of the user-editable item attributes.
type itemFields struct {
	Name         string  `json:"name"`
	Brand        string  `json:"brand"`
	Quantity     *int    `json:"quantity"`
	Unit         string  `json:"unit"`
	CategoryID   *string `json:"categoryId"`
	Location     string  `json:"location"`
	PurchaseDate *string `json:"purchaseDate"`
	ExpiryDate   *string `json:"expiryDate"`
	Notes        string  `json:"notes"`
	Barcode      string  `json:"barcode"`
}

// fields converts the request into service input. A missing quantity is 1.
func (f itemFields) fields() (items.Fields, error) {
	out := items.Fields{
		Name:     f.Name,
		Brand:    f.Brand,
		Quantity: 1,
		Unit:     f.Unit,
		Location: f.Location,
		Notes:    f.Notes,
		Barcode:  f.Barcode,
	}
	if f.Quantity != nil {
		out.Quantity = *f.Quantity
	}
	var err error
	if out.CategoryID, err = optionalUUID("categoryId", f.CategoryID); err != nil {
		return items.Fields{}, err
	}
	if out.PurchaseDate, err = parseDate("purchaseDate", f.PurchaseDate); err != nil {
		return items.Fields{}, err
	}
	if out.ExpiryDate, err = parseDate("expiryDate", f.ExpiryDate); err != nil {
		return items.Fields{}, err
	}
	return out, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp. Empty means no date.
func parseDate(field string, v *string) (*time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	s := strings.TrimSpace(*v)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return nil, common.ValidationErrorf("%s must be a date (YYYY-MM-DD)", field)
		}
	}
	t = t.UTC()
	return &t, nil
}

func optionalUUID(field string, v *string) (*uuid.UUID, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*v))
	if err != nil {
		return nil, common.ValidationErrorf("%s must be a UUID", field)
	}
	return &id, nil
}

// requiredUUID parses a mandatory identifier from a body or form field.
func requiredUUID(field, v string) (uuid.UUID, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return uuid.Nil, common.ValidationErrorf("%s is required", field)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, common.ValidationErrorf("%s must be a UUID", field)
	}
	return id, nil
}

// pathID parses the :id route parameter. A malformed id cannot name an owned row.
func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, common.NotFoundErrorf("resource not found")
	}
	return id, nil
}
