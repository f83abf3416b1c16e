// Package review holds extracted invoice rows while a user edits and selects
// them. Nothing here is persisted; a Session lives for one upload.
package review

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

// Editable field names accepted by UpdateField.
const (
	FieldName     = "name"
	FieldBrand    = "brand"
	FieldQuantity = "quantity"
	FieldUnit     = "unit"
	FieldLocation = "location"
	FieldCategory = "category"
	FieldNotes    = "notes"
	FieldPrice    = "price"
)

// StagedRow is a candidate plus its review state.
type StagedRow struct {
	ID string `json:"id"`
	entity.CandidateItem
	Selected  bool `json:"selected"`
	IsEditing bool `json:"isEditing"`
}

// Session is the staging list for one review. It is not safe for concurrent use.
type Session struct {
	rows   []*StagedRow
	nextID int
}

// NewSession stages items, all selected.
func NewSession(items []entity.CandidateItem) *Session {
	s := &Session{}
	for _, it := range items {
		s.AddRow(it)
	}
	return s
}

func (s *Session) newID() string {
	s.nextID++
	return fmt.Sprintf("row-%d", s.nextID)
}

// AddRow appends a selected row and returns its id.
func (s *Session) AddRow(c entity.CandidateItem) string {
	row := &StagedRow{ID: s.newID(), CandidateItem: cloneCandidate(c), Selected: true}
	s.rows = append(s.rows, row)
	return row.ID
}

// AddBlankRow appends an empty row already in edit mode.
func (s *Session) AddBlankRow() string {
	id := s.AddRow(entity.CandidateItem{
		Quantity: constants.DefaultQuantity,
		Unit:     constants.DefaultUnit,
		Location: constants.DefaultLocation,
		Status:   string(constants.StatusFresh),
	})
	s.rows[len(s.rows)-1].IsEditing = true
	return id
}

func (s *Session) ToggleSelect(id string) error {
	row, _, err := s.find(id)
	if err != nil {
		return err
	}
	row.Selected = !row.Selected
	return nil
}

// ToggleSelectAll deselects every row when all are selected, otherwise selects all.
func (s *Session) ToggleSelectAll() {
	all := len(s.rows) > 0
	for _, r := range s.rows {
		if !r.Selected {
			all = false
			break
		}
	}
	for _, r := range s.rows {
		r.Selected = !all
	}
}

// UpdateField sets one field of a row. Values are not validated beyond their type.
func (s *Session) UpdateField(id, field string, value any) error {
	row, _, err := s.find(id)
	if err != nil {
		return err
	}
	c := &row.CandidateItem
	switch strings.ToLower(strings.TrimSpace(field)) {
	case FieldName:
		c.Name, err = asString(field, value)
	case FieldUnit:
		c.Unit, err = asString(field, value)
	case FieldLocation:
		c.Location, err = asString(field, value)
	case FieldBrand:
		c.Brand, err = asOptional(field, value)
	case FieldCategory:
		c.Category, err = asOptional(field, value)
	case FieldNotes:
		c.Notes, err = asOptional(field, value)
	case FieldQuantity:
		var q int
		if q, err = asInt(value); err == nil {
			c.Quantity = q
		}
	case FieldPrice:
		var p *decimal.Decimal
		if p, err = asPrice(value); err == nil {
			c.Price = p
		}
	default:
		return common.ValidationErrorf("unknown field %q", field)
	}
	return err
}

// DuplicateRow inserts a copy right after id and returns the copy's id.
func (s *Session) DuplicateRow(id string) (string, error) {
	row, idx, err := s.find(id)
	if err != nil {
		return "", err
	}
	dup := &StagedRow{
		ID:            s.newID(),
		CandidateItem: cloneCandidate(row.CandidateItem),
		Selected:      row.Selected,
	}
	s.rows = append(s.rows, nil)
	copy(s.rows[idx+2:], s.rows[idx+1:])
	s.rows[idx+1] = dup
	return dup.ID, nil
}

func (s *Session) RemoveRow(id string) error {
	_, idx, err := s.find(id)
	if err != nil {
		return err
	}
	s.rows = append(s.rows[:idx], s.rows[idx+1:]...)
	return nil
}

func (s *Session) StartEdit(id string) error { return s.setEditing(id, true) }

func (s *Session) StopEdit(id string) error { return s.setEditing(id, false) }

func (s *Session) setEditing(id string, on bool) error {
	row, _, err := s.find(id)
	if err != nil {
		return err
	}
	row.IsEditing = on
	return nil
}

// Rows returns a snapshot in display order.
func (s *Session) Rows() []StagedRow {
	out := make([]StagedRow, 0, len(s.rows))
	for _, r := range s.rows {
		cp := *r
		cp.CandidateItem = cloneCandidate(r.CandidateItem)
		out = append(out, cp)
	}
	return out
}

func (s *Session) Get(id string) (StagedRow, bool) {
	row, _, err := s.find(id)
	if err != nil {
		return StagedRow{}, false
	}
	cp := *row
	cp.CandidateItem = cloneCandidate(row.CandidateItem)
	return cp, true
}

func (s *Session) Len() int { return len(s.rows) }

// Selected returns the selected candidates in display order.
func (s *Session) Selected() []entity.CandidateItem {
	var out []entity.CandidateItem
	for _, r := range s.rows {
		if r.Selected {
			out = append(out, cloneCandidate(r.CandidateItem))
		}
	}
	return out
}

func (s *Session) SelectedCount() int {
	n := 0
	for _, r := range s.rows {
		if r.Selected {
			n++
		}
	}
	return n
}

// TotalValue sums the captured prices of selected rows.
func (s *Session) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.rows {
		if r.Selected && r.Price != nil {
			total = total.Add(*r.Price)
		}
	}
	return total
}

// CommitRows renders every row with its selection flag for the commit call.
func (s *Session) CommitRows() []entity.CommitRow {
	out := make([]entity.CommitRow, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, entity.CommitRow{CandidateItem: cloneCandidate(r.CandidateItem), Selected: r.Selected})
	}
	return out
}

func (s *Session) find(id string) (*StagedRow, int, error) {
	for i, r := range s.rows {
		if r.ID == id {
			return r, i, nil
		}
	}
	return nil, -1, common.NotFoundErrorf("row %s not found", id)
}

func cloneCandidate(c entity.CandidateItem) entity.CandidateItem {
	c.Brand = cloneStr(c.Brand)
	c.Category = cloneStr(c.Category)
	c.Notes = cloneStr(c.Notes)
	if c.Price != nil {
		p := *c.Price
		c.Price = &p
	}
	return c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func asString(field string, v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case *string:
		if t == nil {
			return "", nil
		}
		return *t, nil
	case nil:
		return "", nil
	default:
		return "", common.ValidationErrorf("%s must be text", field)
	}
}

func asOptional(field string, v any) (*string, error) {
	if p, ok := v.(*string); ok {
		return cloneStr(p), nil
	}
	s, err := asString(field, v)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return &s, nil
}

func asInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return floorQuantity(float64(t)), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, common.ValidationErrorf("quantity must be a number")
		}
		return floorQuantity(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, common.ValidationErrorf("quantity must be a number, got %q", t)
		}
		return floorQuantity(f), nil
	default:
		return 0, common.ValidationErrorf("quantity must be a number")
	}
}

// floorQuantity floors f into the int32 range stored for quantities.
func floorQuantity(f float64) int {
	f = math.Floor(f)
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

func asPrice(v any) (*decimal.Decimal, error) {
	var d decimal.Decimal
	switch t := v.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		d = t
	case *decimal.Decimal:
		if t == nil {
			return nil, nil
		}
		d = *t
	case int:
		d = decimal.NewFromInt(int64(t))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, common.ValidationErrorf("price must be a number")
		}
		d = decimal.NewFromFloat(t)
	case string:
		str := strings.TrimSpace(t)
		if str == "" {
			return nil, nil
		}
		parsed, err := decimal.NewFromString(str)
		if err != nil {
			return nil, common.ValidationErrorf("price must be a number, got %q", t)
		}
		d = parsed
	default:
		return nil, common.ValidationErrorf("price must be a number")
	}
	return &d, nil
}
