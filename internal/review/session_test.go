package review

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sample() *Session {
	brand := "Amul"
	return NewSession([]entity.CandidateItem{
		{Name: "Tomatoes", Quantity: 1, Unit: "kg", Location: "Pantry", Status: "Fresh", Price: price("30")},
		{Name: "Milk", Brand: &brand, Quantity: 1, Unit: "l", Location: "Fridge", Status: "Fresh", Price: price("65")},
	})
}

func TestNewSessionSelectsAll(t *testing.T) {
	s := sample()
	rows := s.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "row-1", rows[0].ID)
	assert.Equal(t, "row-2", rows[1].ID)
	assert.True(t, rows[0].Selected)
	assert.False(t, rows[0].IsEditing)
	assert.Equal(t, 2, s.SelectedCount())
	assert.Equal(t, "95", s.TotalValue().String())
}

func TestToggleSelect(t *testing.T) {
	s := sample()
	require.NoError(t, s.ToggleSelect("row-2"))
	assert.Equal(t, 1, s.SelectedCount())
	assert.Equal(t, "30", s.TotalValue().String())

	sel := s.Selected()
	require.Len(t, sel, 1)
	assert.Equal(t, "Tomatoes", sel[0].Name)

	assert.ErrorIs(t, s.ToggleSelect("row-9"), common.ErrNotFound)
}

func TestToggleSelectAll(t *testing.T) {
	s := sample()
	s.ToggleSelectAll()
	assert.Zero(t, s.SelectedCount())

	s.ToggleSelectAll()
	assert.Equal(t, 2, s.SelectedCount())

	require.NoError(t, s.ToggleSelect("row-1"))
	s.ToggleSelectAll()
	assert.Equal(t, 2, s.SelectedCount())
}

func TestUpdateFieldAllowsArbitraryContent(t *testing.T) {
	s := sample()
	require.NoError(t, s.UpdateField("row-1", "name", ""))
	require.NoError(t, s.UpdateField("row-1", "quantity", "3"))
	require.NoError(t, s.UpdateField("row-1", "quantity", 2.9))
	require.NoError(t, s.UpdateField("row-1", "category", "Vegetables"))
	require.NoError(t, s.UpdateField("row-1", "price", "42.50"))
	require.NoError(t, s.UpdateField("row-2", "brand", ""))
	require.NoError(t, s.UpdateField("row-2", "notes", "organic"))

	r, ok := s.Get("row-1")
	require.True(t, ok)
	assert.Empty(t, r.Name)
	assert.Equal(t, 2, r.Quantity)
	require.NotNil(t, r.Category)
	assert.Equal(t, "Vegetables", *r.Category)
	assert.Equal(t, "42.5", r.Price.String())

	r, _ = s.Get("row-2")
	assert.Nil(t, r.Brand)
	require.NotNil(t, r.Notes)
	assert.Equal(t, "organic", *r.Notes)
}

func TestUpdateFieldClampsHugeQuantities(t *testing.T) {
	s := sample()
	require.NoError(t, s.UpdateField("row-1", "quantity", 1e300))
	r, _ := s.Get("row-1")
	assert.Equal(t, math.MaxInt32, r.Quantity)

	require.NoError(t, s.UpdateField("row-1", "quantity", "-1e300"))
	r, _ = s.Get("row-1")
	assert.Equal(t, math.MinInt32, r.Quantity)

	require.NoError(t, s.UpdateField("row-1", "quantity", "7.8"))
	r, _ = s.Get("row-1")
	assert.Equal(t, 7, r.Quantity)
}

func TestUpdateFieldRejects(t *testing.T) {
	s := sample()
	assert.ErrorIs(t, s.UpdateField("row-1", "quantity", "lots"), common.ErrValidation)
	assert.ErrorIs(t, s.UpdateField("row-1", "price", "cheap"), common.ErrValidation)
	assert.ErrorIs(t, s.UpdateField("row-1", "colour", "red"), common.ErrValidation)
	assert.ErrorIs(t, s.UpdateField("row-7", "name", "x"), common.ErrNotFound)

	r, _ := s.Get("row-1")
	assert.Equal(t, 1, r.Quantity, "failed update leaves the row unchanged")
}

func TestDuplicateRow(t *testing.T) {
	s := sample()
	require.NoError(t, s.StartEdit("row-2"))

	id, err := s.DuplicateRow("row-2")
	require.NoError(t, err)
	assert.Equal(t, "row-3", id)

	rows := s.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "row-3", rows[2].ID)
	assert.Equal(t, rows[1].CandidateItem, rows[2].CandidateItem)
	assert.True(t, rows[1].IsEditing)
	assert.False(t, rows[2].IsEditing)

	require.NoError(t, s.UpdateField("row-3", "brand", "Mother Dairy"))
	orig, _ := s.Get("row-2")
	assert.Equal(t, "Amul", *orig.Brand, "copies do not share field storage")

	first, err := s.DuplicateRow("row-1")
	require.NoError(t, err)
	rows = s.Rows()
	assert.Equal(t, []string{"row-1", first, "row-2", "row-3"}, []string{rows[0].ID, rows[1].ID, rows[2].ID, rows[3].ID})
}

func TestRemoveRowAndIDsStayUnique(t *testing.T) {
	s := sample()
	require.NoError(t, s.RemoveRow("row-1"))
	assert.ErrorIs(t, s.RemoveRow("row-1"), common.ErrNotFound)

	id := s.AddBlankRow()
	assert.Equal(t, "row-3", id)
	r, ok := s.Get(id)
	require.True(t, ok)
	assert.True(t, r.IsEditing)
	assert.True(t, r.Selected)
	assert.Equal(t, "pcs", r.Unit)
	assert.Equal(t, "Pantry", r.Location)
	assert.Equal(t, 1, r.Quantity)
	require.NoError(t, s.StopEdit(id))
	r, _ = s.Get(id)
	assert.False(t, r.IsEditing)
}

func TestCommitRowsCarriesSelection(t *testing.T) {
	s := sample()
	require.NoError(t, s.ToggleSelect("row-2"))
	rows := s.CommitRows()
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Selected)
	assert.False(t, rows[1].Selected)
	assert.Equal(t, "Milk", rows[1].Name)
}
