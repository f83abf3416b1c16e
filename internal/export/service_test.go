package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

func TestInventoryXLSX(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	exp := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	s := NewService(nil)
	s.Now = func() time.Time { return now }

	kitchen := &entity.Kitchen{ID: uuid.New(), Name: "Home"}
	data, err := s.InventoryXLSX(kitchen, []*entity.Item{
		{Name: "Milk", Brand: "Amul", Quantity: 2, Unit: "l", CategoryName: "Dairy", Location: "Fridge", ExpiryDate: &exp, Status: "Expiring"},
		{Name: "Rice", Quantity: 1, Unit: "kg", Location: "Pantry", Status: "Fresh"},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Inventory")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "Milk", rows[1][0])
	assert.Equal(t, "Dairy", rows[1][4])
	assert.Equal(t, "2024-01-15", rows[1][7])
	assert.Equal(t, "5", rows[1][8])
	assert.Equal(t, "Rice", rows[2][0])
}

func TestFilename(t *testing.T) {
	id := uuid.MustParse("0b9d6a3e-1111-4222-8333-444455556666")
	name := Filename(&entity.Kitchen{ID: id}, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "inventory-0b9d6a3e-20240110.xlsx", name)
}
