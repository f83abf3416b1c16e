package constants

// Storage locations offered to the extraction service and the UI.
const (
	LocationFridge  = "Fridge"
	LocationFreezer = "Freezer"
	LocationPantry  = "Pantry"
)

const (
	DefaultLocation = LocationPantry
	DefaultUnit     = "pcs"
	DefaultQuantity = 1
)

// Field limits applied to extracted and user-entered items.
const (
	MaxNameLen     = 150
	MaxBrandLen    = 100
	MaxUnitLen     = 50
	MaxLocationLen = 100
	MaxKitchenName = 100
	MaxBarcodeLen  = 64
)

// Note text used when committing invoice rows.
const (
	DefaultCurrencySymbol = "₹"
	PriceNotePrefix       = "Bought for "
	InvoiceNote           = "Added from invoice"
)

// Locations returns the allowed storage locations.
func Locations() []string {
	return []string{LocationFridge, LocationFreezer, LocationPantry}
}
