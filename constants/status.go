package constants

// ItemStatus is the stored freshness status of an inventory item.
type ItemStatus string

// Stable values (store these exact strings in DB).
const (
	StatusFresh    ItemStatus = "Fresh"
	StatusExpiring ItemStatus = "Expiring"
	StatusExpired  ItemStatus = "Expired"
)

// LogAction is the kind of mutation recorded in item_logs.
type LogAction string

const (
	ActionAdded    LogAction = "Added"
	ActionUpdated  LogAction = "Updated"
	ActionConsumed LogAction = "Consumed"
	ActionRemoved  LogAction = "Removed"
)

// ExpiringWindowDays is the inclusive upper bound of the Expiring status.
const ExpiringWindowDays = 7

// MonthWindowDays is the inclusive upper bound of the "this month" expiry bucket.
const MonthWindowDays = 30

// ValidStatus reports whether s is a known item status.
func ValidStatus(s string) bool {
	switch ItemStatus(s) {
	case StatusFresh, StatusExpiring, StatusExpired:
		return true
	}
	return false
}
