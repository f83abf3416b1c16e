// Package expiry derives item freshness from calendar expiry dates.
package expiry

import (
	"math"
	"time"

	"github.com/joseph-ayodele/pantry-tracker/constants"
)

const day = 24 * time.Hour

// Bucket groups items by how soon they expire.
type Bucket string

const (
	BucketExpired   Bucket = "expired"
	BucketToday     Bucket = "today"
	BucketThisWeek  Bucket = "thisWeek"
	BucketThisMonth Bucket = "thisMonth"
	BucketLater     Bucket = "later"
	BucketNoExpiry  Bucket = "noExpiry"
)

// Buckets lists all buckets in display order.
func Buckets() []Bucket {
	return []Bucket{BucketExpired, BucketToday, BucketThisWeek, BucketThisMonth, BucketLater, BucketNoExpiry}
}

// Today truncates now to 00:00 UTC.
func Today(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DateOf normalises t to its calendar date at 00:00 UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns ceil((expiry - now) / 1 day) with expiry taken at 00:00 UTC.
func DaysUntil(expiryDate, now time.Time) int {
	d := DateOf(expiryDate).Sub(now.UTC())
	return int(math.Ceil(d.Hours() / 24))
}

// Status derives the stored status from an optional expiry date.
func Status(expiryDate *time.Time, now time.Time) constants.ItemStatus {
	if expiryDate == nil {
		return constants.StatusFresh
	}
	days := DaysUntil(*expiryDate, now)
	switch {
	case days < 0:
		return constants.StatusExpired
	case days <= constants.ExpiringWindowDays:
		return constants.StatusExpiring
	default:
		return constants.StatusFresh
	}
}

// StatusForQuantity applies the quantity-zero override on top of Status.
func StatusForQuantity(quantity int, expiryDate *time.Time, now time.Time) constants.ItemStatus {
	if quantity == 0 {
		return constants.StatusExpired
	}
	return Status(expiryDate, now)
}

// BucketFor classifies an optional expiry date relative to now.
func BucketFor(expiryDate *time.Time, now time.Time) Bucket {
	if expiryDate == nil {
		return BucketNoExpiry
	}
	days := DaysUntil(*expiryDate, now)
	switch {
	case days < 0:
		return BucketExpired
	case days == 0:
		return BucketToday
	case days <= constants.ExpiringWindowDays:
		return BucketThisWeek
	case days <= constants.MonthWindowDays:
		return BucketThisMonth
	default:
		return BucketLater
	}
}

// Window returns [today, today+days] as calendar dates.
func Window(now time.Time, days int) (from, to time.Time) {
	from = Today(now)
	return from, from.Add(time.Duration(days) * day)
}
