package domain

import "time"

// Classification is the derived shelf-life status of a stock item
type Classification string

const (
	ClassificationExpired           Classification = "EXPIRED"
	ClassificationCritical          Classification = "CRITICAL"
	ClassificationNearExpiry        Classification = "NEAR_EXPIRY"
	ClassificationNormal            Classification = "NORMAL"
	ClassificationExtendedShelfLife Classification = "EXTENDED_SHELF_LIFE"
)

// Day thresholds separating the classifications. The critical and
// near-expiry boundaries are inclusive; the extended-shelf-life boundary
// is exclusive, so day 365 still classifies NORMAL.
const (
	CriticalThresholdDays   = 7
	NearExpiryThresholdDays = 30
	ExtendedThresholdDays   = 365
)

// IsValid checks if the classification is a known value
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationExpired, ClassificationCritical, ClassificationNearExpiry,
		ClassificationNormal, ClassificationExtendedShelfLife:
		return true
	default:
		return false
	}
}

// IsExpiring reports whether the classification warrants an expiring alert
func (c Classification) IsExpiring() bool {
	switch c {
	case ClassificationExpired, ClassificationCritical, ClassificationNearExpiry:
		return true
	default:
		return false
	}
}

// AlertThresholdDays returns the day threshold associated with an expiring
// classification, used in alert payloads.
func (c Classification) AlertThresholdDays() int {
	switch c {
	case ClassificationExpired:
		return 0
	case ClassificationCritical:
		return CriticalThresholdDays
	case ClassificationNearExpiry:
		return NearExpiryThresholdDays
	default:
		return 0
	}
}

// Classify maps a nullable expiration date to a classification as of now.
// Items without an expiration date never expire and classify NORMAL.
func Classify(expirationDate *time.Time, now time.Time) Classification {
	if expirationDate == nil {
		return ClassificationNormal
	}

	days := DaysUntil(*expirationDate, now)
	switch {
	case days < 0:
		return ClassificationExpired
	case days <= CriticalThresholdDays:
		return ClassificationCritical
	case days <= NearExpiryThresholdDays:
		return ClassificationNearExpiry
	case days <= ExtendedThresholdDays:
		return ClassificationNormal
	default:
		return ClassificationExtendedShelfLife
	}
}

// DaysUntil returns the number of whole calendar days from now until the
// given date, comparing UTC dates so the result is independent of the
// time-of-day component.
func DaysUntil(date time.Time, now time.Time) int {
	d := truncateToDate(date)
	n := truncateToDate(now)
	return int(d.Sub(n).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
