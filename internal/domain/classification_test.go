package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify_NilExpirationIsNormal(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, ClassificationNormal, Classify(nil, now))
}

func TestClassify_Boundaries(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		daysOut  int
		expected Classification
	}{
		{"yesterday is expired", -1, ClassificationExpired},
		{"today is critical", 0, ClassificationCritical},
		{"day 7 is critical", 7, ClassificationCritical},
		{"day 8 is near expiry", 8, ClassificationNearExpiry},
		{"day 30 is near expiry", 30, ClassificationNearExpiry},
		{"day 31 is normal", 31, ClassificationNormal},
		{"day 365 is normal", 365, ClassificationNormal},
		{"day 366 is extended shelf life", 366, ClassificationExtendedShelfLife},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expiry := now.AddDate(0, 0, tt.daysOut)
			assert.Equal(t, tt.expected, Classify(&expiry, now))
		})
	}
}

func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	// Early-morning "now" against a late-evening expiry on the same
	// calendar day must still count as zero days out.
	now := time.Date(2025, 6, 15, 1, 0, 0, 0, time.UTC)
	expiry := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntil(expiry, now))
	assert.Equal(t, ClassificationCritical, Classify(&expiry, now))
}

func TestClassify_Deterministic(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	expiry := now.AddDate(0, 0, 12)

	first := Classify(&expiry, now)
	second := Classify(&expiry, now)
	assert.Equal(t, first, second)
	assert.True(t, first.IsValid())
}

func TestClassification_AlertThresholds(t *testing.T) {
	assert.True(t, ClassificationExpired.IsExpiring())
	assert.True(t, ClassificationCritical.IsExpiring())
	assert.True(t, ClassificationNearExpiry.IsExpiring())
	assert.False(t, ClassificationNormal.IsExpiring())
	assert.False(t, ClassificationExtendedShelfLife.IsExpiring())

	assert.Equal(t, 7, ClassificationCritical.AlertThresholdDays())
	assert.Equal(t, 30, ClassificationNearExpiry.AlertThresholdDays())
}
