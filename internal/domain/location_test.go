package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocation(t *testing.T, maxQuantity *int) *Location {
	t.Helper()
	loc, events, err := NewLocation("A-01-01-1", "tenant-1", "wh-1", "BC-001", "A", "01", 1, 1, maxQuantity, testNow)
	require.NoError(t, err)
	require.Len(t, events, 1)
	return loc
}

func intPtr(v int) *int { return &v }

func TestNewLocation_Validation(t *testing.T) {
	_, _, err := NewLocation("", "tenant-1", "wh-1", "BC-001", "A", "01", 1, 1, nil, testNow)
	assert.Error(t, err)

	_, _, err = NewLocation("A-01-01-1", "tenant-1", "wh-1", "", "A", "01", 1, 1, nil, testNow)
	assert.Error(t, err)

	_, _, err = NewLocation("A-01-01-1", "tenant-1", "wh-1", "BC-001", "A", "01", 1, 1, intPtr(0), testNow)
	assert.Error(t, err)
}

func TestReserve_TracksCapacity(t *testing.T) {
	loc := newTestLocation(t, intPtr(10))

	events, err := loc.Reserve(4, testNow)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 4, loc.CurrentQuantity)
	assert.Equal(t, LocationStatusAvailable, loc.Status)

	available, bounded := loc.AvailableCapacity()
	assert.True(t, bounded)
	assert.Equal(t, 6, available)
}

func TestReserve_FillingTransitionsToOccupied(t *testing.T) {
	loc := newTestLocation(t, intPtr(10))

	_, err := loc.Reserve(4, testNow)
	require.NoError(t, err)

	events, err := loc.Reserve(6, testNow)
	require.NoError(t, err)
	assert.Equal(t, LocationStatusOccupied, loc.Status)

	require.Len(t, events, 1)
	changed, ok := events[0].(*LocationStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, "AVAILABLE", changed.OldStatus)
	assert.Equal(t, "OCCUPIED", changed.NewStatus)
}

func TestReserve_InsufficientCapacity(t *testing.T) {
	loc := newTestLocation(t, intPtr(5))

	_, err := loc.Reserve(8, testNow)
	var insufficient *InsufficientCapacityError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 8, insufficient.Required)
	assert.Equal(t, 5, insufficient.Available)
	assert.Equal(t, 0, loc.CurrentQuantity)
}

func TestReserve_UnboundedAlwaysHasCapacity(t *testing.T) {
	loc := newTestLocation(t, nil)

	assert.True(t, loc.HasCapacity(1_000_000))
	_, err := loc.Reserve(1_000_000, testNow)
	require.NoError(t, err)
	assert.Equal(t, LocationStatusAvailable, loc.Status)
}

func TestReserve_OntoBlockedLocationFails(t *testing.T) {
	loc := newTestLocation(t, intPtr(10))
	_, err := loc.Block("damaged rack", testNow)
	require.NoError(t, err)

	_, err = loc.Reserve(1, testNow)
	var notAvailable *LocationNotAvailableError
	require.ErrorAs(t, err, &notAvailable)
	assert.Equal(t, LocationStatusBlocked, notAvailable.Status)
}

func TestRelease_FreesCapacityForReuse(t *testing.T) {
	loc := newTestLocation(t, intPtr(10))
	_, err := loc.Reserve(10, testNow)
	require.NoError(t, err)
	assert.Equal(t, LocationStatusOccupied, loc.Status)

	events, err := loc.Release(3, testNow)
	require.NoError(t, err)
	assert.Equal(t, LocationStatusAvailable, loc.Status)
	require.Len(t, events, 1)

	// The freed capacity is immediately reusable
	_, err = loc.Reserve(3, testNow)
	require.NoError(t, err)
	assert.Equal(t, LocationStatusOccupied, loc.Status)
}

func TestRelease_MoreThanCurrentFails(t *testing.T) {
	loc := newTestLocation(t, intPtr(10))
	_, err := loc.Reserve(2, testNow)
	require.NoError(t, err)

	_, err = loc.Release(5, testNow)
	assert.Error(t, err)
	assert.Equal(t, 2, loc.CurrentQuantity)
}

func TestBlock_RequiresReason(t *testing.T) {
	loc := newTestLocation(t, intPtr(10))

	_, err := loc.Block("", testNow)
	assert.ErrorIs(t, err, ErrReasonRequired)

	events, err := loc.Block("spill cleanup", testNow)
	require.NoError(t, err)
	assert.Equal(t, LocationStatusBlocked, loc.Status)
	assert.Equal(t, "spill cleanup", loc.BlockReason)
	require.Len(t, events, 1)

	// Blocking an already-blocked location is a state conflict
	_, err = loc.Block("again", testNow)
	var invalid *InvalidLocationStateError
	require.ErrorAs(t, err, &invalid)
}

func TestUnblock(t *testing.T) {
	loc := newTestLocation(t, intPtr(10))

	_, err := loc.Unblock(testNow)
	var invalid *InvalidLocationStateError
	require.ErrorAs(t, err, &invalid)

	_, err = loc.Block("audit", testNow)
	require.NoError(t, err)

	events, err := loc.Unblock(testNow)
	require.NoError(t, err)
	assert.Equal(t, LocationStatusAvailable, loc.Status)
	assert.Empty(t, loc.BlockReason)
	require.Len(t, events, 1)
}

func TestUnblock_FullLocationBecomesOccupied(t *testing.T) {
	loc := newTestLocation(t, intPtr(5))
	_, err := loc.Reserve(5, testNow)
	require.NoError(t, err)

	_, err = loc.Block("audit", testNow)
	require.NoError(t, err)

	_, err = loc.Unblock(testNow)
	require.NoError(t, err)
	assert.Equal(t, LocationStatusOccupied, loc.Status)
}

func TestMatchesCondition(t *testing.T) {
	loc := newTestLocation(t, nil)
	assert.True(t, loc.MatchesCondition("RETURN"))

	loc.ConditionTags = []string{"RETURN", "DAMAGED"}
	assert.True(t, loc.MatchesCondition("RETURN"))
	assert.False(t, loc.MatchesCondition("FROZEN"))
	assert.True(t, loc.MatchesCondition(""))
}
