package domain

import (
	"fmt"
	"sort"
	"time"
)

// LocationPredicate filters candidate locations for a single item.
// Used by the return-goods variant to enforce condition compatibility.
type LocationPredicate func(item *StockItem, location *Location) bool

// AssignmentResult is the outcome of one FEFO batch. Items with no
// placeable location appear in Unassigned; that is a normal outcome the
// caller handles (typically by raising a restock request), not a failure.
type AssignmentResult struct {
	Assignments map[string]string // stock item id -> location id
	Unassigned  []string          // stock item ids with no current capacity
	Events      []Event
}

// AssignFEFO assigns locations to stock items in first-expired-first-out
// order. Items are sorted ascending by expiration date with a stable tie
// break; items without an expiration date sort last. Candidates are
// scanned in declared order, and each reservation immediately reduces the
// capacity seen by subsequent items, so the batch is deterministic and a
// location is never double-booked within one invocation.
//
// An empty candidate set yields an empty result, not an error.
func AssignFEFO(items []*StockItem, candidates []*Location, now time.Time) (*AssignmentResult, error) {
	return assignFEFO(items, candidates, nil, now)
}

// AssignFEFOFiltered is the condition-based variant: candidates failing
// the predicate for an item are skipped before the capacity scan.
func AssignFEFOFiltered(items []*StockItem, candidates []*Location, predicate LocationPredicate, now time.Time) (*AssignmentResult, error) {
	return assignFEFO(items, candidates, predicate, now)
}

// AssignReturnLocations places returned goods onto locations tagged for
// the given product condition and emits one batch event carrying all the
// line assignments.
func AssignReturnLocations(items []*StockItem, candidates []*Location, condition string, now time.Time) (*AssignmentResult, error) {
	result, err := assignFEFO(items, candidates, func(_ *StockItem, loc *Location) bool {
		return loc.MatchesCondition(condition)
	}, now)
	if err != nil {
		return nil, err
	}

	if len(result.Assignments) > 0 {
		lines := make([]LineAssignment, 0, len(result.Assignments))
		for _, item := range sortFEFO(items) {
			locationID, ok := result.Assignments[item.StockItemID]
			if !ok {
				continue
			}
			lines = append(lines, LineAssignment{
				StockItemID: item.StockItemID,
				SKU:         item.SKU,
				LocationID:  locationID,
				Quantity:    item.Quantity,
			})
		}
		result.Events = append(result.Events, &ReturnLocationAssignedEvent{
			TenantID:    items[0].TenantID,
			Assignments: lines,
			AssignedAt:  now,
		})
	}

	return result, nil
}

func assignFEFO(items []*StockItem, candidates []*Location, predicate LocationPredicate, now time.Time) (*AssignmentResult, error) {
	result := &AssignmentResult{
		Assignments: make(map[string]string, len(items)),
	}

	for _, item := range sortFEFO(items) {
		location := findLocation(item, candidates, predicate)
		if location == nil {
			result.Unassigned = append(result.Unassigned, item.StockItemID)
			result.Events = append(result.Events, &RestockRequestedEvent{
				StockItemID: item.StockItemID,
				TenantID:    item.TenantID,
				SKU:         item.SKU,
				Quantity:    item.Quantity,
				RequestedAt: now,
			})
			continue
		}

		reserveEvents, err := location.Reserve(item.Quantity, now)
		if err != nil {
			return nil, fmt.Errorf("reserve capacity at %s: %w", location.LocationID, err)
		}
		assignEvents, err := item.AssignLocation(location.LocationID, now)
		if err != nil {
			return nil, fmt.Errorf("assign location %s: %w", location.LocationID, err)
		}

		result.Assignments[item.StockItemID] = location.LocationID
		result.Events = append(result.Events, assignEvents...)
		result.Events = append(result.Events, reserveEvents...)
	}

	return result, nil
}

// sortFEFO returns the items in ascending expiration order without
// mutating the input slice. Items with no expiration date are treated as
// never expiring and sort last; the sort is stable so equal expirations
// keep their declared order.
func sortFEFO(items []*StockItem) []*StockItem {
	sorted := make([]*StockItem, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].ExpirationDate, sorted[j].ExpirationDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return sorted
}

func findLocation(item *StockItem, candidates []*Location, predicate LocationPredicate) *Location {
	for _, loc := range candidates {
		if !loc.AcceptsStock() {
			continue
		}
		if predicate != nil && !predicate(item, loc) {
			continue
		}
		if loc.HasCapacity(item.Quantity) {
			return loc
		}
	}
	return nil
}
