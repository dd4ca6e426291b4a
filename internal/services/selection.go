package services

import (
	"slices"
	"time"

	"finance-dashboard/internal/models"
)

// Selection is a filter over one string dimension. The zero value applies no
// filter; Only restricts matches to the listed values.
type Selection struct {
	values map[string]struct{}
}

func AnySelection() Selection {
	return Selection{}
}

// Only returns a selection matching exactly values. Called with no values it
// matches nothing.
func Only(values ...string) Selection {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return Selection{values: set}
}

func (s Selection) IsAny() bool {
	return s.values == nil
}

func (s Selection) Matches(v string) bool {
	if s.values == nil {
		return true
	}
	_, ok := s.values[v]
	return ok
}

// ExplorerQuery holds the explorer filters. A zero Start or End leaves that
// side of the date range open. Types is always explicit: an empty list
// selects no rows.
type ExplorerQuery struct {
	Start         time.Time
	End           time.Time
	Accounts      Selection
	Types         []models.TransactionType
	Categories    Selection
	Subcategories Selection
	Merchants     Selection
}

type predicate func(tx *models.Transaction) bool

// predicates returns the explorer filters in evaluation order.
func (q ExplorerQuery) predicates() []predicate {
	start, end := dayOf(q.Start), dayOf(q.End)
	return []predicate{
		func(tx *models.Transaction) bool {
			if !start.IsZero() && tx.Date.Before(start) {
				return false
			}
			return end.IsZero() || !tx.Date.After(end)
		},
		func(tx *models.Transaction) bool { return q.Accounts.Matches(tx.AccountName) },
		func(tx *models.Transaction) bool { return slices.Contains(q.Types, tx.Type) },
		func(tx *models.Transaction) bool { return q.Categories.Matches(tx.Category) },
		func(tx *models.Transaction) bool { return q.Subcategories.Matches(tx.Subcategory) },
		func(tx *models.Transaction) bool { return q.Merchants.Matches(tx.Description) },
	}
}

func dayOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
