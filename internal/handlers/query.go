package handlers

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"finance-dashboard/internal/models"
	"finance-dashboard/internal/services"
)

const queryDateLayout = "2006-01-02"

// explorerFilters is the wire form of an explorer query, shared by the JSON
// API (query parameters) and the SSE endpoints (datastar signals). An empty
// list for an optional dimension means no filter. Types is always explicit.
// An end before start is a valid query that matches nothing.
type explorerFilters struct {
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Accounts      []string `json:"accounts"`
	Types         []string `json:"types"`
	Categories    []string `json:"categories"`
	Subcategories []string `json:"subcategories"`
	Merchants     []string `json:"merchants"`
}

func filtersFromValues(v url.Values) explorerFilters {
	return explorerFilters{
		Start:         v.Get("start"),
		End:           v.Get("end"),
		Accounts:      v["account"],
		Types:         v["type"],
		Categories:    v["category"],
		Subcategories: v["subcategory"],
		Merchants:     v["merchant"],
	}
}

func (f explorerFilters) query() (services.ExplorerQuery, error) {
	var q services.ExplorerQuery
	var err error

	if q.Start, err = parseQueryDate("start", f.Start); err != nil {
		return q, err
	}
	if q.End, err = parseQueryDate("end", f.End); err != nil {
		return q, err
	}

	for _, s := range f.Types {
		t, err := models.ParseTransactionType(s)
		if err != nil {
			return q, err
		}
		q.Types = append(q.Types, t)
	}

	q.Accounts = selection(f.Accounts)
	q.Categories = selection(f.Categories)
	q.Subcategories = selection(f.Subcategories)
	q.Merchants = selection(f.Merchants)
	return q, nil
}

func parseQueryDate(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(queryDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD, got %q", name, value)
	}
	return t, nil
}

func selection(values []string) services.Selection {
	if len(values) == 0 {
		return services.AnySelection()
	}
	return services.Only(values...)
}
