// Package templates holds the server-rendered dashboard page. Charts are
// drawn client-side from datastar signals pushed by the /sse endpoints.
//
//go:generate templ generate
package templates

import "encoding/json"

// initialSignals seeds the page. Both transaction types start selected so
// the explorer shows every row until the user narrows it.
func initialSignals() (string, error) {
	b, err := json.Marshal(map[string]any{
		"upload": map[string]string{"contents": "", "filename": ""},
		"filters": map[string]any{
			"start":         "",
			"end":           "",
			"accounts":      []string{},
			"types":         []string{"debit", "credit"},
			"categories":    []string{},
			"subcategories": []string{},
			"merchants":     []string{},
		},
		"options":        map[string]any{},
		"monthlyChart":   nil,
		"categoryChart":  nil,
		"explorerPoints": []any{},
	})
	return string(b), err
}
