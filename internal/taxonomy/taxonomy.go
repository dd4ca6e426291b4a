// Package taxonomy loads the static subcategory-to-category mapping and the
// ordered list of coarse categories shown in chart legends.
package taxonomy

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type Taxonomy struct {
	categories []string
	parents    map[string]string
}

// Load reads both taxonomy files. Any problem is fatal for startup.
func Load(mappingPath, categoriesPath string) (*Taxonomy, error) {
	cf, err := os.Open(categoriesPath)
	if err != nil {
		return nil, fmt.Errorf("open category list: %w", err)
	}
	defer cf.Close()

	mf, err := os.Open(mappingPath)
	if err != nil {
		return nil, fmt.Errorf("open category mapping: %w", err)
	}
	defer mf.Close()

	return Parse(mf, cf)
}

func Parse(mapping, categories io.Reader) (*Taxonomy, error) {
	list, err := parseCategories(categories)
	if err != nil {
		return nil, fmt.Errorf("category list: %w", err)
	}

	known := make(map[string]struct{}, len(list))
	for _, c := range list {
		known[c] = struct{}{}
	}

	parents, err := parseMapping(mapping, known)
	if err != nil {
		return nil, fmt.Errorf("category mapping: %w", err)
	}

	return &Taxonomy{categories: list, parents: parents}, nil
}

func parseCategories(r io.Reader) ([]string, error) {
	var list []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		label := strings.TrimSpace(scanner.Text())
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("line %d: duplicate category %q", line, label)
		}
		seen[label] = struct{}{}
		list = append(list, label)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.New("no categories defined")
	}
	return list, nil
}

func parseMapping(r io.Reader, known map[string]struct{}) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	parents := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		label := strings.TrimSpace(record[0])
		parent := strings.TrimSpace(record[1])
		line, _ := reader.FieldPos(0)
		if label == "" || parent == "" {
			return nil, fmt.Errorf("line %d: empty label or category", line)
		}
		if _, ok := known[parent]; !ok {
			return nil, fmt.Errorf("line %d: %q maps to unknown category %q", line, label, parent)
		}
		if prev, dup := parents[label]; dup && prev != parent {
			return nil, fmt.Errorf("line %d: %q mapped to both %q and %q", line, label, prev, parent)
		}
		parents[label] = parent
	}
	return parents, nil
}

// Categories returns the coarse categories in display order.
func (t *Taxonomy) Categories() []string {
	out := make([]string, len(t.categories))
	copy(out, t.categories)
	return out
}

func (t *Taxonomy) Lookup(subcategory string) (string, bool) {
	parent, ok := t.parents[subcategory]
	return parent, ok
}

func (t *Taxonomy) Len() int {
	return len(t.parents)
}
