package main

import "strings"

const uncategorized = "Sin categoría"

// dictEntry is one category with its keywords. Dictionaries are declared as
// YAML lists, not maps, so that declaration order survives the round-trip:
// the first matching keyword across categories wins, and that order is part
// of the contract with whoever maintains the config.
type dictEntry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type dictionary []dictEntry

// categorize maps a free-text description to a category. The description is
// trimmed and lower-cased; entries are scanned in declaration order and within
// an entry keywords are scanned in declaration order; the first keyword that
// is a substring of the description decides. No scoring, no specificity; a
// later, more specific keyword never beats an earlier match, which keeps the
// result stable as dictionaries grow.
func (d dictionary) categorize(desc string) string {
	desc = strings.ToLower(strings.TrimSpace(desc))
	for _, entry := range d {
		for _, kw := range entry.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(desc, strings.ToLower(kw)) {
				return entry.Name
			}
		}
	}
	return uncategorized
}

// categorizeGroup derives the coarse group for a category by running the same
// substring scan over the group dictionary. Two passes with one primitive:
// description -> category -> group.
func categorizeGroup(category string, groups dictionary) string {
	return groups.categorize(category)
}
