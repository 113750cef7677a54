package quote

import (
	"sort"
	"strings"
)

// FilterAll selects every category.
const FilterAll = "all"

// Categories returns the distinct categories present in records, sorted.
func Categories(records []Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		c := strings.TrimSpace(r.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ResolveFilter restores a saved category when it is still present and falls
// back to FilterAll otherwise.
func ResolveFilter(saved string, categories []string) string {
	saved = strings.TrimSpace(saved)
	if saved == "" || strings.EqualFold(saved, FilterAll) {
		return FilterAll
	}
	for _, c := range categories {
		if c == saved {
			return saved
		}
	}
	return FilterAll
}

// Filter returns the records in category, or all records for FilterAll.
func Filter(records []Record, category string) []Record {
	if category == "" || category == FilterAll {
		return Clone(records)
	}
	var out []Record
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// NextFilter cycles "all" -> first category -> ... -> last category -> "all".
func NextFilter(current string, categories []string) string {
	if len(categories) == 0 {
		return FilterAll
	}
	if current == FilterAll {
		return categories[0]
	}
	for i, c := range categories {
		if c == current {
			if i+1 < len(categories) {
				return categories[i+1]
			}
			return FilterAll
		}
	}
	return FilterAll
}
