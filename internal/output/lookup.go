package output

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jmylchreest/kiwimenu/internal/recent"
)

// LookupByURI finds a record by its URI.
// Returns nil if not found.
func LookupByURI(records []recent.Record, uri string) *recent.Record {
	for i := range records {
		if records[i].URI == uri {
			return &records[i]
		}
	}
	return nil
}

// LookupByIndex finds a record by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(records []recent.Record, index int) *recent.Record {
	idx := index - 1
	if idx < 0 || idx >= len(records) {
		return nil
	}
	return &records[idx]
}

// Lookup resolves a selector: a 1-based index, a URI, or a dmenu line
// whose first field is the index.
func Lookup(records []recent.Record, selector string) *recent.Record {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil
	}
	if r := LookupByURI(records, selector); r != nil {
		return r
	}

	first, _, _ := strings.Cut(selector, "|")
	if index, err := strconv.Atoi(strings.TrimSpace(first)); err == nil {
		return LookupByIndex(records, index)
	}
	return nil
}

// SortField represents a field to sort by.
type SortField string

const (
	SortByTimestamp SortField = "timestamp"
	SortByTitle     SortField = "title"
	SortByMime      SortField = "mime"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns default sort options (newest first).
func DefaultSortOptions() SortOptions {
	return SortOptions{Field: SortByTimestamp, Order: SortDesc}
}

// Sort sorts records in place. The sort is stable, so equal keys keep
// their ranked order.
func Sort(records []recent.Record, opts SortOptions) {
	key := func(i, j int) int {
		a, b := records[i], records[j]
		switch opts.Field {
		case SortByTitle:
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case SortByMime:
			return strings.Compare(a.MimeType, b.MimeType)
		default:
			switch {
			case a.Timestamp < b.Timestamp:
				return -1
			case a.Timestamp > b.Timestamp:
				return 1
			}
			return 0
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if opts.Order == SortDesc {
			return key(i, j) > 0
		}
		return key(i, j) < 0
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title", "name", "n":
		return SortByTitle
	case "mime", "type", "m":
		return SortByMime
	default:
		return SortByTimestamp
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a":
		return SortAsc
	default:
		return SortDesc
	}
}
