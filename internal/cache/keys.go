package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Tag names used by the record listing paths.
const (
	// TagList groups every cached listing and aggregate. All record
	// mutations invalidate it.
	TagList = "list"
)

// TagRecord returns the tag grouping entries about a single record.
func TagRecord(id int64) string {
	return "record:" + strconv.FormatInt(id, 10)
}

// ListKey builds the deterministic cache key for a record listing. Filters
// are serialised in sorted order so identical inputs always produce the same
// key, byte for byte.
func ListKey(principalID int64, tab string, cursor *int64, limit int, filters map[string]string) string {
	cursorToken := "first"
	if cursor != nil {
		cursorToken = strconv.FormatInt(*cursor, 10)
	}
	filterToken := "none"
	if len(filters) > 0 {
		names := make([]string, 0, len(filters))
		for name := range filters {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = name + "=" + filters[name]
		}
		filterToken = strings.Join(parts, ",")
	}
	return fmt.Sprintf("rncs:list:%d:%s:%s:%d|%s", principalID, tab, cursorToken, limit, filterToken)
}

// RecordKey builds the cache key for a single record detail.
func RecordKey(id int64) string {
	return "rncs:record:" + strconv.FormatInt(id, 10)
}

// SummaryKey builds the cache key for the dashboard aggregates.
func SummaryKey(scope string) string {
	if scope == "" {
		scope = "all"
	}
	return "rncs:summary:" + scope
}
