package domain

import "sort"

// FeedEntry is one line of the live feed: transient "what is happening
// right now" narration. Feed entries live in memory only and are pruned to
// the current UTC day; the durable counterpart is the activity log.
type FeedEntry struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// validFeedTypes is the closed set of feed entry types.
var validFeedTypes = map[string]bool{
	"thinking":        true,
	"working":         true,
	"agent-spawned":   true,
	"agent-completed": true,
	"agent-failed":    true,
	"validating":      true,
	"decision":        true,
	"error":           true,
	"completed":       true,
}

// IsValidFeedType reports whether t is an allowed feed entry type.
func IsValidFeedType(t string) bool {
	return validFeedTypes[t]
}

// ValidFeedTypes returns the allowed feed entry types in sorted order,
// for error messages listing the valid set.
func ValidFeedTypes() []string {
	types := make([]string, 0, len(validFeedTypes))
	for t := range validFeedTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
