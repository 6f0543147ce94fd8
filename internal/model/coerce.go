package model

import (
	"strings"
	"time"
)

// Coercion reports how a lenient field parse resolved: the input was valid,
// garbage silently replaced by a default, or genuinely unset.
type Coercion int

const (
	CoerceValid Coercion = iota
	CoerceDefaulted
	CoerceAbsent
)

// dueDateLayouts are tried in order when parsing user-supplied due dates.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseCategory normalizes raw input to a valid category. Unknown values
// degrade to the unset category rather than erroring.
func ParseCategory(raw string) (Category, Coercion) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return CategoryNone, CoerceAbsent
	}
	c := Category(trimmed)
	if c.IsValid() {
		return c, CoerceValid
	}
	return CategoryNone, CoerceDefaulted
}

// ParsePriority normalizes raw input to a valid priority, defaulting to
// medium for both unset and unknown values.
func ParsePriority(raw string) (Priority, Coercion) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return PriorityMedium, CoerceAbsent
	}
	p := Priority(trimmed)
	if p.IsValid() {
		return p, CoerceValid
	}
	return PriorityMedium, CoerceDefaulted
}

// ParseDueDate parses a due date in any accepted layout. Unparsable input
// degrades to no due date.
func ParseDueDate(raw string) (*time.Time, Coercion) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, CoerceAbsent
	}
	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return &parsed, CoerceValid
		}
	}
	return nil, CoerceDefaulted
}
