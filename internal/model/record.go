package model

import (
	"time"
)

const timeLayout = time.RFC3339Nano

// Record is the wire form of a Todo: dates as ISO-8601 strings, everything
// else verbatim. It is what the persistence layer serializes.
type Record struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func (t Todo) ToRecord() Record {
	rec := Record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    string(t.Category),
		Priority:    string(t.Priority),
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.Format(timeLayout),
		UpdatedAt:   t.UpdatedAt.Format(timeLayout),
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(timeLayout)
		rec.DueDate = &due
	}
	return rec
}

// FromRecord rebuilds a Todo from its wire form, re-running the full
// construction validation so malformed stored entries are repaired or
// rejected exactly like user input. Unparsable timestamps fall back to now.
func FromRecord(rec Record, now time.Time) (*Todo, error) {
	draft := Draft{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Category:    rec.Category,
		Priority:    rec.Priority,
		Completed:   rec.Completed,
		CreatedAt:   parseStoredTime(rec.CreatedAt, now),
		UpdatedAt:   parseStoredTime(rec.UpdatedAt, now),
	}
	if rec.DueDate != nil {
		draft.DueDate = *rec.DueDate
	}
	return New(draft, now)
}

func parseStoredTime(raw string, fallback time.Time) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return fallback
}
