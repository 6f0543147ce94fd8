package model

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	log "github.com/sirupsen/logrus"
)

var ErrValidation = errors.New("model: validation failed")

type Category string

const (
	CategoryNone     Category = ""
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
	CategoryOther    Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryNone, CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth, CategoryLearning, CategoryOther:
		return true
	default:
		return false
	}
}

// Categories lists the assignable categories, excluding the unset value.
func Categories() []Category {
	return []Category{CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth, CategoryLearning, CategoryOther}
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank orders priorities by severity, higher meaning more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type DueStatus string

const (
	DueNormal  DueStatus = "normal"
	DueSoon    DueStatus = "due-soon"
	DueOverdue DueStatus = "overdue"
)

const dueSoonWindow = 24 * time.Hour

// Todo is one trackable task. Mutations go through ApplyUpdate and Toggle
// so the field invariants hold for the record's whole lifetime.
type Todo struct {
	ID          string
	Title       string
	Description string
	Category    Category
	Priority    Priority
	DueDate     *time.Time
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Draft carries raw construction input. Category, Priority and DueDate are
// unparsed strings so garbage degrades to defaults instead of erroring.
type Draft struct {
	ID          string
	Title       string
	Description string
	Category    string
	Priority    string
	DueDate     string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Patch updates only the fields that are non-nil. An empty *DueDate clears
// the due date.
type Patch struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *string
	DueDate     *string
	Completed   *bool
}

var sanitizer = bluemonday.StrictPolicy()

// stripMarkup removes HTML-like tags and resolves entities back to plain text.
func stripMarkup(raw string) string {
	return html.UnescapeString(sanitizer.Sanitize(raw))
}

// NewID mints a collision-resistant identifier with a time-ordered prefix
// and random suffix.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// New constructs a Todo from a draft. A blank title after trimming is the
// only hard failure; every other field degrades to a safe default.
func New(in Draft, now time.Time) (*Todo, error) {
	title := strings.TrimSpace(stripMarkup(in.Title))
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	category, co := ParseCategory(in.Category)
	if co == CoerceDefaulted {
		log.Warnf("model: invalid category %q dropped", in.Category)
	}
	priority, _ := ParsePriority(in.Priority)
	dueDate, _ := ParseDueDate(in.DueDate)

	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := in.UpdatedAt
	if updatedAt.IsZero() || updatedAt.Before(createdAt) {
		updatedAt = createdAt
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = NewID()
	}

	return &Todo{
		ID:          id,
		Title:       title,
		Description: stripMarkup(in.Description),
		Category:    category,
		Priority:    priority,
		DueDate:     dueDate,
		Completed:   in.Completed,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// ApplyUpdate mutates the record in place with the fields present in the
// patch, re-running the same normalization as construction.
func (t *Todo) ApplyUpdate(patch Patch, now time.Time) error {
	if patch.Title != nil {
		title := strings.TrimSpace(stripMarkup(*patch.Title))
		if title == "" {
			return fmt.Errorf("%w: title is required", ErrValidation)
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = stripMarkup(*patch.Description)
	}
	if patch.Category != nil {
		category, co := ParseCategory(*patch.Category)
		if co == CoerceDefaulted {
			log.Warnf("model: invalid category %q dropped", *patch.Category)
		}
		t.Category = category
	}
	if patch.Priority != nil {
		t.Priority, _ = ParsePriority(*patch.Priority)
	}
	if patch.DueDate != nil {
		t.DueDate, _ = ParseDueDate(*patch.DueDate)
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	t.touch(now)
	return nil
}

// Toggle flips the completion flag.
func (t *Todo) Toggle(now time.Time) {
	t.Completed = !t.Completed
	t.touch(now)
}

// CloneWithNewID copies the record under a fresh identity with fresh
// timestamps. Used to resolve ID collisions on import.
func (t Todo) CloneWithNewID(now time.Time) *Todo {
	clone := t
	clone.ID = NewID()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	if t.DueDate != nil {
		due := *t.DueDate
		clone.DueDate = &due
	}
	return &clone
}

// DueStatusAt classifies the record against the given instant. Completed
// records and records without a due date are always normal.
func (t Todo) DueStatusAt(now time.Time) DueStatus {
	if t.Completed || t.DueDate == nil {
		return DueNormal
	}
	switch {
	case t.DueDate.Before(now):
		return DueOverdue
	case t.DueDate.Sub(now) <= dueSoonWindow:
		return DueSoon
	default:
		return DueNormal
	}
}

// touch keeps UpdatedAt strictly increasing even when the clock does not.
func (t *Todo) touch(now time.Time) {
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Nanosecond)
	}
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
}

func (t Todo) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("%w: invalid category %q", ErrValidation, t.Category)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: invalid priority %q", ErrValidation, t.Priority)
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("%w: created_at is required", ErrValidation)
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return fmt.Errorf("%w: updated_at precedes created_at", ErrValidation)
	}
	return nil
}
