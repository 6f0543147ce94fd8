package manager

import (
	"sort"
	"strings"
	"time"

	"github.com/tidylist/tidylist/internal/model"
)

type Status string

const (
	StatusAny       Status = ""
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

type SortKey string

const (
	SortByTitle     SortKey = "title"
	SortByPriority  SortKey = "priority"
	SortByDueDate   SortKey = "dueDate"
	SortByCreatedAt SortKey = "createdAt"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filter is the current search/filter/ordering configuration. Zero-valued
// fields mean "no constraint"; sort fields always hold a valid value.
type Filter struct {
	Search    string
	Category  model.Category
	Priority  model.Priority
	Status    Status
	SortBy    SortKey
	SortOrder SortOrder
}

// FilterPatch merges field-by-field into an existing Filter; nil fields are
// left untouched.
type FilterPatch struct {
	Search    *string
	Category  *string
	Priority  *string
	Status    *string
	SortBy    *string
	SortOrder *string
}

func DefaultFilter() Filter {
	return Filter{SortBy: SortByCreatedAt, SortOrder: SortDesc}
}

// Merge applies the patch, coercing unknown enum values back to the
// default the same way record fields degrade.
func (f Filter) Merge(patch FilterPatch) Filter {
	merged := f
	if patch.Search != nil {
		merged.Search = strings.TrimSpace(*patch.Search)
	}
	if patch.Category != nil {
		merged.Category, _ = model.ParseCategory(*patch.Category)
	}
	if patch.Priority != nil {
		if p := model.Priority(strings.ToLower(strings.TrimSpace(*patch.Priority))); p.IsValid() {
			merged.Priority = p
		} else {
			merged.Priority = ""
		}
	}
	if patch.Status != nil {
		switch Status(strings.ToLower(strings.TrimSpace(*patch.Status))) {
		case StatusCompleted:
			merged.Status = StatusCompleted
		case StatusPending:
			merged.Status = StatusPending
		default:
			merged.Status = StatusAny
		}
	}
	if patch.SortBy != nil {
		switch key := SortKey(strings.TrimSpace(*patch.SortBy)); key {
		case SortByTitle, SortByPriority, SortByDueDate, SortByCreatedAt:
			merged.SortBy = key
		default:
			merged.SortBy = SortByCreatedAt
		}
	}
	if patch.SortOrder != nil {
		if SortOrder(strings.ToLower(strings.TrimSpace(*patch.SortOrder))) == SortDesc {
			merged.SortOrder = SortDesc
		} else {
			merged.SortOrder = SortAsc
		}
	}
	return merged
}

func (f Filter) matches(todo model.Todo) bool {
	if needle := strings.ToLower(f.Search); needle != "" {
		haystack := strings.ToLower(todo.Title + " " + todo.Description)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	if f.Category != "" && todo.Category != f.Category {
		return false
	}
	if f.Priority != "" && todo.Priority != f.Priority {
		return false
	}
	switch f.Status {
	case StatusCompleted:
		if !todo.Completed {
			return false
		}
	case StatusPending:
		if todo.Completed {
			return false
		}
	}
	return true
}

// apply runs the filter pipeline over the collection: match, then stable
// sort so ties keep their collection order.
func (f Filter) apply(todos []model.Todo) []model.Todo {
	out := make([]model.Todo, 0, len(todos))
	for _, todo := range todos {
		if f.matches(todo) {
			out = append(out, todo)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := compareBy(f.SortBy, out[i], out[j])
		if f.SortOrder == SortDesc {
			c = -c
		}
		return c < 0
	})
	return out
}

// farFuture stands in for an absent due date so undated todos sort after
// every dated one under ascending order.
var farFuture = time.Unix(1<<62, 0)

func compareBy(key SortKey, a, b model.Todo) int {
	switch key {
	case SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortByPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case SortByDueDate:
		return compareTime(dueOrFarFuture(a), dueOrFarFuture(b))
	default:
		return compareTime(a.CreatedAt, b.CreatedAt)
	}
}

func dueOrFarFuture(todo model.Todo) time.Time {
	if todo.DueDate == nil {
		return farFuture
	}
	return *todo.DueDate
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
