package manager

import (
	"testing"

	"github.com/tidylist/tidylist/internal/model"
)

func TestFilterMergeCoercesUnknownValues(t *testing.T) {
	search, category, sortBy, order := "milk", "chores", "sideways", "DESC"
	merged := DefaultFilter().Merge(FilterPatch{
		Search:    &search,
		Category:  &category,
		SortBy:    &sortBy,
		SortOrder: &order,
	})

	if merged.Search != "milk" {
		t.Fatalf("unexpected search: %q", merged.Search)
	}
	if merged.Category != model.CategoryNone {
		t.Fatalf("unknown category not dropped: %q", merged.Category)
	}
	if merged.SortBy != SortByCreatedAt {
		t.Fatalf("unknown sort key not defaulted: %q", merged.SortBy)
	}
	if merged.SortOrder != SortDesc {
		t.Fatalf("sort order not recognized case-insensitively: %q", merged.SortOrder)
	}
}

func TestFilterMergeLeavesUnpatchedFields(t *testing.T) {
	base := DefaultFilter()
	priority := "high"
	merged := base.Merge(FilterPatch{Priority: &priority})

	if merged.Priority != model.PriorityHigh {
		t.Fatalf("priority not applied: %q", merged.Priority)
	}
	if merged.SortBy != base.SortBy || merged.SortOrder != base.SortOrder || merged.Search != base.Search {
		t.Fatalf("untouched fields changed: %#v", merged)
	}
}

func TestDefaultFilterShowsNewestFirst(t *testing.T) {
	f := DefaultFilter()
	if f.SortBy != SortByCreatedAt || f.SortOrder != SortDesc {
		t.Fatalf("unexpected defaults: %#v", f)
	}
}
