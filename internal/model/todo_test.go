package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func TestNewValidDraft(t *testing.T) {
	now := fixedNow()
	todo, err := New(Draft{
		Title:       "  Pay rent  ",
		Description: "Transfer before the 1st",
		Category:    "personal",
		Priority:    "high",
		DueDate:     "2026-04-01",
	}, now)
	if err != nil {
		t.Fatalf("expected valid todo, got error: %v", err)
	}
	if todo.Title != "Pay rent" {
		t.Fatalf("expected trimmed title, got %q", todo.Title)
	}
	if todo.Category != CategoryPersonal || todo.Priority != PriorityHigh {
		t.Fatalf("unexpected classification: %#v", todo)
	}
	if todo.DueDate == nil || todo.DueDate.Format("2006-01-02") != "2026-04-01" {
		t.Fatalf("unexpected due date: %v", todo.DueDate)
	}
	if todo.ID == "" {
		t.Fatal("expected generated id")
	}
	if !todo.CreatedAt.Equal(now) || !todo.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected timestamps: created=%v updated=%v", todo.CreatedAt, todo.UpdatedAt)
	}
	if err := todo.Validate(); err != nil {
		t.Fatalf("constructed todo failed validation: %v", err)
	}
}

func TestNewRejectsBlankTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "<b></b>", "<script>alert(1)</script>"} {
		_, err := New(Draft{Title: title}, fixedNow())
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("title %q: expected ErrValidation, got %v", title, err)
		}
	}
}

func TestNewStripsMarkup(t *testing.T) {
	todo, err := New(Draft{
		Title:       "<b>Buy</b> milk",
		Description: "from the <a href=\"http://x\">corner shop</a> & bakery",
	}, fixedNow())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if todo.Title != "Buy milk" {
		t.Fatalf("expected stripped title, got %q", todo.Title)
	}
	if todo.Description != "from the corner shop & bakery" {
		t.Fatalf("expected stripped description, got %q", todo.Description)
	}
	if strings.ContainsAny(todo.Title+todo.Description, "<>") {
		t.Fatalf("markup survived: %q %q", todo.Title, todo.Description)
	}
}

func TestNewCoercesGarbageFields(t *testing.T) {
	todo, err := New(Draft{
		Title:    "Garbage in",
		Category: "chores",
		Priority: "urgent!!",
		DueDate:  "next tuesday",
	}, fixedNow())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if todo.Category != CategoryNone {
		t.Fatalf("expected empty category, got %q", todo.Category)
	}
	if todo.Priority != PriorityMedium {
		t.Fatalf("expected medium priority, got %q", todo.Priority)
	}
	if todo.DueDate != nil {
		t.Fatalf("expected absent due date, got %v", todo.DueDate)
	}
}

func TestApplyUpdatePartial(t *testing.T) {
	now := fixedNow()
	todo, err := New(Draft{Title: "Original", Priority: "low"}, now)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	title := "Renamed <i>task</i>"
	later := now.Add(time.Minute)
	if err := todo.ApplyUpdate(Patch{Title: &title}, later); err != nil {
		t.Fatalf("update: %v", err)
	}
	if todo.Title != "Renamed task" {
		t.Fatalf("unexpected title: %q", todo.Title)
	}
	if todo.Priority != PriorityLow {
		t.Fatalf("untouched field changed: %q", todo.Priority)
	}
	if !todo.UpdatedAt.Equal(later) {
		t.Fatalf("expected refreshed UpdatedAt, got %v", todo.UpdatedAt)
	}

	blank := "   "
	if err := todo.ApplyUpdate(Patch{Title: &blank}, later.Add(time.Minute)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank title, got %v", err)
	}
	if todo.Title != "Renamed task" {
		t.Fatalf("failed update mutated title: %q", todo.Title)
	}
}

func TestApplyUpdateClearsDueDate(t *testing.T) {
	now := fixedNow()
	todo, err := New(Draft{Title: "Dated", DueDate: "2026-05-01"}, now)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	empty := ""
	if err := todo.ApplyUpdate(Patch{DueDate: &empty}, now.Add(time.Second)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if todo.DueDate != nil {
		t.Fatalf("expected cleared due date, got %v", todo.DueDate)
	}
}

func TestToggleIdempotentPair(t *testing.T) {
	now := fixedNow()
	todo, err := New(Draft{Title: "Flip me"}, now)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	first := todo.UpdatedAt
	todo.Toggle(now)
	if !todo.Completed {
		t.Fatal("expected completed after first toggle")
	}
	second := todo.UpdatedAt
	if !second.After(first) {
		t.Fatalf("UpdatedAt did not increase: %v -> %v", first, second)
	}

	todo.Toggle(now)
	if todo.Completed {
		t.Fatal("expected pending after second toggle")
	}
	if !todo.UpdatedAt.After(second) {
		t.Fatalf("UpdatedAt did not increase on second toggle: %v -> %v", second, todo.UpdatedAt)
	}
}

func TestCloneWithNewID(t *testing.T) {
	now := fixedNow()
	todo, err := New(Draft{Title: "Template", Category: "work", DueDate: "2026-04-10"}, now)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	later := now.Add(time.Hour)
	clone := todo.CloneWithNewID(later)
	if clone.ID == todo.ID {
		t.Fatal("clone kept the original id")
	}
	if clone.Title != todo.Title || clone.Category != todo.Category {
		t.Fatalf("clone lost fields: %#v", clone)
	}
	if !clone.CreatedAt.Equal(later) || !clone.UpdatedAt.Equal(later) {
		t.Fatalf("clone kept old timestamps: %#v", clone)
	}
	if clone.DueDate == todo.DueDate {
		t.Fatal("clone shares due date pointer with original")
	}
	if !clone.DueDate.Equal(*todo.DueDate) {
		t.Fatalf("clone due date differs: %v vs %v", clone.DueDate, todo.DueDate)
	}
}

func TestDueStatusAt(t *testing.T) {
	now := fixedNow()
	newTodo := func(due string, completed bool) *Todo {
		todo, err := New(Draft{Title: "Deadline", DueDate: due, Completed: completed}, now)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		return todo
	}

	if got := newTodo("", false).DueStatusAt(now); got != DueNormal {
		t.Fatalf("no due date: expected normal, got %q", got)
	}

	due := now.Add(25 * time.Hour).Format(time.RFC3339)
	todo := newTodo(due, false)
	if got := todo.DueStatusAt(now); got != DueNormal {
		t.Fatalf("25h out: expected normal, got %q", got)
	}
	if got := todo.DueStatusAt(now.Add(2 * time.Hour)); got != DueSoon {
		t.Fatalf("23h out: expected due-soon, got %q", got)
	}
	if got := todo.DueStatusAt(now.Add(26 * time.Hour)); got != DueOverdue {
		t.Fatalf("past due: expected overdue, got %q", got)
	}

	done := newTodo(due, true)
	if got := done.DueStatusAt(now.Add(26 * time.Hour)); got != DueNormal {
		t.Fatalf("completed: expected normal, got %q", got)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	now := fixedNow()
	todo, err := New(Draft{
		Title:       "Round trip",
		Description: "every field survives",
		Category:    "learning",
		Priority:    "low",
		DueDate:     "2026-06-01T08:00:00Z",
		Completed:   true,
	}, now)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	back, err := FromRecord(todo.ToRecord(), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	if back.ID != todo.ID || back.Title != todo.Title || back.Description != todo.Description {
		t.Fatalf("round trip lost fields: %#v vs %#v", back, todo)
	}
	if back.Category != todo.Category || back.Priority != todo.Priority || back.Completed != todo.Completed {
		t.Fatalf("round trip lost classification: %#v", back)
	}
	if !back.CreatedAt.Equal(todo.CreatedAt) || !back.UpdatedAt.Equal(todo.UpdatedAt) {
		t.Fatalf("round trip lost timestamps: %#v", back)
	}
	if back.DueDate == nil || !back.DueDate.Equal(*todo.DueDate) {
		t.Fatalf("round trip lost due date: %v", back.DueDate)
	}
}

func TestFromRecordRejectsBlankTitle(t *testing.T) {
	_, err := FromRecord(Record{ID: "x", Title: "  "}, fixedNow())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}
