package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidylist/tidylist/internal/manager"
	"github.com/tidylist/tidylist/internal/model"
)

func RenderList(todos []model.Todo, cursor int, now time.Time) string {
	if len(todos) == 0 {
		return "nothing here — press a to add a todo"
	}

	var b strings.Builder
	for i, todo := range todos {
		marker := "  "
		if i == cursor {
			marker = cursorStyle.Render("> ")
		}

		check := "[ ]"
		if todo.Completed {
			check = "[x]"
		}

		line := fmt.Sprintf("%s %s", check, todo.Title)
		switch {
		case todo.Completed:
			line = doneStyle.Render(line)
		case todo.DueStatusAt(now) == model.DueOverdue:
			line = overdueStyle.Render(line + " (overdue)")
		case todo.DueStatusAt(now) == model.DueSoon:
			line = dueSoonStyle.Render(line + " (due soon)")
		}

		b.WriteString(marker + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderDetail(todo model.Todo, now time.Time) string {
	var b strings.Builder
	b.WriteString(todo.Title + "\n\n")

	if todo.Description != "" {
		b.WriteString(RenderMarkdown(todo.Description) + "\n\n")
	}
	if todo.Category != model.CategoryNone {
		b.WriteString(fmt.Sprintf("category  %s\n", todo.Category))
	}
	b.WriteString(fmt.Sprintf("priority  %s\n", todo.Priority))
	if todo.DueDate != nil {
		b.WriteString(fmt.Sprintf("due       %s (%s)\n", todo.DueDate.Format("2006-01-02 15:04"), todo.DueStatusAt(now)))
	}
	state := "pending"
	if todo.Completed {
		state = "completed"
	}
	b.WriteString(fmt.Sprintf("state     %s\n", state))
	b.WriteString(fmt.Sprintf("updated   %s", todo.UpdatedAt.Format("2006-01-02 15:04")))
	return b.String()
}

func RenderStats(stats manager.Statistics) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d total / %d done / %d pending (%d%%)\n\n",
		stats.Total, stats.Completed, stats.Pending, stats.CompletionPct))

	b.WriteString("pending by due date\n")
	b.WriteString(fmt.Sprintf("  overdue   %d\n", stats.PendingDue.Overdue))
	b.WriteString(fmt.Sprintf("  due soon  %d\n", stats.PendingDue.DueSoon))
	b.WriteString(fmt.Sprintf("  later     %d\n", stats.PendingDue.Normal))
	b.WriteString(fmt.Sprintf("  undated   %d\n\n", stats.PendingDue.NoDueDate))

	b.WriteString("by priority\n")
	for _, p := range []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow} {
		if n := stats.ByPriority[p]; n > 0 {
			b.WriteString(fmt.Sprintf("  %-8s %d\n", p, n))
		}
	}

	b.WriteString("by category\n")
	for _, c := range model.Categories() {
		if n := stats.ByCategory[c]; n > 0 {
			b.WriteString(fmt.Sprintf("  %-8s %d\n", c, n))
		}
	}
	if n := stats.ByCategory[model.CategoryNone]; n > 0 {
		b.WriteString(fmt.Sprintf("  %-8s %d\n", "(none)", n))
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderFilterLine(f manager.Filter) string {
	parts := []string{}
	if f.Search != "" {
		parts = append(parts, "search:"+f.Search)
	}
	if f.Category != "" {
		parts = append(parts, "cat:"+string(f.Category))
	}
	if f.Priority != "" {
		parts = append(parts, "pri:"+string(f.Priority))
	}
	if f.Status != manager.StatusAny {
		parts = append(parts, "status:"+string(f.Status))
	}
	parts = append(parts, fmt.Sprintf("sort:%s/%s", f.SortBy, f.SortOrder))
	return strings.Join(parts, "  ")
}

func RenderHelp() string {
	return strings.Join([]string{
		"j/k or arrows  move",
		"space          toggle done",
		"a              quick add (title cat: pri: due:)",
		"d              delete",
		"/              command palette (add filter sort clear export import cleanup)",
		"s              statistics pane",
		"?              toggle help",
		"q              quit",
	}, "\n")
}
