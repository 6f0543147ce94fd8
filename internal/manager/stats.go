package manager

import (
	"math"

	"github.com/tidylist/tidylist/internal/model"
)

// DueBreakdown counts pending todos by their due classification.
type DueBreakdown struct {
	Overdue   int
	DueSoon   int
	Normal    int
	NoDueDate int
}

type Statistics struct {
	Total         int
	Completed     int
	Pending       int
	CompletionPct int
	ByCategory    map[model.Category]int
	ByPriority    map[model.Priority]int
	PendingDue    DueBreakdown
}

// Statistics aggregates the whole collection. Read-only; due classification
// is computed against the manager's clock.
func (m *Manager) Statistics() Statistics {
	now := m.now()
	stats := Statistics{
		ByCategory: make(map[model.Category]int),
		ByPriority: make(map[model.Priority]int),
	}
	for _, todo := range m.todos {
		stats.Total++
		if todo.Completed {
			stats.Completed++
		} else {
			stats.Pending++
			switch {
			case todo.DueDate == nil:
				stats.PendingDue.NoDueDate++
			case todo.DueStatusAt(now) == model.DueOverdue:
				stats.PendingDue.Overdue++
			case todo.DueStatusAt(now) == model.DueSoon:
				stats.PendingDue.DueSoon++
			default:
				stats.PendingDue.Normal++
			}
		}
		stats.ByCategory[todo.Category]++
		stats.ByPriority[todo.Priority]++
	}
	if stats.Total > 0 {
		stats.CompletionPct = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	return stats
}
