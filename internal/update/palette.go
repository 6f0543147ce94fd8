package update

import (
	"context"
	"fmt"
	"os"

	"github.com/tidylist/tidylist/internal/commands"
	"github.com/tidylist/tidylist/internal/manager"
	"github.com/tidylist/tidylist/internal/model"
	"github.com/tidylist/tidylist/internal/storage"
)

// handlers maps palette commands onto the manager's public surface.
func (m Model) handlers() commands.Handlers {
	ctx := context.Background()
	return commands.Handlers{
		Add: func(args commands.AddArgs) (commands.Result, error) {
			todo, err := m.Manager.Create(ctx, model.Draft{
				Title:    args.Title,
				Category: args.Category,
				Priority: args.Priority,
				DueDate:  args.Due,
			})
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added %q", todo.Title)}, nil
		},

		Filter: func(args commands.FilterArgs) (commands.Result, error) {
			patch := manager.FilterPatch{Search: &args.Search}
			if args.Category != "" {
				patch.Category = &args.Category
			}
			if args.Priority != "" {
				patch.Priority = &args.Priority
			}
			if args.Status != "" {
				patch.Status = &args.Status
			}
			m.Manager.SetFilter(patch)
			return commands.Result{Message: fmt.Sprintf("%d todos match", len(m.Manager.Filtered()))}, nil
		},

		Sort: func(args commands.SortArgs) (commands.Result, error) {
			patch := manager.FilterPatch{SortBy: &args.Key}
			if args.Order != "" {
				patch.SortOrder = &args.Order
			}
			m.Manager.SetFilter(patch)
			f := m.Manager.CurrentFilter()
			return commands.Result{Message: fmt.Sprintf("sorted by %s %s", f.SortBy, f.SortOrder)}, nil
		},

		Clear: func() (commands.Result, error) {
			m.Manager.ClearFilter()
			return commands.Result{Message: "filter cleared"}, nil
		},

		Export: func(args commands.ExportArgs) (commands.Result, error) {
			doc, err := m.Manager.ExportData()
			if err != nil {
				return commands.Result{}, err
			}
			path := args.Path
			if path == "" {
				path = "tidylist-export.json"
			}
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				return commands.Result{}, fmt.Errorf("write export: %w", err)
			}
			return commands.Result{Message: "exported to " + path}, nil
		},

		Import: func(args commands.ImportArgs) (commands.Result, error) {
			raw, err := os.ReadFile(args.Path)
			if err != nil {
				return commands.Result{}, fmt.Errorf("read import: %w", err)
			}
			if err := m.Manager.ImportData(ctx, string(raw), args.Merge); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("imported, %d todos total", len(m.Manager.All()))}, nil
		},

		Cleanup: func() (commands.Result, error) {
			removed, err := storage.Cleanup(ctx, m.Store)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("removed %d legacy slots", removed)}, nil
		},
	}
}
