package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"taskboard/internal/core/domain"
	"taskboard/internal/core/port"
)

var errNoProject = errors.New(`no project selected; create one with "taskboard project add"`)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func mark(b bool) string {
	if b {
		return "*"
	}

	return ""
}

func dueDate(t *domain.Todo) string {
	if t.DueDate == nil {
		return "-"
	}

	return t.DueDate.String()
}

// resolveProject picks the project named by id, or the active project when id
// is empty.
func resolveProject(m port.ProjectService, id string) (*domain.Project, error) {
	if id == "" {
		if p := m.ActiveProject(); p != nil {
			return p, nil
		}
		return nil, errNoProject
	}

	if p := m.ProjectByID(id); p != nil {
		return p, nil
	}

	return nil, fmt.Errorf("project %q not found", id)
}
