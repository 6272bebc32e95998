package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const DefaultTodoTitle = "Untitled Todo"

type Todo struct {
	ID          string
	Title       string
	Description string
	DueDate     *Date
	Priority    Priority
	Completed   bool
	Expanded    bool
}

func newTodo(id, title, description string, dueDate *Date, priority Priority) *Todo {
	t := &Todo{
		ID:          id,
		Description: description,
	}

	t.SetTitle(title)
	t.SetDueDate(dueDate)
	t.SetPriority(priority)

	return t
}

// RestoreTodo rebuilds a todo from its persisted record. Non-blank values are
// kept verbatim; a blank title or unknown priority is coerced like any write.
func RestoreTodo(rec TodoRecord) *Todo {
	t := newTodo(rec.ID, rec.Title, rec.Description, rec.DueDate, rec.Priority)
	t.Completed = rec.Completed
	t.Expanded = rec.Expanded

	return t
}

func (t *Todo) SetTitle(title string) {
	t.Title = coerceText(title, DefaultTodoTitle)
}

func (t *Todo) SetDescription(description string) {
	t.Description = description
}

func (t *Todo) SetDueDate(d *Date) {
	if d == nil {
		t.DueDate = nil
		return
	}

	day := DateOf(d.Time)
	t.DueDate = &day
}

func (t *Todo) SetPriority(p Priority) {
	t.Priority = p.OrDefault()
}

func (t *Todo) ToggleCompleted() {
	t.Completed = !t.Completed
}

func (t *Todo) ToggleExpanded() {
	t.Expanded = !t.Expanded
}

// UpdateData applies the fields present in patch and leaves the rest untouched.
func (t *Todo) UpdateData(patch TodoPatch) {
	if patch.Title != nil {
		t.SetTitle(*patch.Title)
	}

	if patch.Description != nil {
		t.SetDescription(*patch.Description)
	}

	if patch.DueDate != nil {
		t.SetDueDate(patch.DueDate.Ptr())
	}

	if patch.Priority != nil {
		t.SetPriority(*patch.Priority)
	}
}

// IsOverdue reports whether an open todo was due before today.
func (t *Todo) IsOverdue(today Date) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}

	return t.DueDate.Before(today)
}

func (t *Todo) Record() TodoRecord {
	var due *Date
	if t.DueDate != nil {
		d := *t.DueDate
		due = &d
	}

	return TodoRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     due,
		Priority:    t.Priority,
		Completed:   t.Completed,
		Expanded:    t.Expanded,
	}
}

// TodoPatch is a partial update. A nil field means "not provided"; a non-nil
// DueDate with Valid=false clears the due date.
type TodoPatch struct {
	Title       *string
	Description *string
	DueDate     *NullDate
	Priority    *Priority
}

func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && p.Priority == nil
}

// UnmarshalJSON keeps the difference between a missing key and an explicit null.
func (p *TodoPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = TodoPatch{}

	if v, ok := raw["title"]; ok && !isJSONNull(v) {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("title: %w", err)
		}
		p.Title = &s
	}

	if v, ok := raw["description"]; ok {
		s := ""
		if !isJSONNull(v) {
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("description: %w", err)
			}
		}
		p.Description = &s
	}

	if v, ok := raw["dueDate"]; ok {
		var nd NullDate
		if err := json.Unmarshal(v, &nd); err != nil {
			return fmt.Errorf("dueDate: %w", err)
		}
		p.DueDate = &nd
	}

	if v, ok := raw["priority"]; ok && !isJSONNull(v) {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("priority: %w", err)
		}

		prio, err := ParsePriority(s)
		if err != nil {
			return err
		}
		p.Priority = &prio
	}

	return nil
}

func isJSONNull(v json.RawMessage) bool {
	return strings.TrimSpace(string(v)) == "null"
}

func coerceText(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}

	return s
}
