package factory

import (
	fab "github.com/Goldziher/fabricator"

	"taskboard/internal/core/domain"
)

// NewTodoRecord builds a persisted todo with random text. Priority and due date
// get valid defaults unless overridden.
func NewTodoRecord(customData ...map[string]any) domain.TodoRecord {
	data := map[string]any{
		"Priority": domain.DefaultPriority,
		"DueDate":  (*domain.Date)(nil),
	}

	for _, custom := range customData {
		for k, v := range custom {
			data[k] = v
		}
	}

	return fab.New(domain.TodoRecord{}).Build(data)
}

// NewProjectRecord builds a persisted project holding todos random todos.
func NewProjectRecord(todos int, customData ...map[string]any) domain.ProjectRecord {
	records := make([]domain.TodoRecord, 0, todos)
	for i := 0; i < todos; i++ {
		records = append(records, NewTodoRecord())
	}

	data := map[string]any{"Todos": records}
	for _, custom := range customData {
		for k, v := range custom {
			data[k] = v
		}
	}

	return fab.New(domain.ProjectRecord{}).Build(data)
}
