package request

import "taskboard/internal/core/domain"

type ProjectRequest struct {
	Name string `json:"name" validate:"max=255"`
}

type SelectProjectRequest struct {
	ID string `json:"id" validate:"required"`
}

type TodoRequest struct {
	Title       string  `json:"title" validate:"max=255"`
	Description string  `json:"description" validate:"max=1000"`
	DueDate     *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=Urgent Important Low urgent important low"`
}

// DueDateValue parses DueDate; nil or empty means no due date.
func (r TodoRequest) DueDateValue() (*domain.Date, error) {
	if r.DueDate == nil || *r.DueDate == "" {
		return nil, nil
	}

	d, err := domain.ParseDate(*r.DueDate)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// PriorityValue parses Priority; empty means the default priority.
func (r TodoRequest) PriorityValue() (domain.Priority, error) {
	if r.Priority == "" {
		return domain.DefaultPriority, nil
	}

	return domain.ParsePriority(r.Priority)
}
