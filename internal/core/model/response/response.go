package response

import (
	"taskboard/internal/core/domain"
)

type TodoResponse struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"projectId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate"`
	Priority    string  `json:"priority"`
	Completed   bool    `json:"completed"`
	Expanded    bool    `json:"expanded"`
	Overdue     bool    `json:"overdue"`
}

type ProjectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"isActive"`
	IsDefault bool   `json:"isDefault"`
	Done      int    `json:"done"`
	Pending   int    `json:"pending"`
}

type ProjectDetailResponse struct {
	ProjectResponse
	Todos []TodoResponse `json:"todos"`
}

func NewTodoResponse(projectID string, t *domain.Todo, today domain.Date) TodoResponse {
	var due *string
	if t.DueDate != nil {
		s := t.DueDate.String()
		due = &s
	}

	return TodoResponse{
		ID:          t.ID,
		ProjectID:   projectID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     due,
		Priority:    t.Priority.String(),
		Completed:   t.Completed,
		Expanded:    t.Expanded,
		Overdue:     t.IsOverdue(today),
	}
}

func NewTodoListResponse(p *domain.Project, today domain.Date) []TodoResponse {
	data := make([]TodoResponse, 0, len(p.Todos()))
	for _, t := range p.Todos() {
		data = append(data, NewTodoResponse(p.ID, t, today))
	}

	return data
}

func NewProjectResponse(p *domain.Project, isActive, isDefault bool) ProjectResponse {
	done, pending := p.Stats()

	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		IsActive:  isActive,
		IsDefault: isDefault,
		Done:      done,
		Pending:   pending,
	}
}

func NewProjectDetailResponse(p *domain.Project, isActive, isDefault bool, today domain.Date) *ProjectDetailResponse {
	return &ProjectDetailResponse{
		ProjectResponse: NewProjectResponse(p, isActive, isDefault),
		Todos:           NewTodoListResponse(p, today),
	}
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Errors  []ValidationError `json:"errors"`
	Details any               `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}
