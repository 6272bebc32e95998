package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	. "taskboard/internal/adapter/http/helper"
	"taskboard/internal/core/domain"
	"taskboard/internal/core/model/request"
	"taskboard/internal/core/model/response"
	"taskboard/internal/core/port"
	"taskboard/internal/core/service"
	. "taskboard/pkg/tracing"
)

type TodoHandler struct {
	base
}

func NewTodoHandler(session *service.Session, logger *otelzap.Logger) *TodoHandler {
	return &TodoHandler{base: newBase(session, logger)}
}

func (t *TodoHandler) ListTodos(c *gin.Context) {
	var data []response.TodoResponse

	err := t.session.View(func(m port.ProjectService) error {
		p, err := findProject(m, c.Param("id"))
		if err != nil {
			return err
		}
		data = response.NewTodoListResponse(p, t.Today())
		return nil
	})
	if err != nil {
		t.sendLookupError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, data)
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.CreateTodo", []attribute.KeyValue{
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
		attribute.String("project.id", c.Param("id")),
	})
	defer span.End()

	var params request.TodoRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		SendBadRequestError(c, "request", "Invalid request body")
		return
	}

	if err := t.validator.ValidateStruct(params); err != nil {
		t.sendValidationError(c, err)
		return
	}

	dueDate, err := params.DueDateValue()
	if err != nil {
		SendBadRequestError(c, "dueDate", err.Error())
		return
	}

	priority, err := params.PriorityValue()
	if err != nil {
		SendBadRequestError(c, "priority", err.Error())
		return
	}

	var data response.TodoResponse
	err = t.session.Do(ctx, func(m port.ProjectService) error {
		p, err := findProject(m, c.Param("id"))
		if err != nil {
			return err
		}

		todo := p.CreateTodo(params.Title, params.Description, dueDate, priority)
		m.Touch(domain.Event{Kind: domain.EventTodoCreated, ProjectID: p.ID, TodoID: todo.ID})
		data = response.NewTodoResponse(p.ID, todo, t.Today())
		return nil
	})
	if err != nil {
		AddSpanError(span, err)
		t.sendLookupError(c, err)
		return
	}

	span.SetAttributes(attribute.String("todo.id", data.ID))
	t.logger.Ctx(ctx).Info("Todo created",
		zap.String("project_id", data.ProjectID),
		zap.String("todo_id", data.ID),
	)

	SendSuccess(c, http.StatusCreated, data)
}

func (t *TodoHandler) GetTodo(c *gin.Context) {
	var data response.TodoResponse

	err := t.session.View(func(m port.ProjectService) error {
		p, todo, err := findTodo(m, c.Param("id"), c.Param("todoId"))
		if err != nil {
			return err
		}
		data = response.NewTodoResponse(p.ID, todo, t.Today())
		return nil
	})
	if err != nil {
		t.sendLookupError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, data)
}

// UpdateTodo applies a partial update. Keys left out of the body are kept,
// and an explicit null dueDate clears the due date.
func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	var patch domain.TodoPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		SendBadRequestError(c, "request", err.Error())
		return
	}

	if patch.IsEmpty() {
		SendBadRequestError(c, "request", "Nothing to update")
		return
	}

	t.mutateTodo(c, domain.EventTodoUpdated, func(todo *domain.Todo) {
		todo.UpdateData(patch)
	})
}

func (t *TodoHandler) ToggleCompleted(c *gin.Context) {
	t.mutateTodo(c, domain.EventTodoUpdated, (*domain.Todo).ToggleCompleted)
}

func (t *TodoHandler) ToggleExpanded(c *gin.Context) {
	t.mutateTodo(c, domain.EventTodoUpdated, (*domain.Todo).ToggleExpanded)
}

func (t *TodoHandler) mutateTodo(c *gin.Context, kind domain.EventKind, apply func(*domain.Todo)) {
	var data response.TodoResponse

	err := t.session.Do(c.Request.Context(), func(m port.ProjectService) error {
		p, todo, err := findTodo(m, c.Param("id"), c.Param("todoId"))
		if err != nil {
			return err
		}

		apply(todo)
		m.Touch(domain.Event{Kind: kind, ProjectID: p.ID, TodoID: todo.ID})
		data = response.NewTodoResponse(p.ID, todo, t.Today())
		return nil
	})
	if err != nil {
		t.sendLookupError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, data)
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	err := t.session.Do(c.Request.Context(), func(m port.ProjectService) error {
		p, err := findProject(m, c.Param("id"))
		if err != nil {
			return err
		}

		todoID := c.Param("todoId")
		if !p.DeleteTodoByID(todoID) {
			return errTodoNotFound
		}

		m.Touch(domain.Event{Kind: domain.EventTodoDeleted, ProjectID: p.ID, TodoID: todoID})
		return nil
	})
	if err != nil {
		t.sendLookupError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (t *TodoHandler) DeleteAllTodos(c *gin.Context) {
	err := t.session.Do(c.Request.Context(), func(m port.ProjectService) error {
		p, err := findProject(m, c.Param("id"))
		if err != nil {
			return err
		}

		p.DeleteAllTodos()
		m.Touch(domain.Event{Kind: domain.EventTodoDeleted, ProjectID: p.ID})
		return nil
	})
	if err != nil {
		t.sendLookupError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
