package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	. "taskboard/internal/adapter/http/helper"
	"taskboard/internal/adapter/http/validation"
	"taskboard/internal/core/domain"
	"taskboard/internal/core/port"
	"taskboard/internal/core/service"
)

var (
	errProjectNotFound = errors.New("project not found")
	errTodoNotFound    = errors.New("todo not found")
)

// base holds what every handler needs: the session that serializes access to
// the project graph, the request validator, a logger and the clock used for
// overdue flags.
type base struct {
	session   *service.Session
	validator port.Validator
	logger    *otelzap.Logger
	Today     func() domain.Date
}

func newBase(session *service.Session, logger *otelzap.Logger) base {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	return base{
		session:   session,
		validator: validation.New(),
		logger:    logger,
		Today:     domain.Today,
	}
}

func (b base) sendValidationError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", b.validator.FormatValidationErrors(err))
}

// sendLookupError maps lookup misses to 404 and anything else to 500.
func (b base) sendLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errProjectNotFound):
		SendNotFoundError(c, "Project not found")
	case errors.Is(err, errTodoNotFound):
		SendNotFoundError(c, "Todo not found")
	default:
		b.logger.Ctx(c.Request.Context()).Error("Request failed", zap.Error(err))
		SendInternalError(c, "Unexpected error")
	}
}

func findProject(m port.ProjectService, id string) (*domain.Project, error) {
	p := m.ProjectByID(id)
	if p == nil {
		return nil, errProjectNotFound
	}

	return p, nil
}

func findTodo(m port.ProjectService, projectID, todoID string) (*domain.Project, *domain.Todo, error) {
	p, err := findProject(m, projectID)
	if err != nil {
		return nil, nil, err
	}

	t := p.TodoByID(todoID)
	if t == nil {
		return nil, nil, errTodoNotFound
	}

	return p, t, nil
}
