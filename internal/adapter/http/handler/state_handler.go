package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	. "taskboard/internal/adapter/http/helper"
	"taskboard/internal/core/domain"
	"taskboard/internal/core/port"
	"taskboard/internal/core/service"
)

// StateHandler exposes the persisted document and explicit save/load.
type StateHandler struct {
	base
	storage port.Persistence
}

func NewStateHandler(session *service.Session, storage port.Persistence, logger *otelzap.Logger) *StateHandler {
	return &StateHandler{
		base:    newBase(session, logger),
		storage: storage,
	}
}

// GetState returns the in-memory graph in its persisted shape.
func (h *StateHandler) GetState(c *gin.Context) {
	var state *domain.State

	_ = h.session.View(func(m port.ProjectService) error {
		state = m.Snapshot()
		return nil
	})

	c.JSON(http.StatusOK, state)
}

func (h *StateHandler) SaveState(c *gin.Context) {
	h.session.Save(c.Request.Context())

	SendSuccess(c, http.StatusOK, nil, "State saved")
}

func (h *StateHandler) LoadState(c *gin.Context) {
	h.session.Load(c.Request.Context())

	var state *domain.State
	_ = h.session.View(func(m port.ProjectService) error {
		state = m.Snapshot()
		return nil
	})

	c.JSON(http.StatusOK, state)
}

// ClearState removes the stored document. The in-memory graph is kept.
func (h *StateHandler) ClearState(c *gin.Context) {
	if h.storage != nil {
		h.storage.Clear(c.Request.Context())
	}

	c.Status(http.StatusNoContent)
}
