package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/core/port"
)

type HealthHandler struct {
	storage port.Persistence
	backend string
}

func NewHealthHandler(storage port.Persistence, backend string) *HealthHandler {
	return &HealthHandler{storage: storage, backend: backend}
}

func (h *HealthHandler) Health(c *gin.Context) {
	stored := false
	if h.storage != nil {
		stored = h.storage.Exists(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": h.backend,
		"stored":  stored,
	})
}
