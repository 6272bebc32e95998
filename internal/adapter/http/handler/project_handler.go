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

type ProjectHandler struct {
	base
}

func NewProjectHandler(session *service.Session, logger *otelzap.Logger) *ProjectHandler {
	return &ProjectHandler{base: newBase(session, logger)}
}

func projectSummary(m port.ProjectService, p *domain.Project) response.ProjectResponse {
	return response.NewProjectResponse(p, m.ActiveProject() == p, m.IsDefaultProject(p.ID))
}

func (h *ProjectHandler) projectDetail(m port.ProjectService, p *domain.Project) *response.ProjectDetailResponse {
	if p == nil {
		return nil
	}

	return response.NewProjectDetailResponse(p, m.ActiveProject() == p, m.IsDefaultProject(p.ID), h.Today())
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var data []response.ProjectResponse

	_ = h.session.View(func(m port.ProjectService) error {
		data = make([]response.ProjectResponse, 0, len(m.Projects()))
		for _, p := range m.Projects() {
			data = append(data, projectSummary(m, p))
		}
		return nil
	})

	SendSuccess(c, http.StatusOK, data)
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.project.CreateProject", []attribute.KeyValue{
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})
	defer span.End()

	var params request.ProjectRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		SendBadRequestError(c, "request", "Invalid request body")
		return
	}

	if err := h.validator.ValidateStruct(params); err != nil {
		h.sendValidationError(c, err)
		return
	}

	var data response.ProjectResponse
	err := h.session.Do(ctx, func(m port.ProjectService) error {
		p := m.CreateProject(params.Name)
		data = projectSummary(m, p)
		return nil
	})
	if err != nil {
		AddSpanError(span, err)
		h.sendLookupError(c, err)
		return
	}

	span.SetAttributes(attribute.String("project.id", data.ID))
	h.logger.Ctx(ctx).Info("Project created", zap.String("project_id", data.ID))

	SendSuccess(c, http.StatusCreated, data)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	var data *response.ProjectDetailResponse

	err := h.session.View(func(m port.ProjectService) error {
		p, err := findProject(m, c.Param("id"))
		if err != nil {
			return err
		}
		data = h.projectDetail(m, p)
		return nil
	})
	if err != nil {
		h.sendLookupError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, data)
}

func (h *ProjectHandler) RenameProject(c *gin.Context) {
	var params request.ProjectRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		SendBadRequestError(c, "request", "Invalid request body")
		return
	}

	if err := h.validator.ValidateStruct(params); err != nil {
		h.sendValidationError(c, err)
		return
	}

	var data response.ProjectResponse
	err := h.session.Do(c.Request.Context(), func(m port.ProjectService) error {
		p := m.RenameProject(c.Param("id"), params.Name)
		if p == nil {
			return errProjectNotFound
		}
		data = projectSummary(m, p)
		return nil
	})
	if err != nil {
		h.sendLookupError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, data)
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	err := h.session.Do(c.Request.Context(), func(m port.ProjectService) error {
		if !m.DeleteProjectByID(c.Param("id")) {
			return errProjectNotFound
		}
		return nil
	})
	if err != nil {
		h.sendLookupError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) DeleteAllProjects(c *gin.Context) {
	_ = h.session.Do(c.Request.Context(), func(m port.ProjectService) error {
		m.DeleteAllProjects()
		return nil
	})

	c.Status(http.StatusNoContent)
}

// GetActiveProject answers with null data when no project is active.
func (h *ProjectHandler) GetActiveProject(c *gin.Context) {
	var data *response.ProjectDetailResponse

	_ = h.session.View(func(m port.ProjectService) error {
		data = h.projectDetail(m, m.ActiveProject())
		return nil
	})

	SendSuccess(c, http.StatusOK, data)
}

// SetActiveProject mirrors the manager: an unknown id clears the selection.
func (h *ProjectHandler) SetActiveProject(c *gin.Context) {
	var params request.SelectProjectRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		SendBadRequestError(c, "request", "Invalid request body")
		return
	}

	if err := h.validator.ValidateStruct(params); err != nil {
		h.sendValidationError(c, err)
		return
	}

	var data *response.ProjectDetailResponse
	_ = h.session.Do(c.Request.Context(), func(m port.ProjectService) error {
		data = h.projectDetail(m, m.SetActiveProject(params.ID))
		return nil
	})

	SendSuccess(c, http.StatusOK, data)
}

func (h *ProjectHandler) GetDefaultProject(c *gin.Context) {
	var data *response.ProjectDetailResponse

	_ = h.session.View(func(m port.ProjectService) error {
		data = h.projectDetail(m, m.DefaultProject())
		return nil
	})

	SendSuccess(c, http.StatusOK, data)
}

// SetDefaultProject toggles: sending the current default clears it.
func (h *ProjectHandler) SetDefaultProject(c *gin.Context) {
	var params request.SelectProjectRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		SendBadRequestError(c, "request", "Invalid request body")
		return
	}

	if err := h.validator.ValidateStruct(params); err != nil {
		h.sendValidationError(c, err)
		return
	}

	var data *response.ProjectDetailResponse
	_ = h.session.Do(c.Request.Context(), func(m port.ProjectService) error {
		data = h.projectDetail(m, m.SetDefaultProject(params.ID))
		return nil
	})

	SendSuccess(c, http.StatusOK, data)
}
