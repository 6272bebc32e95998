package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"taskboard/internal/adapter/database/memory"
	"taskboard/internal/adapter/storage"
	"taskboard/internal/core/domain"
	"taskboard/internal/core/port"
	"taskboard/internal/core/service"
	"taskboard/internal/core/telemetry"
)

var fixedToday = domain.MustParseDate("2024-06-15")

// handlerSuite wires every handler to an in-memory backend with autosave on.
type handlerSuite struct {
	suite.Suite
	Repo    port.StateRepository
	Storage *storage.LocalStorage
	Manager *service.ProjectManager
	Session *service.Session
	Router  *gin.Engine
}

func (s *handlerSuite) SetupTest() {
	probe := telemetry.NewNoOpProbe()

	s.Repo = memory.NewMemoryRepository(probe)
	s.Storage = storage.NewLocalStorage(s.Repo)
	s.Manager = service.NewProjectManager(s.Storage)
	s.Session = service.NewSession(s.Manager, true)

	projects := NewProjectHandler(s.Session, nil)
	todos := NewTodoHandler(s.Session, nil)
	state := NewStateHandler(s.Session, s.Storage, nil)
	health := NewHealthHandler(s.Storage, "memory")

	projects.Today = func() domain.Date { return fixedToday }
	todos.Today = func() domain.Date { return fixedToday }

	s.Router = setupTestRouter(projects, todos, state, health)
}

func setupTestRouter(projects *ProjectHandler, todos *TodoHandler, state *StateHandler, health *HealthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", health.Health)

	router.GET("/projects", projects.ListProjects)
	router.POST("/projects", projects.CreateProject)
	router.DELETE("/projects", projects.DeleteAllProjects)
	router.GET("/projects/active", projects.GetActiveProject)
	router.PUT("/projects/active", projects.SetActiveProject)
	router.GET("/projects/default", projects.GetDefaultProject)
	router.PUT("/projects/default", projects.SetDefaultProject)
	router.GET("/projects/:id", projects.GetProject)
	router.PATCH("/projects/:id", projects.RenameProject)
	router.DELETE("/projects/:id", projects.DeleteProject)

	router.GET("/projects/:id/todos", todos.ListTodos)
	router.POST("/projects/:id/todos", todos.CreateTodo)
	router.DELETE("/projects/:id/todos", todos.DeleteAllTodos)
	router.GET("/projects/:id/todos/:todoId", todos.GetTodo)
	router.PATCH("/projects/:id/todos/:todoId", todos.UpdateTodo)
	router.DELETE("/projects/:id/todos/:todoId", todos.DeleteTodo)
	router.POST("/projects/:id/todos/:todoId/toggle-completed", todos.ToggleCompleted)
	router.POST("/projects/:id/todos/:todoId/toggle-expanded", todos.ToggleExpanded)

	router.GET("/state", state.GetState)
	router.DELETE("/state", state.ClearState)
	router.POST("/state/save", state.SaveState)
	router.POST("/state/load", state.LoadState)

	return router
}

func (s *handlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	return rr
}

// decodeData unmarshals the "data" member of a success envelope into out.
func (s *handlerSuite) decodeData(rr *httptest.ResponseRecorder, out any) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &envelope))
	s.Require().NoError(json.Unmarshal(envelope.Data, out))
}

func (s *handlerSuite) createProject(name string) string {
	rr := s.do(http.MethodPost, "/projects", map[string]string{"name": name})
	s.Require().Equal(http.StatusCreated, rr.Code)

	var data struct {
		ID string `json:"id"`
	}
	s.decodeData(rr, &data)

	return data.ID
}

func (s *handlerSuite) createTodo(projectID string, body any) string {
	rr := s.do(http.MethodPost, "/projects/"+projectID+"/todos", body)
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

	var data struct {
		ID string `json:"id"`
	}
	s.decodeData(rr, &data)

	return data.ID
}
