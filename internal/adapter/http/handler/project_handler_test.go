package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"taskboard/internal/core/domain"
	"taskboard/internal/core/model/response"
)

type ProjectHandlerSuite struct {
	handlerSuite
}

func TestProjectHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(ProjectHandlerSuite))
}

func (s *ProjectHandlerSuite) TestListProjects_Empty() {
	rr := s.do(http.MethodGet, "/projects", nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(MatchJSON(`{"data": []}`))
}

func (s *ProjectHandlerSuite) TestCreateProject_FirstBecomesActiveAndDefault() {
	rr := s.do(http.MethodPost, "/projects", map[string]string{"name": "Work"})

	Expect(rr.Code).To(Equal(http.StatusCreated))
	Expect(rr.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

	var data response.ProjectResponse
	s.decodeData(rr, &data)

	Expect(data.ID).NotTo(BeEmpty())
	Expect(data.Name).To(Equal("Work"))
	Expect(data.IsActive).To(BeTrue())
	Expect(data.IsDefault).To(BeTrue())
}

func (s *ProjectHandlerSuite) TestCreateProject_BlankNameIsCoerced() {
	rr := s.do(http.MethodPost, "/projects", map[string]string{"name": "   "})

	var data response.ProjectResponse
	s.decodeData(rr, &data)

	Expect(data.Name).To(Equal(domain.DefaultProjectName))
}

func (s *ProjectHandlerSuite) TestCreateProject_InvalidBody() {
	rr := s.do(http.MethodPost, "/projects", `{"name":`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(rr.Body.String()).To(ContainSubstring("BAD_REQUEST"))
}

type rejectingValidator struct{}

func (rejectingValidator) ValidateStruct(interface{}) error {
	return errors.New("rejected")
}

func (rejectingValidator) FormatValidationErrors(error) []response.ValidationError {
	return []response.ValidationError{{Field: "name", Message: "name is reserved"}}
}

func (s *ProjectHandlerSuite) TestCreateProject_ValidatorRejects() {
	projects := NewProjectHandler(s.Session, nil)
	projects.validator = rejectingValidator{}
	s.Router = setupTestRouter(projects, NewTodoHandler(s.Session, nil), NewStateHandler(s.Session, s.Storage, nil), NewHealthHandler(s.Storage, "memory"))

	rr := s.do(http.MethodPost, "/projects", map[string]string{"name": "Work"})

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(rr.Body.String()).To(ContainSubstring("VALIDATION_ERROR"))
	Expect(rr.Body.String()).To(ContainSubstring("name is reserved"))
	Expect(s.Manager.Projects()).To(BeEmpty())
}

func (s *ProjectHandlerSuite) TestCreateProject_Autosaves() {
	s.createProject("Work")

	state := s.Storage.Load(context.Background())

	Expect(state).NotTo(BeNil())
	Expect(state.Projects).To(HaveLen(1))
	Expect(state.Projects[0].Name).To(Equal("Work"))
	Expect(*state.DefaultProjectID).To(Equal(state.Projects[0].ID))
}

func (s *ProjectHandlerSuite) TestGetProject() {
	id := s.createProject("Work")
	s.createTodo(id, map[string]any{"title": "Late", "dueDate": "2024-06-01"})
	s.createTodo(id, map[string]any{"title": "Later", "dueDate": "2024-07-01"})

	rr := s.do(http.MethodGet, "/projects/"+id, nil)
	Expect(rr.Code).To(Equal(http.StatusOK))

	var data response.ProjectDetailResponse
	s.decodeData(rr, &data)

	Expect(data.Name).To(Equal("Work"))
	Expect(data.Pending).To(Equal(2))
	Expect(data.Todos).To(HaveLen(2))
	Expect(data.Todos[0].Overdue).To(BeTrue())
	Expect(data.Todos[1].Overdue).To(BeFalse())
}

func (s *ProjectHandlerSuite) TestGetProject_NotFound() {
	rr := s.do(http.MethodGet, "/projects/missing", nil)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(rr.Body.String()).To(ContainSubstring("NOT_FOUND"))
}

func (s *ProjectHandlerSuite) TestRenameProject() {
	id := s.createProject("Work")

	rr := s.do(http.MethodPatch, "/projects/"+id, map[string]string{"name": "Office"})
	Expect(rr.Code).To(Equal(http.StatusOK))

	var data response.ProjectResponse
	s.decodeData(rr, &data)
	Expect(data.Name).To(Equal("Office"))

	rr = s.do(http.MethodPatch, "/projects/missing", map[string]string{"name": "Office"})
	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *ProjectHandlerSuite) TestDeleteProject_ReassignsRoles() {
	first := s.createProject("Work")
	second := s.createProject("Home")

	rr := s.do(http.MethodDelete, "/projects/"+first, nil)
	Expect(rr.Code).To(Equal(http.StatusNoContent))

	rr = s.do(http.MethodGet, "/projects/active", nil)
	var active response.ProjectDetailResponse
	s.decodeData(rr, &active)
	Expect(active.ID).To(Equal(second))

	rr = s.do(http.MethodGet, "/projects/default", nil)
	var def response.ProjectDetailResponse
	s.decodeData(rr, &def)
	Expect(def.ID).To(Equal(second))
}

func (s *ProjectHandlerSuite) TestDeleteProject_NotFound() {
	rr := s.do(http.MethodDelete, "/projects/missing", nil)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *ProjectHandlerSuite) TestDeleteAllProjects() {
	s.createProject("Work")
	s.createProject("Home")

	rr := s.do(http.MethodDelete, "/projects", nil)
	Expect(rr.Code).To(Equal(http.StatusNoContent))

	rr = s.do(http.MethodGet, "/projects/active", nil)
	Expect(rr.Body.String()).To(MatchJSON(`{"data": null}`))

	rr = s.do(http.MethodGet, "/projects/default", nil)
	Expect(rr.Body.String()).To(MatchJSON(`{"data": null}`))

	state := s.Storage.Load(context.Background())
	Expect(state.Projects).To(BeEmpty())
	Expect(state.DefaultProjectID).To(BeNil())
}

func (s *ProjectHandlerSuite) TestSetActiveProject() {
	s.createProject("Work")
	home := s.createProject("Home")

	rr := s.do(http.MethodPut, "/projects/active", map[string]string{"id": home})
	Expect(rr.Code).To(Equal(http.StatusOK))

	var data response.ProjectDetailResponse
	s.decodeData(rr, &data)
	Expect(data.ID).To(Equal(home))
	Expect(data.IsActive).To(BeTrue())
	Expect(data.IsDefault).To(BeFalse())
}

func (s *ProjectHandlerSuite) TestSetActiveProject_UnknownClearsSelection() {
	s.createProject("Work")

	rr := s.do(http.MethodPut, "/projects/active", map[string]string{"id": "missing"})

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(MatchJSON(`{"data": null}`))
}

func (s *ProjectHandlerSuite) TestSetActiveProject_RequiresID() {
	rr := s.do(http.MethodPut, "/projects/active", map[string]string{})

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(rr.Body.String()).To(ContainSubstring("VALIDATION_ERROR"))
}

func (s *ProjectHandlerSuite) TestSetDefaultProject_Toggles() {
	work := s.createProject("Work")
	home := s.createProject("Home")

	rr := s.do(http.MethodPut, "/projects/default", map[string]string{"id": home})
	var data response.ProjectDetailResponse
	s.decodeData(rr, &data)
	Expect(data.ID).To(Equal(home))
	Expect(data.IsDefault).To(BeTrue())

	rr = s.do(http.MethodPut, "/projects/default", map[string]string{"id": home})
	Expect(rr.Body.String()).To(MatchJSON(`{"data": null}`))

	rr = s.do(http.MethodGet, "/projects", nil)
	var list []response.ProjectResponse
	s.decodeData(rr, &list)
	Expect(list).To(HaveLen(2))
	Expect(list[0].ID).To(Equal(work))
	Expect(list[0].IsDefault).To(BeFalse())
	Expect(list[1].IsDefault).To(BeFalse())
}
