package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"taskboard/internal/core/domain"
	"taskboard/internal/core/model/response"
	"taskboard/internal/core/port"
)

type StateHandlerSuite struct {
	handlerSuite
}

func TestStateHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(StateHandlerSuite))
}

func (s *StateHandlerSuite) TestGetState_Empty() {
	rr := s.do(http.MethodGet, "/state", nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(MatchJSON(`{"defaultProjectId": null, "projects": []}`))
}

func (s *StateHandlerSuite) TestGetState_Shape() {
	id := s.createProject("Work")
	todoID := s.createTodo(id, map[string]any{"title": "Report", "dueDate": "2024-06-20", "priority": "Low"})

	rr := s.do(http.MethodGet, "/state", nil)

	Expect(rr.Body.String()).To(MatchJSON(`{
		"defaultProjectId": "` + id + `",
		"projects": [{
			"id": "` + id + `",
			"name": "Work",
			"todos": [{
				"id": "` + todoID + `",
				"title": "Report",
				"description": "",
				"dueDate": "2024-06-20",
				"priority": "Low",
				"completed": false,
				"expanded": false
			}]
		}]
	}`))
}

func (s *StateHandlerSuite) TestLoadState_RestoresStoredDocument() {
	id := s.createProject("Work")
	s.createProject("Home")

	stored := s.Storage.Load(context.Background())

	// Drift the in-memory graph without saving.
	s.Require().NoError(s.Session.View(func(m port.ProjectService) error {
		m.RenameProject(id, "Drifted")
		return nil
	}))

	rr := s.do(http.MethodPost, "/state/load", nil)
	Expect(rr.Code).To(Equal(http.StatusOK))

	var state domain.State
	Expect(json.Unmarshal(rr.Body.Bytes(), &state)).To(Succeed())
	Expect(state.Projects).To(Equal(stored.Projects))

	rr = s.do(http.MethodGet, "/projects/active", nil)
	var active response.ProjectDetailResponse
	s.decodeData(rr, &active)
	Expect(active.ID).To(Equal(id))
	Expect(active.Name).To(Equal("Work"))
}

func (s *StateHandlerSuite) TestSaveState() {
	s.createProject("Work")
	s.Storage.Clear(context.Background())
	Expect(s.Storage.Exists(context.Background())).To(BeFalse())

	rr := s.do(http.MethodPost, "/state/save", nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(MatchJSON(`{"message": "State saved"}`))
	Expect(s.Storage.Exists(context.Background())).To(BeTrue())
}

func (s *StateHandlerSuite) TestClearState_KeepsGraph() {
	s.createProject("Work")

	rr := s.do(http.MethodDelete, "/state", nil)
	Expect(rr.Code).To(Equal(http.StatusNoContent))
	Expect(s.Storage.Exists(context.Background())).To(BeFalse())

	rr = s.do(http.MethodGet, "/projects", nil)
	var list []response.ProjectResponse
	s.decodeData(rr, &list)
	Expect(list).To(HaveLen(1))
}

func (s *StateHandlerSuite) TestHealth() {
	rr := s.do(http.MethodGet, "/healthz", nil)
	Expect(rr.Body.String()).To(MatchJSON(`{"status": "ok", "backend": "memory", "stored": false}`))

	s.createProject("Work")

	rr = s.do(http.MethodGet, "/healthz", nil)
	Expect(rr.Body.String()).To(MatchJSON(`{"status": "ok", "backend": "memory", "stored": true}`))
}
