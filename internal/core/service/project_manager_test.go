package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"taskboard/internal/core/domain"
	"taskboard/internal/core/service"
)

// blobStore keeps the state as encoded JSON so loads never share memory with
// the manager that saved it.
type blobStore struct {
	blob  []byte
	saves int
}

func (s *blobStore) Save(_ context.Context, state *domain.State) {
	s.blob, _ = json.Marshal(state)
	s.saves++
}

func (s *blobStore) Load(_ context.Context) *domain.State {
	if s.blob == nil {
		return nil
	}

	var state domain.State
	if err := json.Unmarshal(s.blob, &state); err != nil {
		return nil
	}

	return &state
}

func (s *blobStore) Clear(_ context.Context) { s.blob = nil }

func (s *blobStore) Exists(_ context.Context) bool { return s.blob != nil }

func sequentialIDs() domain.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type ProjectManagerTestSuite struct {
	suite.Suite
	store   *blobStore
	manager *service.ProjectManager
}

func (s *ProjectManagerTestSuite) SetupTest() {
	s.store = &blobStore{}
	s.manager = service.NewProjectManager(s.store, service.WithIDGenerator(sequentialIDs()))
}

func TestProjectManagerTestSuite(t *testing.T) {
	RegisterTestingT(t)

	suite.Run(t, new(ProjectManagerTestSuite))
}

func (s *ProjectManagerTestSuite) TestCreateProject_Names() {
	Expect(s.manager.CreateProject("Work").Name).To(Equal("Work"))
	Expect(s.manager.CreateProject("  ").Name).To(Equal(domain.DefaultProjectName))
	Expect(s.manager.CreateProject("").Name).To(Equal(domain.DefaultProjectName))
	Expect(s.manager.Projects()).To(HaveLen(3))
}

func (s *ProjectManagerTestSuite) TestCreateProject_FirstBecomesActiveAndDefault() {
	first := s.manager.CreateProject("First")

	Expect(s.manager.ActiveProject()).To(BeIdenticalTo(first))
	Expect(s.manager.DefaultProject()).To(BeIdenticalTo(first))

	s.manager.CreateProject("Second")
	s.manager.CreateProject("Third")

	Expect(s.manager.ActiveProject()).To(BeIdenticalTo(first))
	Expect(s.manager.DefaultProject()).To(BeIdenticalTo(first))
}

func (s *ProjectManagerTestSuite) TestCreateProject_BootstrapsWhenActiveCleared() {
	s.manager.CreateProject("First")
	s.manager.SetActiveProject("missing")

	next := s.manager.CreateProject("Next")

	Expect(s.manager.ActiveProject()).To(BeIdenticalTo(next))
	Expect(s.manager.DefaultProject()).To(BeIdenticalTo(next))
}

func (s *ProjectManagerTestSuite) TestDeleteProjectByID() {
	a := s.manager.CreateProject("A")
	b := s.manager.CreateProject("B")

	Expect(s.manager.DeleteProjectByID(a.ID)).To(BeTrue())
	Expect(s.manager.ProjectByID(a.ID)).To(BeNil())

	Expect(s.manager.DefaultProject()).To(BeIdenticalTo(b))
	Expect(s.manager.ActiveProject()).To(BeIdenticalTo(b))

	Expect(s.manager.DeleteProjectByID(a.ID)).To(BeFalse())

	Expect(s.manager.DeleteProjectByID(b.ID)).To(BeTrue())
	Expect(s.manager.Projects()).To(BeEmpty())
	Expect(s.manager.DefaultProject()).To(BeNil())
	Expect(s.manager.ActiveProject()).To(BeNil())
}

func (s *ProjectManagerTestSuite) TestDeleteProjectByID_RolesReassignIndependently() {
	a := s.manager.CreateProject("A")
	b := s.manager.CreateProject("B")
	c := s.manager.CreateProject("C")

	s.manager.SetActiveProject(c.ID)

	s.manager.DeleteProjectByID(c.ID)

	Expect(s.manager.ActiveProject()).To(BeIdenticalTo(a))
	Expect(s.manager.DefaultProject()).To(BeIdenticalTo(a))

	s.manager.SetActiveProject(b.ID)
	s.manager.DeleteProjectByID(a.ID)

	Expect(s.manager.ActiveProject()).To(BeIdenticalTo(b))
	Expect(s.manager.DefaultProject()).To(BeIdenticalTo(b))
}

func (s *ProjectManagerTestSuite) TestDeleteProjectByID_KeepsUnrelatedRoles() {
	a := s.manager.CreateProject("A")
	b := s.manager.CreateProject("B")
	c := s.manager.CreateProject("C")

	s.manager.SetActiveProject(c.ID)
	s.manager.DeleteProjectByID(b.ID)

	Expect(s.manager.ActiveProject()).To(BeIdenticalTo(c))
	Expect(s.manager.DefaultProject()).To(BeIdenticalTo(a))
}

func (s *ProjectManagerTestSuite) TestDeleteAllProjects() {
	s.manager.CreateProject("A")
	s.manager.CreateProject("B")

	s.manager.DeleteAllProjects()

	Expect(s.manager.Projects()).To(BeEmpty())
	Expect(s.manager.ActiveProject()).To(BeNil())
	Expect(s.manager.DefaultProject()).To(BeNil())

	again := s.manager.CreateProject("Again")
	Expect(s.manager.DefaultProject()).To(BeIdenticalTo(again))
}

func (s *ProjectManagerTestSuite) TestSetActiveProject() {
	s.manager.CreateProject("A")
	b := s.manager.CreateProject("B")

	Expect(s.manager.SetActiveProject(b.ID)).To(BeIdenticalTo(b))
	Expect(s.manager.ActiveProject()).To(BeIdenticalTo(b))

	Expect(s.manager.SetActiveProject("missing")).To(BeNil())
	Expect(s.manager.ActiveProject()).To(BeNil())
}

func (s *ProjectManagerTestSuite) TestSetDefaultProject_Toggles() {
	a := s.manager.CreateProject("A")
	b := s.manager.CreateProject("B")

	Expect(s.manager.SetDefaultProject(a.ID)).To(BeNil())
	Expect(s.manager.DefaultProject()).To(BeNil())

	Expect(s.manager.SetDefaultProject(a.ID)).To(BeIdenticalTo(a))
	Expect(s.manager.DefaultProject()).To(BeIdenticalTo(a))

	Expect(s.manager.SetDefaultProject(b.ID)).To(BeIdenticalTo(b))
	Expect(s.manager.SetDefaultProject("missing")).To(BeNil())
}

func (s *ProjectManagerTestSuite) TestIsDefaultProject() {
	a := s.manager.CreateProject("A")
	b := s.manager.CreateProject("B")

	Expect(s.manager.IsDefaultProject(a.ID)).To(BeTrue())
	Expect(s.manager.IsDefaultProject(b.ID)).To(BeFalse())
	Expect(s.manager.IsDefaultProject("")).To(BeFalse())

	s.manager.SetDefaultProject(a.ID)
	Expect(s.manager.IsDefaultProject(a.ID)).To(BeFalse())
}

func (s *ProjectManagerTestSuite) TestRenameProject() {
	a := s.manager.CreateProject("A")

	Expect(s.manager.RenameProject(a.ID, "Renamed").Name).To(Equal("Renamed"))
	Expect(s.manager.RenameProject(a.ID, " ").Name).To(Equal(domain.DefaultProjectName))
	Expect(s.manager.RenameProject("missing", "x")).To(BeNil())
}

func (s *ProjectManagerTestSuite) TestSnapshot_Shape() {
	work := s.manager.CreateProject("Work")
	due := domain.MustParseDate("2025-11-01")
	work.CreateTodo("Finish report", "", &due, domain.PriorityImportant)
	s.manager.CreateProject("Home")

	data, err := json.Marshal(s.manager.Snapshot())
	require.NoError(s.T(), err)

	assert.JSONEq(s.T(), `{
		"defaultProjectId": "id-1",
		"projects": [
			{"id": "id-1", "name": "Work", "todos": [{
				"id": "id-2", "title": "Finish report", "description": "",
				"dueDate": "2025-11-01", "priority": "Important",
				"completed": false, "expanded": false
			}]},
			{"id": "id-3", "name": "Home", "todos": []}
		]
	}`, string(data))
}

func (s *ProjectManagerTestSuite) TestSnapshot_EmptyManager() {
	data, err := json.Marshal(s.manager.Snapshot())

	require.NoError(s.T(), err)
	assert.JSONEq(s.T(), `{"defaultProjectId": null, "projects": []}`, string(data))
}

func (s *ProjectManagerTestSuite) TestRoundTrip() {
	ctx := context.Background()

	work := s.manager.CreateProject("Work")
	home := s.manager.CreateProject("Home")

	due := domain.MustParseDate("2025-11-01")
	report := work.CreateTodo("Finish report", "quarterly", &due, domain.PriorityUrgent)
	report.ToggleCompleted()
	report.ToggleExpanded()
	home.CreateTodo("Groceries", "", nil, domain.PriorityLow)

	s.manager.SetDefaultProject(home.ID)
	s.manager.SetActiveProject(work.ID)
	s.manager.SaveToStorage(ctx)

	fresh := service.NewProjectManager(s.store)
	fresh.LoadFromStorage(ctx)

	Expect(fresh.Projects()).To(HaveLen(2))
	Expect(fresh.Snapshot()).To(Equal(s.manager.Snapshot()))

	Expect(fresh.DefaultProject().ID).To(Equal(home.ID))
	Expect(fresh.ActiveProject()).To(BeIdenticalTo(fresh.DefaultProject()))

	loaded := fresh.ProjectByID(work.ID).TodoByID(report.ID)
	Expect(loaded).NotTo(BeNil())
	Expect(loaded.Title).To(Equal("Finish report"))
	Expect(loaded.Description).To(Equal("quarterly"))
	Expect(loaded.DueDate.String()).To(Equal("2025-11-01"))
	Expect(loaded.Priority).To(Equal(domain.PriorityUrgent))
	Expect(loaded.Completed).To(BeTrue())
	Expect(loaded.Expanded).To(BeTrue())
}

func (s *ProjectManagerTestSuite) TestRoundTrip_Scenario() {
	ctx := context.Background()

	work := s.manager.CreateProject("Work")
	due := domain.MustParseDate("2025-11-01")
	todo := work.CreateTodo("Finish report", "", &due, domain.PriorityImportant)
	todo.ToggleCompleted()
	s.manager.SaveToStorage(ctx)

	fresh := service.NewProjectManager(s.store)
	fresh.LoadFromStorage(ctx)

	Expect(fresh.Projects()).To(HaveLen(1))
	project := fresh.Projects()[0]
	Expect(project.Name).To(Equal("Work"))
	Expect(project.Todos()).To(HaveLen(1))
	Expect(project.Todos()[0].Title).To(Equal("Finish report"))
	Expect(project.Todos()[0].Completed).To(BeTrue())
	Expect(project.Todos()[0].Priority).To(Equal(domain.PriorityImportant))
}

func (s *ProjectManagerTestSuite) TestLoad_DefaultFallsBackToFirst() {
	ctx := context.Background()

	a := s.manager.CreateProject("A")
	s.manager.CreateProject("B")
	s.manager.SetDefaultProject(a.ID)
	s.manager.SaveToStorage(ctx)

	fresh := service.NewProjectManager(s.store)
	fresh.LoadFromStorage(ctx)

	Expect(fresh.DefaultProject().ID).To(Equal(a.ID))
	Expect(fresh.ActiveProject()).To(BeIdenticalTo(fresh.DefaultProject()))
}

func (s *ProjectManagerTestSuite) TestLoad_UnknownDefaultFallsBackToFirst() {
	missing := "gone"
	s.store.Save(context.Background(), &domain.State{
		DefaultProjectID: &missing,
		Projects: []domain.ProjectRecord{
			{ID: "p1", Name: "One"},
			{ID: "p2", Name: "Two"},
		},
	})

	s.manager.LoadFromStorage(context.Background())

	Expect(s.manager.DefaultProject().ID).To(Equal("p1"))
	Expect(s.manager.ActiveProject().ID).To(Equal("p1"))
}

func (s *ProjectManagerTestSuite) TestLoad_EmptyBlob() {
	s.manager.CreateProject("Existing")
	s.store.Save(context.Background(), domain.NewState())

	s.manager.LoadFromStorage(context.Background())

	Expect(s.manager.Projects()).To(BeEmpty())
	Expect(s.manager.DefaultProject()).To(BeNil())
	Expect(s.manager.ActiveProject()).To(BeNil())
}

func (s *ProjectManagerTestSuite) TestLoad_NothingStored() {
	existing := s.manager.CreateProject("Existing")

	s.manager.LoadFromStorage(context.Background())

	Expect(s.manager.Projects()).To(Equal([]*domain.Project{existing}))
	Expect(s.manager.ActiveProject()).To(BeIdenticalTo(existing))
}

func (s *ProjectManagerTestSuite) TestLoad_CoercesAndSkipsDuplicates() {
	s.store.Save(context.Background(), &domain.State{
		Projects: []domain.ProjectRecord{
			{ID: "p1", Name: " ", Todos: []domain.TodoRecord{{ID: "t1", Title: "", Priority: "bogus"}}},
			{ID: "p1", Name: "Duplicate"},
		},
	})

	s.manager.LoadFromStorage(context.Background())

	Expect(s.manager.Projects()).To(HaveLen(1))
	project := s.manager.Projects()[0]
	Expect(project.Name).To(Equal(domain.DefaultProjectName))
	Expect(project.TodoByID("t1").Title).To(Equal(domain.DefaultTodoTitle))
	Expect(project.TodoByID("t1").Priority).To(Equal(domain.DefaultPriority))
}

func (s *ProjectManagerTestSuite) TestLoad_SkipsDuplicateTodos() {
	s.store.Save(context.Background(), &domain.State{
		Projects: []domain.ProjectRecord{
			{ID: "p1", Name: "Work", Todos: []domain.TodoRecord{
				{ID: "t1", Title: "First", Priority: domain.PriorityLow},
				{ID: "t1", Title: "Copy", Priority: domain.PriorityLow},
			}},
		},
	})

	s.manager.LoadFromStorage(context.Background())

	project := s.manager.ProjectByID("p1")
	Expect(project.Todos()).To(HaveLen(1))
	Expect(project.DeleteTodoByID("t1")).To(BeTrue())
	Expect(project.TodoByID("t1")).To(BeNil())
}

func (s *ProjectManagerTestSuite) TestWithoutStorage() {
	m := service.NewProjectManager(nil)
	m.CreateProject("A")

	m.SaveToStorage(context.Background())
	m.LoadFromStorage(context.Background())

	Expect(m.Projects()).To(HaveLen(1))
}

func (s *ProjectManagerTestSuite) TestSubscribe() {
	var kinds []domain.EventKind
	unsubscribe := s.manager.Subscribe(func(e domain.Event) {
		kinds = append(kinds, e.Kind)
	})

	a := s.manager.CreateProject("A")
	s.manager.Touch(domain.Event{Kind: domain.EventTodoCreated, ProjectID: a.ID, TodoID: "t"})
	s.manager.SaveToStorage(context.Background())

	unsubscribe()
	s.manager.DeleteAllProjects()

	Expect(kinds).To(Equal([]domain.EventKind{
		domain.EventProjectCreated,
		domain.EventActiveProjectChanged,
		domain.EventDefaultChanged,
		domain.EventTodoCreated,
		domain.EventStateSaved,
	}))
}

func (s *ProjectManagerTestSuite) TestSubscribe_UnsubscribeDuringNotify() {
	calls := 0
	var unsubscribe func()
	unsubscribe = s.manager.Subscribe(func(domain.Event) {
		calls++
		unsubscribe()
	})

	s.manager.CreateProject("A")

	Expect(calls).To(Equal(1))
}
