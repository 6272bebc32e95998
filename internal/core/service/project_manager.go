package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/core/domain"
	"taskboard/internal/core/port"
	tel "taskboard/internal/core/telemetry"
)

const serviceName = "project_manager"

var _ port.ProjectService = (*ProjectManager)(nil)

// ProjectManager owns every project and tracks the active and default ones.
// It is not safe for concurrent use; wrap it in a Session when intents can
// arrive from several goroutines.
type ProjectManager struct {
	projects       []*domain.Project
	active         *domain.Project
	defaultProject *domain.Project

	storage   port.Persistence
	newID     domain.IDGenerator
	telemetry port.Telemetry
	logger    *zap.Logger
	observers observerList

	// ctx is the context of the intent being run by a Session.
	ctx context.Context
}

type Option func(*ProjectManager)

func WithIDGenerator(g domain.IDGenerator) Option {
	return func(m *ProjectManager) {
		if g != nil {
			m.newID = g
		}
	}
}

func WithTelemetry(t port.Telemetry) Option {
	return func(m *ProjectManager) {
		if t != nil {
			m.telemetry = t
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *ProjectManager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewProjectManager returns an empty manager. storage may be nil, in which
// case save and load do nothing.
func NewProjectManager(storage port.Persistence, opts ...Option) *ProjectManager {
	m := &ProjectManager{
		projects:  make([]*domain.Project, 0),
		storage:   storage,
		newID:     domain.NewUUID,
		telemetry: tel.NewNoOpProbe(),
		logger:    zap.NewNop(),
		ctx:       context.Background(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// CreateProject appends a project. The first project created while no project
// is active becomes both active and default.
func (m *ProjectManager) CreateProject(name string) *domain.Project {
	p := domain.NewProject(name, m.newID)
	m.projects = append(m.projects, p)

	m.emit(domain.Event{Kind: domain.EventProjectCreated, ProjectID: p.ID})

	if m.active == nil {
		m.active = p
		m.defaultProject = p

		m.emit(domain.Event{Kind: domain.EventActiveProjectChanged, ProjectID: p.ID})
		m.emit(domain.Event{Kind: domain.EventDefaultChanged, ProjectID: p.ID})
	}

	return p
}

// DeleteProjectByID removes the project and hands its active/default roles to
// the first remaining project. It reports whether anything was removed.
func (m *ProjectManager) DeleteProjectByID(id string) bool {
	idx := m.indexOf(id)
	if idx < 0 {
		return false
	}

	removed := m.projects[idx]
	m.projects = append(m.projects[:idx], m.projects[idx+1:]...)

	m.emit(domain.Event{Kind: domain.EventProjectDeleted, ProjectID: removed.ID})

	if m.active == removed {
		m.active = m.first()
		m.emit(domain.Event{Kind: domain.EventActiveProjectChanged, ProjectID: projectID(m.active)})
	}

	if m.defaultProject == removed {
		m.defaultProject = m.first()
		m.emit(domain.Event{Kind: domain.EventDefaultChanged, ProjectID: projectID(m.defaultProject)})
	}

	return true
}

// DeleteAllProjects clears the collection together with both roles.
func (m *ProjectManager) DeleteAllProjects() {
	m.projects = make([]*domain.Project, 0)
	m.active = nil
	m.defaultProject = nil

	m.emit(domain.Event{Kind: domain.EventProjectsCleared})
}

func (m *ProjectManager) RenameProject(id, name string) *domain.Project {
	p := m.ProjectByID(id)
	if p == nil {
		return nil
	}

	p.SetName(name)
	m.emit(domain.Event{Kind: domain.EventProjectRenamed, ProjectID: p.ID})

	return p
}

// Projects returns the live ordered collection.
func (m *ProjectManager) Projects() []*domain.Project {
	return m.projects
}

func (m *ProjectManager) ProjectByID(id string) *domain.Project {
	if idx := m.indexOf(id); idx >= 0 {
		return m.projects[idx]
	}

	return nil
}

func (m *ProjectManager) ActiveProject() *domain.Project {
	return m.active
}

// SetActiveProject selects the project with id, or clears the selection when
// no such project exists.
func (m *ProjectManager) SetActiveProject(id string) *domain.Project {
	m.active = m.ProjectByID(id)
	m.emit(domain.Event{Kind: domain.EventActiveProjectChanged, ProjectID: projectID(m.active)})

	return m.active
}

func (m *ProjectManager) DefaultProject() *domain.Project {
	return m.defaultProject
}

// SetDefaultProject toggles: naming the current default clears it, any other
// id makes that project the default (or clears it when unknown).
func (m *ProjectManager) SetDefaultProject(id string) *domain.Project {
	if m.defaultProject != nil && m.defaultProject.ID == id {
		m.defaultProject = nil
	} else {
		m.defaultProject = m.ProjectByID(id)
	}

	m.emit(domain.Event{Kind: domain.EventDefaultChanged, ProjectID: projectID(m.defaultProject)})

	return m.defaultProject
}

func (m *ProjectManager) IsDefaultProject(id string) bool {
	if id == "" || m.defaultProject == nil {
		return false
	}

	return m.defaultProject.ID == id
}

// Touch announces a change made directly on a project or todo.
func (m *ProjectManager) Touch(event domain.Event) {
	m.emit(event)
}

// Subscribe registers fn for every change event. The returned func removes it.
func (m *ProjectManager) Subscribe(fn func(domain.Event)) (unsubscribe func()) {
	return m.observers.add(fn)
}

// Snapshot serializes the whole graph into the persisted shape.
func (m *ProjectManager) Snapshot() *domain.State {
	state := domain.NewState()

	if m.defaultProject != nil {
		id := m.defaultProject.ID
		state.DefaultProjectID = &id
	}

	for _, p := range m.projects {
		state.Projects = append(state.Projects, p.Record())
	}

	return state
}

// SaveToStorage overwrites the persisted state with the current graph.
func (m *ProjectManager) SaveToStorage(ctx context.Context) {
	if m.storage == nil {
		return
	}

	ctx, span := m.telemetry.StartServiceSpan(ctx, serviceName, "SaveToStorage", nil)
	defer span.End()
	startTime := time.Now()

	state := m.Snapshot()
	m.storage.Save(ctx, state)

	span.SetAttributes(map[string]interface{}{
		"state.projects": state.ProjectCount(),
		"state.todos":    state.TodoCount(),
	})
	m.telemetry.RecordServiceOperation(ctx, serviceName, "SaveToStorage", time.Since(startTime), nil)

	m.emitCtx(ctx, domain.Event{Kind: domain.EventStateSaved})
}

// LoadFromStorage rebuilds the graph from the persisted state. When nothing is
// stored the manager is left as it is. After a load the active project is
// always the default project.
func (m *ProjectManager) LoadFromStorage(ctx context.Context) {
	if m.storage == nil {
		return
	}

	ctx, span := m.telemetry.StartServiceSpan(ctx, serviceName, "LoadFromStorage", nil)
	defer span.End()
	startTime := time.Now()

	state := m.storage.Load(ctx)
	if state == nil {
		span.SetAttributes(map[string]interface{}{"state.found": false})
		m.telemetry.RecordServiceOperation(ctx, serviceName, "LoadFromStorage", time.Since(startTime), nil)
		return
	}

	m.restore(state)

	span.SetAttributes(map[string]interface{}{
		"state.found":    true,
		"state.projects": len(m.projects),
	})
	m.telemetry.RecordServiceOperation(ctx, serviceName, "LoadFromStorage", time.Since(startTime), nil)

	m.emitCtx(ctx, domain.Event{Kind: domain.EventStateLoaded, ProjectID: projectID(m.defaultProject)})
}

func (m *ProjectManager) restore(state *domain.State) {
	projects := make([]*domain.Project, 0, len(state.Projects))
	seen := make(map[string]bool, len(state.Projects))

	for _, rec := range state.Projects {
		if seen[rec.ID] {
			m.logger.Warn("Skipping duplicate project in stored state", zap.String("project_id", rec.ID))
			continue
		}
		seen[rec.ID] = true

		project, duplicates := domain.RestoreProject(rec, m.newID)
		for _, todoID := range duplicates {
			m.logger.Warn("Skipping duplicate todo in stored state",
				zap.String("project_id", rec.ID),
				zap.String("todo_id", todoID))
		}

		projects = append(projects, project)
	}

	m.projects = projects
	m.defaultProject = nil

	if state.DefaultProjectID != nil {
		m.defaultProject = m.ProjectByID(*state.DefaultProjectID)
	}

	if m.defaultProject == nil {
		m.defaultProject = m.first()
	}

	m.active = m.defaultProject
}

// bind makes ctx the parent of events raised until the returned func runs.
func (m *ProjectManager) bind(ctx context.Context) (restore func()) {
	previous := m.ctx
	if ctx != nil {
		m.ctx = ctx
	}

	return func() { m.ctx = previous }
}

func (m *ProjectManager) emit(event domain.Event) {
	m.emitCtx(m.ctx, event)
}

func (m *ProjectManager) emitCtx(ctx context.Context, event domain.Event) {
	m.telemetry.RecordBusinessEvent(ctx, string(event.Kind), event.Entity(), event.EntityID(), nil)
	m.observers.notify(event)
}

func (m *ProjectManager) indexOf(id string) int {
	for i, p := range m.projects {
		if p.ID == id {
			return i
		}
	}

	return -1
}

func (m *ProjectManager) first() *domain.Project {
	if len(m.projects) == 0 {
		return nil
	}

	return m.projects[0]
}

func projectID(p *domain.Project) string {
	if p == nil {
		return ""
	}

	return p.ID
}
