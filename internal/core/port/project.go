package port

import (
	"context"

	"taskboard/internal/core/domain"
)

// ProjectService is the surface views use to read and change the project graph.
type ProjectService interface {
	CreateProject(name string) *domain.Project
	DeleteProjectByID(id string) bool
	DeleteAllProjects()
	RenameProject(id, name string) *domain.Project

	Projects() []*domain.Project
	ProjectByID(id string) *domain.Project

	ActiveProject() *domain.Project
	SetActiveProject(id string) *domain.Project
	DefaultProject() *domain.Project
	SetDefaultProject(id string) *domain.Project
	IsDefaultProject(id string) bool

	Touch(event domain.Event)
	Subscribe(fn func(domain.Event)) (unsubscribe func())
	Snapshot() *domain.State

	SaveToStorage(ctx context.Context)
	LoadFromStorage(ctx context.Context)
}
