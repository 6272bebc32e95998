package domain

type EventKind string

const (
	EventProjectCreated       EventKind = "project.created"
	EventProjectRenamed       EventKind = "project.renamed"
	EventProjectDeleted       EventKind = "project.deleted"
	EventProjectsCleared      EventKind = "project.cleared"
	EventActiveProjectChanged EventKind = "project.active_changed"
	EventDefaultChanged       EventKind = "project.default_changed"
	EventTodoCreated          EventKind = "todo.created"
	EventTodoUpdated          EventKind = "todo.updated"
	EventTodoDeleted          EventKind = "todo.deleted"
	EventStateSaved           EventKind = "state.saved"
	EventStateLoaded          EventKind = "state.loaded"
)

// Event describes a change to the project graph. ProjectID and TodoID are empty
// when they do not apply.
type Event struct {
	Kind      EventKind
	ProjectID string
	TodoID    string
}

func (e Event) Entity() string {
	switch {
	case e.TodoID != "":
		return "todo"
	case e.ProjectID != "":
		return "project"
	default:
		return "state"
	}
}

func (e Event) EntityID() string {
	if e.TodoID != "" {
		return e.TodoID
	}

	return e.ProjectID
}

// Mutates reports whether the event reflects a change that should be persisted.
func (e Event) Mutates() bool {
	return e.Kind != EventStateSaved && e.Kind != EventStateLoaded
}
