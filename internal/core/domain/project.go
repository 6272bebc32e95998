package domain

import "slices"

const DefaultProjectName = "Untitled Project"

type Project struct {
	ID    string
	Name  string
	todos []*Todo
	newID IDGenerator
}

func NewProject(name string, ids IDGenerator) *Project {
	ids = ids.orDefault()

	p := &Project{
		ID:    ids(),
		todos: make([]*Todo, 0),
		newID: ids,
	}
	p.SetName(name)

	return p
}

// RestoreProject rebuilds a project and its todos from a persisted record,
// keeping the persisted identifiers. Only the first todo with a given id is
// kept; the ids of the dropped ones are returned.
func RestoreProject(rec ProjectRecord, ids IDGenerator) (p *Project, duplicates []string) {
	p = &Project{
		ID:    rec.ID,
		todos: make([]*Todo, 0, len(rec.Todos)),
		newID: ids.orDefault(),
	}
	p.SetName(rec.Name)

	seen := make(map[string]bool, len(rec.Todos))
	for _, tr := range rec.Todos {
		if seen[tr.ID] {
			duplicates = append(duplicates, tr.ID)
			continue
		}
		seen[tr.ID] = true

		p.todos = append(p.todos, RestoreTodo(tr))
	}

	return p, duplicates
}

func (p *Project) SetName(name string) {
	p.Name = coerceText(name, DefaultProjectName)
}

func (p *Project) CreateTodo(title, description string, dueDate *Date, priority Priority) *Todo {
	t := newTodo(p.newID(), title, description, dueDate, priority)
	p.todos = append(p.todos, t)

	return t
}

// DeleteTodoByID reports whether a todo was removed.
func (p *Project) DeleteTodoByID(id string) bool {
	for i, t := range p.todos {
		if t.ID == id {
			p.todos = append(p.todos[:i], p.todos[i+1:]...)
			return true
		}
	}

	return false
}

func (p *Project) DeleteAllTodos() {
	p.todos = make([]*Todo, 0)
}

// Todos returns the live collection in insertion order.
func (p *Project) Todos() []*Todo {
	return p.todos
}

// TodosByPriority returns a copy of the todos, most pressing first. Todos of
// equal priority keep their insertion order.
func (p *Project) TodosByPriority() []*Todo {
	sorted := slices.Clone(p.todos)
	slices.SortStableFunc(sorted, func(a, b *Todo) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})

	return sorted
}

func (p *Project) TodoByID(id string) *Todo {
	for _, t := range p.todos {
		if t.ID == id {
			return t
		}
	}

	return nil
}

func (p *Project) Stats() (done, pending int) {
	for _, t := range p.todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}

	return done, pending
}

func (p *Project) Record() ProjectRecord {
	todos := make([]TodoRecord, 0, len(p.todos))
	for _, t := range p.todos {
		todos = append(todos, t.Record())
	}

	return ProjectRecord{
		ID:    p.ID,
		Name:  p.Name,
		Todos: todos,
	}
}
