package domain

import "encoding/json"

// State is the persisted snapshot of every project and todo. The JSON shape is
// the storage contract and must not change without a migration.
type State struct {
	DefaultProjectID *string         `json:"defaultProjectId"`
	Projects         []ProjectRecord `json:"projects"`
}

type ProjectRecord struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Todos []TodoRecord `json:"todos"`
}

type TodoRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     *Date    `json:"dueDate"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
	Expanded    bool     `json:"expanded"`
}

func NewState() *State {
	return &State{Projects: make([]ProjectRecord, 0)}
}

// MarshalJSON never emits null for the collections.
func (s State) MarshalJSON() ([]byte, error) {
	type alias State

	out := alias(s)
	out.Projects = make([]ProjectRecord, len(s.Projects))
	copy(out.Projects, s.Projects)

	for i := range out.Projects {
		if out.Projects[i].Todos == nil {
			out.Projects[i].Todos = make([]TodoRecord, 0)
		}
	}

	return json.Marshal(out)
}

func (s *State) ProjectCount() int {
	if s == nil {
		return 0
	}

	return len(s.Projects)
}

func (s *State) TodoCount() int {
	if s == nil {
		return 0
	}

	n := 0
	for _, p := range s.Projects {
		n += len(p.Todos)
	}

	return n
}
