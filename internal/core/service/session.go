package service

import (
	"context"
	"sync"

	"taskboard/internal/core/port"
)

// Session runs intents against one ProjectManager one at a time, the way a UI
// event loop would. With autosave on, every successful Do is followed by a
// full save.
type Session struct {
	mu       sync.Mutex
	manager  *ProjectManager
	autosave bool
}

func NewSession(manager *ProjectManager, autosave bool) *Session {
	return &Session{
		manager:  manager,
		autosave: autosave,
	}
}

// Do runs a mutating intent. Events raised while fn runs are recorded under ctx.
func (s *Session) Do(ctx context.Context, fn func(m port.ProjectService) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer s.manager.bind(ctx)()

	if err := fn(s.manager); err != nil {
		return err
	}

	if s.autosave {
		s.manager.SaveToStorage(ctx)
	}

	return nil
}

// View runs a read-only intent. fn must not keep references to the graph
// after it returns.
func (s *Session) View(fn func(m port.ProjectService) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.manager)
}

func (s *Session) Save(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manager.SaveToStorage(ctx)
}

func (s *Session) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manager.LoadFromStorage(ctx)
}
