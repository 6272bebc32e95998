package service

import "taskboard/internal/core/domain"

type subscription struct {
	id int
	fn func(domain.Event)
}

type observerList struct {
	nextID int
	subs   []subscription
}

func (l *observerList) add(fn func(domain.Event)) func() {
	if fn == nil {
		return func() {}
	}

	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, subscription{id: id, fn: fn})

	return func() {
		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

func (l *observerList) notify(event domain.Event) {
	// Copy so observers may unsubscribe while being notified.
	subs := append([]subscription(nil), l.subs...)
	for _, s := range subs {
		s.fn(event)
	}
}
