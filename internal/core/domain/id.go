package domain

import "github.com/google/uuid"

// IDGenerator produces opaque identifiers for projects and todos.
type IDGenerator func() string

func NewUUID() string {
	return uuid.NewString()
}

func (g IDGenerator) orDefault() IDGenerator {
	if g == nil {
		return NewUUID
	}

	return g
}
