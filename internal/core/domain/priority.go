package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPriority = errors.New("invalid priority")

type Priority string

const (
	PriorityUrgent    Priority = "Urgent"
	PriorityImportant Priority = "Important"
	PriorityLow       Priority = "Low"
)

const DefaultPriority = PriorityImportant

func Priorities() []Priority {
	return []Priority{PriorityUrgent, PriorityImportant, PriorityLow}
}

func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "urgent":
		return PriorityUrgent, nil
	case "important":
		return PriorityImportant, nil
	case "low":
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityImportant, PriorityLow:
		return true
	}

	return false
}

// Rank orders priorities from most to least pressing.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityImportant:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

func (p Priority) String() string {
	return string(p)
}

// OrDefault returns p when valid, otherwise DefaultPriority.
func (p Priority) OrDefault() Priority {
	if p.IsValid() {
		return p
	}

	return DefaultPriority
}
