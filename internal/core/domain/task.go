package domain

import "context"

// Action is a unit of in-process work attached to a task.
// It runs on the goroutine the scheduler assigns to the task.
type Action func(ctx context.Context) error

// Task represents a node in the build graph.
// A task either runs a command, runs its DoFirst actions, or both (actions first).
type Task struct {
	Name         InternedString
	Command      []string
	Dependencies []InternedString
	Environment  map[string]string
	WorkingDir   InternedString

	// DoFirst holds the before-work hooks, executed in order before Command.
	DoFirst []Action
}

// HasWork reports whether executing the task does anything at all.
func (t *Task) HasWork() bool {
	return len(t.Command) > 0 || len(t.DoFirst) > 0
}

// DependsOn reports whether name is a direct dependency of the task.
func (t *Task) DependsOn(name InternedString) bool {
	for _, dep := range t.Dependencies {
		if dep == name {
			return true
		}
	}
	return false
}
