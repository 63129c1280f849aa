// Package domain contains the core domain models for artifact synchronization and the task graph.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph represents a dependency graph of tasks.
// It is built during configuration on a single goroutine and is read-only once validated.
type Graph struct {
	root           string
	tasks          map[InternedString]Task
	observers      []func(Task)
	executionOrder []InternedString
	dependents     map[InternedString][]InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks: make(map[InternedString]Task),
	}
}

// SetRoot sets the directory that task paths are resolved against.
func (g *Graph) SetRoot(root string) {
	g.root = root
}

// Root returns the directory that task paths are resolved against.
func (g *Graph) Root() string {
	return g.root
}

// WhenTaskAdded subscribes fn to every task registered after this call.
// Observers run synchronously inside AddTask, in subscription order.
func (g *Graph) WhenTaskAdded(fn func(Task)) {
	g.observers = append(g.observers, fn)
}

// AddTask adds a task to the graph and notifies registration observers.
// It returns an error if a task with the same name already exists.
func (g *Graph) AddTask(t *Task) error {
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(zerr.Wrap(ErrTaskAlreadyExists, "failed to add task"), "task_name", t.Name.String())
	}
	g.tasks[t.Name] = *t
	g.executionOrder = nil

	// Observers may register further tasks or subscribe again.
	for _, fn := range slices.Clone(g.observers) {
		fn(g.tasks[t.Name])
	}
	return nil
}

// AddDependency declares that task must run after dependsOn.
// Adding an edge that already exists is a no-op.
func (g *Graph) AddDependency(task, dependsOn InternedString) error {
	t, exists := g.tasks[task]
	if !exists {
		return zerr.With(zerr.Wrap(ErrTaskNotFound, "failed to add dependency"), "task", task.String())
	}
	if t.DependsOn(dependsOn) {
		return nil
	}
	t.Dependencies = append(slices.Clone(t.Dependencies), dependsOn)
	g.tasks[task] = t
	g.executionOrder = nil
	return nil
}

// GetTask returns the task registered under name.
func (g *Graph) GetTask(name InternedString) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// TaskCount returns the number of registered tasks.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Names returns all task names sorted alphabetically.
func (g *Graph) Names() []InternedString {
	names := make([]InternedString, 0, len(g.tasks))
	for name := range g.tasks {
		names = append(names, name)
	}
	SortInterned(names)
	return names
}

// Validate checks for missing dependencies and cycles using a topological sort.
// It populates the execution order and the reverse dependency index.
func (g *Graph) Validate() error {
	order := make([]InternedString, 0, len(g.tasks))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		task, exists := g.tasks[u]
		if !exists {
			err := zerr.With(zerr.Wrap(ErrMissingDependency, "invalid task graph"), "dependency", u.String())
			if len(path) > 1 {
				err = zerr.With(err, "task", path[len(path)-2].String())
			}
			return err
		}

		deps := slices.Clone(task.Dependencies)
		SortInterned(deps)
		for _, dep := range deps {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		order = append(order, u)
		return nil
	}

	// Sorted iteration keeps the order stable across runs.
	for _, name := range g.Names() {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	dependents := make(map[InternedString][]InternedString, len(g.tasks))
	for _, name := range order {
		for _, dep := range g.tasks[name].Dependencies {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	g.executionOrder = order
	g.dependents = dependents
	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	startIdx := slices.Index(path, dep)
	parts := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(zerr.Wrap(ErrCycleDetected, "invalid task graph"), "cycle", strings.Join(parts, " -> "))
}

// Walk returns an iterator that yields tasks in execution order.
// It yields nothing unless Validate has succeeded since the last mutation.
func (g *Graph) Walk() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}

// Dependents returns the tasks that directly depend on name.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Dependents(name InternedString) []InternedString {
	return g.dependents[name]
}
