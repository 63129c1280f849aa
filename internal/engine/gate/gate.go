// Package gate wires artifact synchronization into a task graph.
//
// Installing a gate registers one sync task per artifact and makes every
// consumer task depend on it, whether the consumer is registered before or
// after the gate.
package gate

import (
	"context"
	"slices"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
)

// Predicate selects the tasks that consume an artifact.
type Predicate interface {
	Matches(taskName string) bool
}

// ExactNames matches task names by exact string equality.
type ExactNames []string

// Matches reports whether taskName is one of the names.
func (e ExactNames) Matches(taskName string) bool {
	return slices.Contains(e, taskName)
}

// Gate installs sync tasks backed by a Synchronizer.
type Gate struct {
	synchronizer ports.Synchronizer
}

// New creates a Gate.
func New(synchronizer ports.Synchronizer) *Gate {
	return &Gate{synchronizer: synchronizer}
}

// Install registers the artifact's sync task and gates the artifact's declared consumers on it.
func (g *Gate) Install(graph *domain.Graph, artifact domain.Artifact) (domain.InternedString, error) {
	return g.InstallWith(graph, artifact, ExactNames(artifact.Consumers))
}

// InstallWith is Install with a caller-supplied consumer predicate.
// It returns the name of the sync task.
func (g *Gate) InstallWith(graph *domain.Graph, artifact domain.Artifact, consumers Predicate) (domain.InternedString, error) {
	syncName := domain.NewInternedString(artifact.TaskName())

	task := &domain.Task{
		Name: syncName,
		DoFirst: []domain.Action{
			func(ctx context.Context) error {
				_, err := g.synchronizer.Synchronize(ctx, artifact)
				return err
			},
		},
	}
	if err := graph.AddTask(task); err != nil {
		return domain.InternedString{}, err
	}

	gateTask := func(name domain.InternedString) error {
		if name == syncName || !consumers.Matches(name.String()) {
			return nil
		}
		return graph.AddDependency(name, syncName)
	}

	for _, name := range graph.Names() {
		if err := gateTask(name); err != nil {
			return domain.InternedString{}, err
		}
	}

	graph.WhenTaskAdded(func(t domain.Task) {
		// The task is stored before observers run, so the edge cannot fail.
		_ = gateTask(t.Name)
	})

	return syncName, nil
}
