package app

import (
	"fmt"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/engine/gate"
	"go.trai.ch/zerr"
)

// buildGraph installs one gate per artifact and then registers the project's
// tasks, so consumers are gated as they are added.
func (a *App) buildGraph(project *domain.Project) (*domain.Graph, error) {
	graph := domain.NewGraph()
	graph.SetRoot(project.Root)

	if len(project.Artifacts) > 0 {
		synchronizer, err := a.newSynchronizer(project.Digest)
		if err != nil {
			return nil, err
		}
		g := gate.New(synchronizer)
		for _, artifact := range project.Artifacts {
			if _, err := g.Install(graph, artifact); err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to install artifact gate"), "artifact", artifact.Name)
			}
		}
	}

	for i := range project.Tasks {
		task := project.Tasks[i]
		if err := graph.AddTask(&task); err != nil {
			return nil, err
		}
	}

	for _, artifact := range project.Artifacts {
		for _, consumer := range artifact.Consumers {
			if _, ok := graph.GetTask(domain.NewInternedString(consumer)); !ok {
				a.logger.Warn(fmt.Sprintf("artifact %s: consumer task %q is not declared", artifact.Name, consumer))
			}
		}
	}

	return graph, nil
}
