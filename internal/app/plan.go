package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Plan prints the tasks a run of targetNames would execute, in order.
func (a *App) Plan(_ context.Context, targetNames []string, w io.Writer) error {
	project, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	graph, err := a.buildGraph(project)
	if err != nil {
		return err
	}

	plan, err := scheduler.BuildPlan(graph, targetNames)
	if err != nil {
		return err
	}

	return writePlan(w, project, plan)
}

func writePlan(w io.Writer, project *domain.Project, plan *scheduler.Plan) error {
	syncs := make(map[string]domain.Artifact, len(project.Artifacts))
	for _, artifact := range project.Artifacts {
		syncs[artifact.TaskName()] = artifact
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Plan for %s (%d tasks)\n", strings.Join(plan.Targets, ", "), len(plan.Tasks))

	width := len(fmt.Sprint(len(plan.Tasks)))
	for i, name := range plan.Tasks {
		fmt.Fprintf(&b, "%*d. %s", width, i+1, name)
		if deps := plan.Dependencies[name]; len(deps) > 0 {
			fmt.Fprintf(&b, " <- %s", strings.Join(deps, ", "))
		}
		b.WriteString("\n")

		if artifact, ok := syncs[name]; ok {
			indent := strings.Repeat(" ", width+2)
			fmt.Fprintf(&b, "%ssync %s\n", indent, artifact.Name)
			fmt.Fprintf(&b, "%s  from %s\n", indent, relativeTo(project.Root, artifact.Source))
			fmt.Fprintf(&b, "%s  to   %s\n", indent, relativeTo(project.Root, artifact.Destination))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// relativeTo shortens path for display when it lies under root.
func relativeTo(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
