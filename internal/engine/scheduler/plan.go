package scheduler

import (
	"slices"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

// Plan is the set of tasks a run executes, in execution order.
type Plan struct {
	// Tasks are ordered so every task follows its dependencies.
	Tasks []string
	// Dependencies maps each planned task to its direct dependencies.
	Dependencies map[string][]string
	// Targets are the names the plan was built for.
	Targets []string
}

// BuildPlan validates graph and selects the tasks needed for targetNames.
// The target "all" selects every task.
func BuildPlan(graph *domain.Graph, targetNames []string) (*Plan, error) {
	if len(targetNames) == 0 {
		return nil, zerr.Wrap(domain.ErrNoTargetsSpecified, "failed to plan run")
	}

	if err := graph.Validate(); err != nil {
		return nil, err
	}

	selected, err := selectTasks(graph, targetNames)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Tasks:        make([]string, 0, len(selected)),
		Dependencies: make(map[string][]string, len(selected)),
		Targets:      slices.Clone(targetNames),
	}
	for task := range graph.Walk() {
		if !selected[task.Name] {
			continue
		}
		name := task.Name.String()
		plan.Tasks = append(plan.Tasks, name)

		deps := domain.Strings(task.Dependencies)
		slices.Sort(deps)
		plan.Dependencies[name] = deps
	}
	return plan, nil
}

func selectTasks(graph *domain.Graph, targetNames []string) (map[domain.InternedString]bool, error) {
	selected := make(map[domain.InternedString]bool, graph.TaskCount())

	if slices.Contains(targetNames, domain.AllTarget) {
		for task := range graph.Walk() {
			selected[task.Name] = true
		}
		return selected, nil
	}

	queue := make([]domain.InternedString, 0, len(targetNames))
	for _, nameStr := range targetNames {
		name := domain.NewInternedString(nameStr)
		if _, ok := graph.GetTask(name); !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrTaskNotFound, "failed to plan run"), "task", nameStr)
		}
		queue = append(queue, name)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if selected[current] {
			continue
		}
		selected[current] = true

		task, _ := graph.GetTask(current)
		queue = append(queue, task.Dependencies...)
	}
	return selected, nil
}
