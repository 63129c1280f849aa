// Package scheduler implements the task execution scheduler.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
)

// Span kinds reported to the tracer.
const (
	KindTask = "task"
	KindSync = "sync"
)

// Scheduler manages the execution of tasks in the dependency graph.
type Scheduler struct {
	executor ports.Executor
	tracer   ports.Tracer

	mu         sync.RWMutex
	taskStatus map[domain.InternedString]TaskStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(executor ports.Executor, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		executor:   executor,
		tracer:     tracer,
		taskStatus: make(map[domain.InternedString]TaskStatus),
	}
}

// WithTracer replaces the tracer used for subsequent runs.
func (s *Scheduler) WithTracer(tracer ports.Tracer) *Scheduler {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracer = tracer
	return s
}

func (s *Scheduler) currentTracer() ports.Tracer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracer
}

func (s *Scheduler) initTaskStatuses(tasks []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, task := range tasks {
		s.taskStatus[domain.NewInternedString(task)] = StatusPending
	}
}

func (s *Scheduler) updateStatus(name domain.InternedString, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

// Run executes targetNames and their transitive dependencies with at most
// parallelism tasks at once. If targetNames contains "all", every task runs.
// A task starts only after all of its dependencies succeeded; once a task
// fails no new tasks are started.
func (s *Scheduler) Run(ctx context.Context, graph *domain.Graph, targetNames []string, parallelism int) error {
	plan, err := BuildPlan(graph, targetNames)
	if err != nil {
		return err
	}

	tracer := s.currentTracer()
	tracer.EmitPlan(ctx, plan.Tasks, plan.Dependencies, plan.Targets)
	s.initTaskStatuses(plan.Tasks)

	return s.newRunState(ctx, graph, plan, tracer, parallelism).runExecutionLoop()
}

type result struct {
	task domain.InternedString
	err  error
}

type schedulerRunState struct {
	graph       *domain.Graph
	inDegree    map[domain.InternedString]int
	tasks       map[domain.InternedString]domain.Task
	ready       []domain.InternedString
	active      int
	resultsCh   chan result
	errs        error
	failed      bool
	ctx         context.Context
	parallelism int
	tracer      ports.Tracer
	s           *Scheduler
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	graph *domain.Graph,
	plan *Plan,
	tracer ports.Tracer,
	parallelism int,
) *schedulerRunState {
	if parallelism < 1 {
		parallelism = 1
	}

	inDegree := make(map[domain.InternedString]int, len(plan.Tasks))
	tasks := make(map[domain.InternedString]domain.Task, len(plan.Tasks))
	for _, nameStr := range plan.Tasks {
		name := domain.NewInternedString(nameStr)
		task, _ := graph.GetTask(name)
		tasks[name] = task
	}

	// Plan order keeps the ready queue deterministic.
	var ready []domain.InternedString
	for _, nameStr := range plan.Tasks {
		name := domain.NewInternedString(nameStr)
		degree := 0
		for _, dep := range tasks[name].Dependencies {
			if _, planned := tasks[dep]; planned {
				degree++
			}
		}
		inDegree[name] = degree
		if degree == 0 {
			ready = append(ready, name)
		}
	}

	return &schedulerRunState{
		graph:       graph,
		inDegree:    inDegree,
		tasks:       tasks,
		ready:       ready,
		resultsCh:   make(chan result, parallelism),
		ctx:         ctx,
		parallelism: parallelism,
		tracer:      tracer,
		s:           s,
	}
}

func (state *schedulerRunState) runExecutionLoop() error {
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			return errors.Join(state.errs, state.ctx.Err())
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
			if state.active > 0 {
				state.handleResult(<-state.resultsCh)
			}
		}
	}

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}

	return state.errs
}

func (state *schedulerRunState) isDone() bool {
	return state.active == 0 && (len(state.ready) == 0 || state.failed)
}

func (state *schedulerRunState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil && !state.failed {
		taskName := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(taskName, StatusRunning)

		t := state.tasks[taskName]
		go state.executeTask(&t)
	}
}

func (state *schedulerRunState) executeTask(t *domain.Task) {
	// The span ends before the result is sent so the run never finishes ahead of its spans.
	res := func() result {
		kind := KindTask
		if len(t.DoFirst) > 0 {
			kind = KindSync
		}
		ctx, span := state.tracer.Start(state.ctx, t.Name.String(), ports.WithKind(kind))
		defer span.End()

		for _, action := range t.DoFirst {
			if err := action(ctx); err != nil {
				span.RecordError(err)
				return result{task: t.Name, err: err}
			}
		}

		if len(t.Command) > 0 {
			if err := state.s.executor.Execute(ctx, t, span, span); err != nil {
				span.RecordError(err)
				return result{task: t.Name, err: err}
			}
		}

		return result{task: t.Name}
	}()

	state.resultsCh <- res
}

func (state *schedulerRunState) handleResult(res result) {
	state.active--

	if res.err != nil {
		wrapped := zerr.Wrap(errors.Join(domain.ErrTaskExecutionFailed, res.err), "failed to run task")
		state.errs = errors.Join(state.errs, zerr.With(wrapped, "task", res.task.String()))
		state.failed = true
		state.s.updateStatus(res.task, StatusFailed)
		return
	}

	state.s.updateStatus(res.task, StatusCompleted)
	for _, dep := range state.graph.Dependents(res.task) {
		if _, ok := state.tasks[dep]; !ok {
			continue
		}
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}
