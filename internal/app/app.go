// Package app implements the application layer for ferry.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"go.trai.ch/ferry/internal/adapters/linear"
	"go.trai.ch/ferry/internal/adapters/telemetry"
	"go.trai.ch/ferry/internal/adapters/watcher"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/ferry/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	// TracerName is the instrumentation name of the spans a run reports.
	TracerName = "ferry"

	// DefaultWatchDebounce is the quiet period Watch uses when none is configured.
	DefaultWatchDebounce = watcher.DefaultDebounceWindow
)

// App represents the main application logic.
type App struct {
	configLoader    ports.ConfigLoader
	logger          ports.Logger
	newSynchronizer ports.SynchronizerFactory
	watcher         ports.Watcher
	scheduler       *scheduler.Scheduler

	stdout io.Writer
	stderr io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	newSynchronizer ports.SynchronizerFactory,
	fileWatcher ports.Watcher,
	sched *scheduler.Scheduler,
) *App {
	return &App{
		configLoader:    loader,
		logger:          log,
		newSynchronizer: newSynchronizer,
		watcher:         fileWatcher,
		scheduler:       sched,
		stdout:          os.Stdout,
		stderr:          os.Stderr,
	}
}

// WithOutput redirects task output and progress lines.
// This is primarily used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Parallelism caps concurrently running tasks. Zero means one per CPU.
	Parallelism int
}

// Run executes the specified targets and everything they depend on,
// synchronizing artifacts ahead of their consumers.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	// 1. Load the project
	project, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	// 2. Validate targets
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	// 3. Build the graph with artifact gates installed
	graph, err := a.buildGraph(project)
	if err != nil {
		return err
	}

	// 4. Initialize renderer and telemetry
	renderer := linear.NewRenderer(a.stdout, a.stderr)

	provider := telemetry.NewTracerProvider(renderer)
	defer func() {
		_ = provider.Shutdown(context.WithoutCancel(ctx))
	}()
	tracer := telemetry.NewOTelTracer(provider, TracerName).WithRenderer(renderer)
	sched := a.scheduler.WithTracer(tracer)

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	// 5. Run renderer and scheduler concurrently
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()

		if err := sched.Run(ctx, graph, targetNames, parallelism); err != nil {
			return errors.Join(domain.ErrBuildExecutionFailed, err)
		}
		return nil
	})

	return g.Wait()
}

// Sync synchronizes the named artifacts, or every declared artifact when
// names is empty, without running any task. Every artifact is attempted;
// failures are joined.
func (a *App) Sync(ctx context.Context, names []string) error {
	project, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	artifacts, err := selectArtifacts(project, names)
	if err != nil {
		return err
	}

	synchronizer, err := a.newSynchronizer(project.Digest)
	if err != nil {
		return err
	}

	var errs error
	for _, artifact := range artifacts {
		if ctx.Err() != nil {
			return errors.Join(errs, ctx.Err())
		}
		if _, err := synchronizer.Synchronize(ctx, artifact); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	// Debounce is the quiet period after the last change before re-synchronizing.
	// Zero uses DefaultWatchDebounce.
	Debounce time.Duration
}

// Watch synchronizes the selected artifacts once, then again every time one
// of their sources changes, until ctx is canceled. Synchronization failures
// are logged and do not stop watching.
func (a *App) Watch(ctx context.Context, names []string, opts WatchOptions) error {
	project, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	artifacts, err := selectArtifacts(project, names)
	if err != nil {
		return err
	}

	synchronizer, err := a.newSynchronizer(project.Digest)
	if err != nil {
		return err
	}

	bySource := make(map[string][]domain.Artifact, len(artifacts))
	sources := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		if _, ok := bySource[artifact.Source]; !ok {
			sources = append(sources, artifact.Source)
		}
		bySource[artifact.Source] = append(bySource[artifact.Source], artifact)
	}

	syncAll := func(ctx context.Context, batch []domain.Artifact) {
		for _, artifact := range batch {
			if _, err := synchronizer.Synchronize(ctx, artifact); err != nil && ctx.Err() == nil {
				a.logger.Error(err)
			}
		}
	}

	syncAll(ctx, artifacts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.watcher.Start(ctx, sources); err != nil {
		return err
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	a.logger.Info(fmt.Sprintf("watching %d source artifact(s) for changes", len(sources)))

	window := opts.Debounce
	if window <= 0 {
		window = DefaultWatchDebounce
	}

	// Batches are synchronized on this goroutine, one at a time.
	batches := make(chan []string)
	debouncer := watcher.NewDebouncer(window, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})
	defer debouncer.Stop()

	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		for event := range a.watcher.Events() {
			if _, ok := bySource[event.Path]; ok {
				debouncer.Add(event.Path)
			}
		}
	}()

	for {
		select {
		case paths := <-batches:
			for _, path := range paths {
				syncAll(ctx, bySource[path])
			}
		case <-eventsDone:
			return nil
		}
	}
}

func selectArtifacts(project *domain.Project, names []string) ([]domain.Artifact, error) {
	if len(names) == 0 {
		return project.Artifacts, nil
	}

	selected := make([]domain.Artifact, 0, len(names))
	for _, name := range names {
		artifact, ok := project.Artifact(name)
		if !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrArtifactNotFound, "failed to select artifacts"), "artifact", name)
		}
		selected = append(selected, artifact)
	}
	return selected, nil
}
