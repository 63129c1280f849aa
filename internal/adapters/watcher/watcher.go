package watcher

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const eventChannelBuffer = 100

// Watcher reports changes to a fixed set of files using fsnotify.
//
// Files are watched through their parent directories so that atomic
// rename-over writes are observed. A parent that does not exist yet is
// replaced by its nearest existing ancestor, and the missing directories are
// added as they appear.
type Watcher struct {
	logger    ports.Logger
	fsWatcher *fsnotify.Watcher
	events    chan ports.WatchEvent

	mu      sync.Mutex
	targets map[string]struct{} // cleaned absolute file paths
	dirs    map[string]struct{} // directories leading to a target
}

// NewWatcher creates a new file system watcher.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrWatchFailed, err), "failed to create watcher")
	}
	return &Watcher{
		logger:    logger,
		fsWatcher: fsWatcher,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
		targets:   make(map[string]struct{}),
		dirs:      make(map[string]struct{}),
	}, nil
}

// Start begins watching paths. Events are delivered until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context, paths []string) error {
	w.mu.Lock()
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.mu.Unlock()
			return zerr.With(zerr.Wrap(errors.Join(domain.ErrWatchFailed, err), "failed to resolve path"), "path", p)
		}
		w.targets[abs] = struct{}{}
		for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
			w.dirs[dir] = struct{}{}
			if parent := filepath.Dir(dir); parent == dir {
				break
			}
		}
	}

	for _, p := range paths {
		abs, _ := filepath.Abs(p)
		dir, err := nearestExistingDir(filepath.Dir(abs))
		if err != nil {
			w.mu.Unlock()
			return zerr.With(zerr.Wrap(errors.Join(domain.ErrWatchFailed, err), "failed to watch source"), "path", p)
		}
		if err := w.fsWatcher.Add(dir); err != nil {
			w.mu.Unlock()
			return zerr.With(zerr.Wrap(errors.Join(domain.ErrWatchFailed, err), "failed to watch source"), "dir", dir)
		}
	}
	w.mu.Unlock()

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events. It ends when the watcher stops.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			path := filepath.Clean(event.Name)
			if event.Has(fsnotify.Create) {
				w.followCreatedDir(path)
			}

			watchEvent, ok := w.convertEvent(path, event.Op)
			if !ok {
				continue
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(fmt.Sprintf("watcher: %v", err))
		}
	}
}

// followCreatedDir starts watching a newly created directory on the way to a target.
// Targets created together with the directory are reported as created.
func (w *Watcher) followCreatedDir(path string) {
	w.mu.Lock()
	_, onTheWay := w.dirs[path]
	w.mu.Unlock()
	if !onTheWay {
		return
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsWatcher.Add(path); err != nil {
		w.logger.Warn(fmt.Sprintf("watcher: failed to watch %s: %v", path, err))
		return
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return
	}
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			w.followCreatedDir(child)
			continue
		}
		if w.isTarget(child) {
			select {
			case w.events <- ports.WatchEvent{Path: child, Operation: ports.OpCreate}:
			default:
			}
		}
	}
}

func (w *Watcher) isTarget(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.targets[path]
	return ok
}

// convertEvent maps an fsnotify event on a target to a ports.WatchEvent.
func (w *Watcher) convertEvent(path string, op fsnotify.Op) (ports.WatchEvent, bool) {
	if !w.isTarget(path) {
		return ports.WatchEvent{}, false
	}

	switch {
	case op.Has(fsnotify.Write):
		return ports.WatchEvent{Path: path, Operation: ports.OpWrite}, true
	case op.Has(fsnotify.Create):
		return ports.WatchEvent{Path: path, Operation: ports.OpCreate}, true
	case op.Has(fsnotify.Remove):
		return ports.WatchEvent{Path: path, Operation: ports.OpRemove}, true
	case op.Has(fsnotify.Rename):
		return ports.WatchEvent{Path: path, Operation: ports.OpRename}, true
	default:
		return ports.WatchEvent{}, false
	}
}

// nearestExistingDir returns dir or its closest existing ancestor.
func nearestExistingDir(dir string) (string, error) {
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return "", zerr.With(zerr.New("not a directory"), "dir", dir)
			}
			return dir, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", err
		}
		dir = parent
	}
}
