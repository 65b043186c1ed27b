// Package watch reruns a build whenever diagram sources change. Filesystem
// events are debounced, at most one build runs at a time, and a change that
// arrives during a build queues exactly one more. An optional poll interval
// triggers builds even without events, for filesystems where inotify is
// unreliable (network mounts, some container volumes).
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/umlbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/umlbuilder/internal/logfields"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc performs one build. Errors are logged and watching continues.
type BuildFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Root is watched recursively.
	Root string
	// Match filters events by path relative to Root, slash separated. Nil accepts everything.
	Match func(rel string) bool
	// Files outside Root whose changes also trigger a build, such as the configuration file.
	Files        []string
	Debounce     time.Duration
	PollInterval time.Duration
}

// Watcher drives BuildFunc from filesystem events.
type Watcher struct {
	opts   Options
	build  BuildFunc
	logger *slog.Logger
	files  map[string]bool
}

// New creates a watcher. Nothing happens until Run.
func New(opts Options, build BuildFunc) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	files := make(map[string]bool, len(opts.Files))
	for _, f := range opts.Files {
		if abs, err := filepath.Abs(f); err == nil {
			files[abs] = true
		}
	}
	return &Watcher{opts: opts, build: build, logger: slog.Default(), files: files}
}

// WithLogger sets a custom logger.
func (w *Watcher) WithLogger(logger *slog.Logger) *Watcher {
	w.logger = logger
	return w
}

// Run builds once, then rebuilds on change until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	root, err := filepath.Abs(w.opts.Root)
	if err != nil {
		return fmt.Errorf("resolve watch root: %w", err)
	}

	watcher, err := w.setupFileWatcher(root)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	rebuildReq, trigger, stopDebounce := setupRebuildDebouncer(w.opts.Debounce)
	defer stopDebounce()

	worker := w.startRebuildWorker(ctx, rebuildReq)
	request(rebuildReq)

	if w.opts.PollInterval > 0 {
		sched, err := w.startPoller(rebuildReq)
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				w.logger.Warn("scheduler shutdown error", logfields.Error(err))
			}
		}()
	}

	w.logger.Info("Watching for diagram changes", logfields.Path(root))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watch mode")
			<-worker
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(watcher, root, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) setupFileWatcher(root string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.RuntimeError("file watcher unavailable").WithCause(err).Build()
	}
	if err := w.addDirsRecursive(watcher, root); err != nil {
		_ = watcher.Close()
		return nil, errors.FileSystemError("cannot watch source directory").
			WithCause(err).
			WithContext("path", root).
			Build()
	}
	dirs := map[string]bool{}
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			w.logger.Warn("watch add failed", logfields.Path(dir), logfields.Error(err))
		}
	}
	return watcher, nil
}

// setupRebuildDebouncer returns the rebuild channel, a debounced trigger and a stop function.
func setupRebuildDebouncer(delay time.Duration) (chan struct{}, func(), func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() { request(rebuildReq) })
	}
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return rebuildReq, trigger, stop
}

// request enqueues a rebuild unless one is already waiting.
func request(rebuildReq chan struct{}) {
	select {
	case rebuildReq <- struct{}{}:
	default:
	}
}

// startRebuildWorker runs builds one at a time. The returned channel is closed
// when the worker exits after ctx is done.
func (w *Watcher) startRebuildWorker(ctx context.Context, rebuildReq chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-rebuildReq:
				// Requests arriving during the build collapse into the single buffered slot.
				w.processRebuild(ctx)
			}
		}
	}()
	return done
}

func (w *Watcher) processRebuild(ctx context.Context) {
	start := time.Now()
	if err := w.build(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Warn("rebuild failed", logfields.Error(err), logfields.Duration(time.Since(start)))
		return
	}
	w.logger.Debug("rebuild finished", logfields.Duration(time.Since(start)))
}

func (w *Watcher) startPoller(rebuildReq chan struct{}) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.PollInterval),
		gocron.NewTask(func() { request(rebuildReq) }),
		gocron.WithName("umlbuilder-poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create poll job: %w", err)
	}
	s.Start()
	w.logger.Info("Polling for changes", slog.Duration("interval", w.opts.PollInterval))
	return s, nil
}

// handleFileEvent processes a filesystem event and triggers a rebuild if needed.
func (w *Watcher) handleFileEvent(watcher *fsnotify.Watcher, root string, ev fsnotify.Event, trigger func()) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	if w.files[ev.Name] {
		w.logger.Debug("Watched file changed", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
		trigger()
		return
	}
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	rel, err := filepath.Rel(root, ev.Name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(watcher, ev.Name)
			// Files may have landed before the watch was added.
			trigger()
			return
		}
	}
	if w.opts.Match != nil && !w.opts.Match(filepath.ToSlash(rel)) {
		return
	}
	w.logger.Debug("Diagram change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (w *Watcher) addDirsRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && shouldIgnoreEvent(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			w.logger.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for paths that must not trigger rebuilds:
// hidden entries (including staging directories), editor swap and lock files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
