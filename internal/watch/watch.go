// Package watch re-runs the analysis pipeline when source files change.
// Filesystem events are debounced so a burst of editor writes triggers
// one re-check per file, matching the parse-on-pause model: the pipeline
// itself stays synchronous and the watcher is the scheduling layer
// around it.
package watch

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"github.com/pcodetools/pcode/internal/engine"
)

// Watcher drives debounced re-checks of changed files.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	engine    *engine.Engine
	logger    *slog.Logger

	debounce     time.Duration
	extensions   map[string]struct{}
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob

	onResult  func(*engine.Result)
	resultMu  sync.Mutex
	pending   map[string]struct{}
	pendingMu sync.Mutex
	timer     *time.Timer
	done      chan struct{}
	closeOnce sync.Once
}

// Options configures a Watcher.
type Options struct {
	Debounce     time.Duration
	Extensions   []string
	ExcludeDirs  []string
	ExcludeFiles []string
	Logger       *slog.Logger
}

// New creates a watcher that checks changed files with e and hands each
// result to onResult. onResult is called from the watcher goroutine, one
// result at a time.
func New(e *engine.Engine, opts Options, onResult func(*engine.Result)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	w := &Watcher{
		fsWatcher:  fsw,
		engine:     e,
		logger:     opts.Logger,
		debounce:   opts.Debounce,
		extensions: make(map[string]struct{}, len(opts.Extensions)),
		onResult:   onResult,
		pending:    make(map[string]struct{}),
		done:       make(chan struct{}),
	}
	for _, ext := range opts.Extensions {
		w.extensions[strings.ToLower(ext)] = struct{}{}
	}
	for _, pattern := range opts.ExcludeDirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.excludeDirs = append(w.excludeDirs, g)
	}
	for _, pattern := range opts.ExcludeFiles {
		g, err := glob.Compile(pattern)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.excludeFiles = append(w.excludeFiles, g)
	}
	return w, nil
}

// Watch starts watching the given roots recursively and launches the
// event loop.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		if err := w.watchRecursive(root); err != nil {
			return err
		}
	}
	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if w.excludedDir(path) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "error", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.excludedDir(event.Name) {
				if err := w.watchRecursive(event.Name); err != nil {
					w.logger.Warn("watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !w.wantedFile(event.Name) {
		return
	}
	w.schedule(event.Name)
}

// schedule records a changed file and restarts the debounce timer.
func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// flush checks every pending file and delivers the results.
func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	w.resultMu.Lock()
	defer w.resultMu.Unlock()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			w.logger.Warn("read changed file", "path", path, "error", err)
			continue
		}
		result := w.engine.Check(path, string(data))
		w.logger.Info("rechecked",
			"path", path,
			"diagnostics", len(result.Diagnostics),
			"elapsed", result.Elapsed)
		if w.onResult != nil {
			w.onResult(result)
		}
	}
}

func (w *Watcher) wantedFile(path string) bool {
	if len(w.extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := w.extensions[ext]; !ok {
			return false
		}
	}
	base := filepath.Base(path)
	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return false
		}
	}
	return true
}

func (w *Watcher) excludedDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// Close stops the event loop and releases the filesystem watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		if w.timer != nil {
			w.timer.Stop()
		}
		err = w.fsWatcher.Close()
	})
	return err
}
