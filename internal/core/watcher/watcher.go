package watcher

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"impactscan/internal/shared/observability"
)

const DefaultDebounce = 500 * time.Millisecond

type Options struct {
	Debounce     time.Duration
	ExcludeDirs  []string
	ExcludeFiles []string
	// Extensions limits reported files. Empty reports every file, since
	// changed assets matter to an impact run too.
	Extensions []string
	Logger     *slog.Logger
}

// Watcher reports batches of changed files under a set of roots. A batch is
// delivered once the tree has been quiet for the debounce interval.
type Watcher struct {
	fsw          *fsnotify.Watcher
	debounce     time.Duration
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	extensions   map[string]bool
	logger       *slog.Logger

	onBatch  func([]string)
	deliver  sync.Mutex
	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer
	stopOnce sync.Once
}

func New(opts Options, onBatch func([]string)) (*Watcher, error) {
	if onBatch == nil {
		return nil, os.ErrInvalid
	}
	dirs, err := compileAll(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	files, err := compileAll(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:          fsw,
		debounce:     opts.Debounce,
		excludeDirs:  dirs,
		excludeFiles: files,
		logger:       opts.Logger,
		onBatch:      onBatch,
		pending:      make(map[string]struct{}),
	}
	if len(opts.Extensions) > 0 {
		w.extensions = make(map[string]bool, len(opts.Extensions))
		for _, ext := range opts.Extensions {
			if ext = strings.ToLower(strings.TrimSpace(ext)); ext != "" {
				w.extensions[ext] = true
			}
		}
	}
	return w, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// Watch registers every non-excluded directory under roots and starts
// delivering batches. Roots themselves are never excluded.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		if err := w.addTree(root, false); err != nil {
			return err
		}
	}
	go w.loop()
	return nil
}

// addTree watches root and its subdirectories. With enqueue set, files
// already present are reported, which covers directories created (or moved
// in) between the event and the Add.
func (w *Watcher) addTree(root string, enqueue bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if enqueue && w.wants(path) {
				w.enqueue(path)
			}
			return nil
		}
		if path != root && w.excludedDir(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.excludedDir(event.Name) {
				return
			}
			if err := w.addTree(event.Name, true); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if w.wants(event.Name) {
		w.enqueue(event.Name)
	}
}

func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	batch := make([]string, 0, len(w.pending))
	for path := range w.pending {
		batch = append(batch, path)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	sort.Strings(batch)

	w.deliver.Lock()
	defer w.deliver.Unlock()
	w.onBatch(batch)
}

func (w *Watcher) excludedDir(path string) bool {
	return matchAny(w.excludeDirs, filepath.Base(path))
}

// wants reports whether a file event should be part of a batch.
func (w *Watcher) wants(path string) bool {
	base := filepath.Base(path)
	if w.extensions != nil && !w.extensions[strings.ToLower(filepath.Ext(base))] {
		return false
	}
	return !matchAny(w.excludeFiles, base)
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Close stops event delivery. A batch already being delivered completes.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.fsw.Close()
	})
	return err
}
