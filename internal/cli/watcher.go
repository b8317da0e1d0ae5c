package cli

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/logger"
	"github.com/toyz/autoimpl/internal/utils"
)

// DefaultDebounce is how long the watcher waits for events to settle
const DefaultDebounce = 300 * time.Millisecond

// Runnable is a generation run the watcher can repeat
type Runnable interface {
	Run(ctx context.Context) (GenerationSummary, error)
}

// Watcher re-runs generation whenever Go sources in the loaded package
// directories change
type Watcher struct {
	runner      Runnable
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
	watcher     *fsnotify.Watcher
	debounce    time.Duration
	log         *zap.SugaredLogger

	mu      sync.Mutex
	timer   *time.Timer
	watched  map[string]bool
	fallback []string
	trigger  chan struct{}

	// OnRun is called after every run, mostly for tests
	OnRun func(GenerationSummary, error)
}

// NewWatcher creates a watcher around runner
func NewWatcher(runner Runnable, reporter *DiagnosticReporter, diagnostics *utils.DiagnosticSystem, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapFileSystemError("watch", ".", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if reporter == nil {
		reporter = NewDiagnosticReporter(false)
	}
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}

	return &Watcher{
		runner:      runner,
		reporter:    reporter,
		diagnostics: diagnostics,
		watcher:     fsw,
		debounce:    debounce,
		log:         logger.ComponentLogger("watcher"),
		watched:     make(map[string]bool),
		trigger:     make(chan struct{}, 1),
	}, nil
}

// WithFallbackDirs sets the directories watched while no run has reported
// any, as when the first run fails before loading packages
func (w *Watcher) WithFallbackDirs(dirs ...string) *Watcher {
	w.fallback = dirs
	return w
}

// Run generates once, then keeps regenerating on change until ctx is done.
// Failed runs are reported and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	w.runOnce(ctx)
	w.diagnostics.Info("Watching %d directories", len(w.Watched()))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.log.Debugw("change detected", logger.FieldFile, event.Name, "op", event.Op.String())
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watcher error", logger.FieldError, err)

		case <-w.trigger:
			w.runOnce(ctx)
		}
	}
}

// Watched returns the directories currently watched, sorted
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return sortedKeys(w.watched)
}

// Close stops watching
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

// schedule debounces rapid changes into a single run
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}

// runOnce runs generation and starts watching any new package directory
func (w *Watcher) runOnce(ctx context.Context) {
	started := time.Now()
	summary, err := w.runner.Run(ctx)
	if err != nil {
		w.reporter.ReportError(err)
	} else {
		w.diagnostics.Success("%d written, %d unchanged in %s",
			len(summary.GeneratedFiles), len(summary.UnchangedFiles), time.Since(started).Round(time.Millisecond))
	}

	dirs := summary.Dirs
	if len(dirs) == 0 && len(w.Watched()) == 0 {
		dirs = w.fallback
	}
	for _, dir := range dirs {
		w.add(dir)
	}
	if w.OnRun != nil {
		w.OnRun(summary, err)
	}
}

func (w *Watcher) add(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watched[dir] {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.log.Warnw("cannot watch directory", logger.FieldFile, dir, logger.FieldError, err)
		return
	}
	w.watched[dir] = true
}

// relevant reports whether an event touches hand-written, non-test Go source
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
		return false
	}
	return !utils.IsGeneratedFileName(name)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
