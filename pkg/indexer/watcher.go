package indexer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/tscanon/pkg/scanner"
)

// Watcher watches a directory tree and re-converts changed files into a
// SchemaIndex.
//
// **Features:**
//   - Debouncing - Groups rapid writes to one file into a single conversion
//   - Selective - Only files selected by the scan config are converted
//   - New directories are watched as they appear
//
// **Usage:**
//
//	w, err := NewWatcher(index, scanConfig, opts, logger)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	watcher *fsnotify.Watcher
	index   *SchemaIndex
	cfg     scanner.ScanConfig
	logger  *slog.Logger
	options WatchOptions

	// Debouncing
	debounceTimers map[string]*pendingConversion
	debounceMu     sync.Mutex

	// Lifecycle
	stopChan chan struct{}
	done     chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
	inflight sync.WaitGroup
}

// NewWatcher creates a watcher over index.Root(). Logger can be nil.
func NewWatcher(index *SchemaIndex, cfg scanner.ScanConfig, options WatchOptions, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if options.DebounceMs <= 0 {
		options.DebounceMs = DefaultWatchOptions().DebounceMs
	}

	return &Watcher{
		watcher:        watcher,
		index:          index,
		cfg:            cfg,
		logger:         logger,
		options:        options,
		debounceTimers: make(map[string]*pendingConversion),
		stopChan:       make(chan struct{}),
		done:           make(chan struct{}),
	}, nil
}

// Start adds watches for every non-excluded directory and begins processing
// events in the background.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return errors.New("watcher already stopped")
	}
	if w.started {
		return errors.New("watcher already started")
	}

	if err := w.addTree(w.index.Root()); err != nil {
		return err
	}
	w.started = true

	w.logger.Info("file watcher started", "root", w.index.Root())

	go w.eventLoop()
	return nil
}

// Stop stops the watcher and waits for in-flight conversions. No update is
// delivered after Stop returns. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	close(w.stopChan)
	w.mu.Unlock()

	w.debounceMu.Lock()
	for _, p := range w.debounceTimers {
		p.timer.Stop()
	}
	w.debounceTimers = make(map[string]*pendingConversion)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}
	// OnUpdate may call GetStats, so this wait must not hold w.mu.
	w.inflight.Wait()
	w.logger.Info("file watcher stopped")
	return err
}

// addTree watches dir and its subdirectories, skipping excluded ones.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish between the event and the walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.index.Root() && scanner.Excluded(w.index.RelPath(path), w.cfg) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel := w.index.RelPath(event.Name)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !scanner.Excluded(rel, w.cfg) {
				if err := w.addTree(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", rel, "error", err)
				}
			}
			return
		}
	}

	if !scanner.Matches(rel, w.cfg) {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "path", rel)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.debounce(rel)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancel(rel)
		w.remove(rel)
	}
}

// pendingConversion is one scheduled conversion. Its identity tells a
// firing timer whether it still owns the path.
type pendingConversion struct {
	timer *time.Timer
}

// debounce schedules a conversion after the debounce delay. Only the last
// event in a burst triggers it.
func (w *Watcher) debounce(rel string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if p, exists := w.debounceTimers[rel]; exists {
		p.timer.Stop()
	}

	p := &pendingConversion{}
	p.timer = time.AfterFunc(
		time.Duration(w.options.DebounceMs)*time.Millisecond,
		func() { w.fire(rel, p) },
	)
	w.debounceTimers[rel] = p
}

// fire runs when p's timer expires. A conversion that was replaced or
// cancelled after its timer started firing no longer owns rel and does
// nothing.
func (w *Watcher) fire(rel string, p *pendingConversion) {
	w.debounceMu.Lock()
	if w.debounceTimers[rel] != p {
		w.debounceMu.Unlock()
		return
	}
	delete(w.debounceTimers, rel)
	w.debounceMu.Unlock()

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	w.convert(rel)
}

func (w *Watcher) cancel(rel string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if p, exists := w.debounceTimers[rel]; exists {
		p.timer.Stop()
		delete(w.debounceTimers, rel)
	}
}

func (w *Watcher) convert(rel string) {
	out, cached, err := w.index.Convert(rel)
	if err != nil {
		w.logger.Warn("failed to convert changed file", "path", rel, "error", err)
		w.notify(Update{Path: rel, Err: err, At: time.Now()})
		return
	}
	if cached {
		return
	}
	w.logger.Info("file re-converted", "path", rel, "types", out.Types.Len(), "errors", len(out.Errors))
	w.notify(Update{Path: rel, Schema: out, At: time.Now()})
}

func (w *Watcher) remove(rel string) {
	if !w.index.Remove(rel) {
		return
	}
	w.logger.Info("file removed from index", "path", rel)
	w.notify(Update{Path: rel, Removed: true, At: time.Now()})
}

func (w *Watcher) notify(u Update) {
	if w.options.OnUpdate != nil {
		w.options.OnUpdate(u)
	}
}

// GetStats returns watcher statistics.
func (w *Watcher) GetStats() WatcherStats {
	w.debounceMu.Lock()
	pending := len(w.debounceTimers)
	w.debounceMu.Unlock()

	w.mu.Lock()
	running := w.started && !w.stopped
	w.mu.Unlock()

	return WatcherStats{
		PendingConversions: pending,
		IsRunning:          running,
	}
}

// WatcherStats contains watcher statistics.
type WatcherStats struct {
	PendingConversions int
	IsRunning          bool
}
