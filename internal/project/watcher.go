package project

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReindexFunc performs the actual read-and-analyze work for one file and
// stores its result in a ProjectIndex (typically internal/compiler.Analyze
// followed by ProjectIndex.IndexFile). It is supplied by the caller so
// this package stays free of a dependency on the reader/macro/lower
// pipeline.
type ReindexFunc func(filePath string)

// RemoveFunc drops a file's record, typically ProjectIndex.RemoveFile.
type RemoveFunc func(filePath string)

// InvalidateFunc is called alongside a reindex/remove so a resolver's
// cached existence probes for filePath don't serve stale answers (wired to
// internal/resolver.Resolver.Invalidate).
type InvalidateFunc func(filePath string)

// WatchOptions configures Watcher, grounded on
// gnana997-uispec/pkg/indexer.WatchOptions.
type WatchOptions struct {
	DebounceMs     int
	IgnorePatterns []string
}

func DefaultWatchOptions() WatchOptions {
	return WatchOptions{DebounceMs: 200}
}

// Watcher debounces fsnotify events per path and calls Reindex/Remove once
// the debounce window elapses, so rapid edits coalesce into one re-index
// (§5: "document parsing and analysis are debounced per document"). The
// debounce-timer bookkeeping is adapted directly from
// gnana997-uispec/pkg/indexer/watcher.go's FileWatcher.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	options   WatchOptions
	logger    *slog.Logger

	reindex    ReindexFunc
	remove     RemoveFunc
	invalidate InvalidateFunc

	debounceMu     sync.Mutex
	debounceTimers map[string]*time.Timer

	stopOnce sync.Once
	stopChan chan struct{}
}

func NewWatcher(options WatchOptions, reindex ReindexFunc, remove RemoveFunc, invalidate InvalidateFunc, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if options.DebounceMs == 0 {
		options.DebounceMs = 200
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		fsWatcher:      fsWatcher,
		options:        options,
		logger:         logger,
		reindex:        reindex,
		remove:         remove,
		invalidate:     invalidate,
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start watches rootPath and every subdirectory not matched by
// options.IgnorePatterns, then begins the background event loop.
func (w *Watcher) Start(rootPath string) error {
	if err := w.fsWatcher.Add(rootPath); err != nil {
		return err
	}
	err := filepath.WalkDir(rootPath, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldIgnore(walkPath) {
			return filepath.SkipDir
		}
		if addErr := w.fsWatcher.Add(walkPath); addErr != nil {
			w.logger.Warn("failed to watch directory", "path", walkPath, "error", addErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	go w.eventLoop()
	return nil
}

func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.debounceMu.Lock()
		for _, timer := range w.debounceTimers {
			timer.Stop()
		}
		w.debounceTimers = make(map[string]*time.Timer)
		w.debounceMu.Unlock()
	})
	return w.fsWatcher.Close()
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.shouldIgnore(event.Name) {
		return
	}
	if filepath.Ext(event.Name) != ".hql" {
		return
	}

	switch {
	case event.Op&fsnotify.Write == fsnotify.Write, event.Op&fsnotify.Create == fsnotify.Create:
		w.invalidate(event.Name)
		w.debounceReindex(event.Name)
	case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
		w.invalidate(event.Name)
		w.cancelPendingReindex(event.Name)
		w.remove(event.Name)
	}
}

func (w *Watcher) debounceReindex(filePath string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[filePath]; exists {
		timer.Stop()
	}
	w.debounceTimers[filePath] = time.AfterFunc(time.Duration(w.options.DebounceMs)*time.Millisecond, func() {
		w.reindex(filePath)
		w.debounceMu.Lock()
		delete(w.debounceTimers, filePath)
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) cancelPendingReindex(filePath string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if timer, exists := w.debounceTimers[filePath]; exists {
		timer.Stop()
		delete(w.debounceTimers, filePath)
	}
}

func (w *Watcher) shouldIgnore(p string) bool {
	base := filepath.Base(p)
	switch base {
	case "node_modules", ".git", "dist", "build":
		return true
	}
	for _, pattern := range w.options.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
