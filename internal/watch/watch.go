// Package watch reloads the snapshot store when its source changes on disk.
//
// The watcher:
// 1. Performs an initial load through the configured Loader
// 2. Watches the loader's source (a requirements directory or a plan file)
// 3. Debounces bursts of file events into one reload
// 4. Handles graceful shutdown
//
// A failed reload keeps the store on its last good state; the external
// planning store writing files one at a time must never leave clients staring
// at a half-loaded graph.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gsdkit/reqgraph/internal/store"
)

// Config holds configuration for the watcher.
type Config struct {
	// Debounce is how long to wait before processing file changes.
	// This batches rapid updates together.
	Debounce time.Duration

	// Logger for watcher activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Debounce: 100 * time.Millisecond,
		Logger:   log.New(os.Stderr, "[watch] ", log.LstdFlags),
	}
}

// Watcher connects a Loader to a Store: file events on the loader's source
// trigger a reload, and a successful reload replaces the store's snapshot.
type Watcher struct {
	loader store.Loader
	store  *store.Store
	config *Config

	watcher *fsnotify.Watcher

	// watchDir is the directory registered with fsnotify. When the source
	// is a single plan file, watchFile holds its base name and events for
	// other files in the directory are ignored. Watching the parent
	// directory instead of the file itself keeps the watch alive across
	// editors that save by rename.
	watchDir  string
	watchFile string

	changeQueue   map[string]time.Time // filepath -> timestamp
	changeQueueMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Watcher with default configuration.
func New(loader store.Loader, st *store.Store) (*Watcher, error) {
	return NewWithConfig(loader, st, DefaultConfig())
}

// NewWithConfig creates a Watcher with custom configuration.
func NewWithConfig(loader store.Loader, st *store.Store, config *Config) (*Watcher, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[watch] ", log.LstdFlags)
	}
	if config.Debounce <= 0 {
		config.Debounce = 100 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		loader:      loader,
		store:       st,
		config:      config,
		watcher:     fsw,
		changeQueue: make(map[string]time.Time),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start begins watching.
//
// The watcher will:
// 1. Perform an initial load into the store
// 2. Watch the source for file changes
// 3. Reload with debouncing as changes arrive
//
// This blocks until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.config.Logger.Println("Starting watcher")

	source := w.loader.Source()
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", source, err)
	}
	if info.IsDir() {
		w.watchDir = source
	} else {
		w.watchDir = filepath.Dir(source)
		w.watchFile = filepath.Base(source)
	}

	// Initial load. A broken source at startup is an error; after startup
	// it only logs and keeps the previous state.
	if err := w.Reload(); err != nil {
		return fmt.Errorf("initial load failed: %w", err)
	}

	if err := w.watcher.Add(w.watchDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.watchDir, err)
	}
	w.config.Logger.Printf("Watching: %s", source)

	w.wg.Add(2)
	go w.watchFileEvents()
	go w.processChangeQueue()

	select {
	case <-ctx.Done():
		w.config.Logger.Println("Shutdown signal received")
		return w.Stop()
	case <-w.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the watcher.
func (w *Watcher) Stop() error {
	w.config.Logger.Println("Stopping watcher")

	w.cancel()

	if err := w.watcher.Close(); err != nil {
		w.config.Logger.Printf("Error closing watcher: %v", err)
	}

	w.wg.Wait()

	w.config.Logger.Println("Watcher stopped")
	return nil
}

// Reload loads the source and replaces the store's snapshot. On error the
// store keeps its current state.
func (w *Watcher) Reload() error {
	snap, err := w.loader.Load()
	if err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}

	state := w.store.Replace(snap)
	w.config.Logger.Printf("Loaded %d requirements (generation %d, valid=%t)",
		state.Stats.Total, state.Generation, state.Validation.Valid)
	return nil
}

// watchFileEvents monitors filesystem events and queues changes.
func (w *Watcher) watchFileEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}

			w.config.Logger.Printf("File event: %s %s", event.Op, event.Name)
			w.queueChange(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// relevant reports whether a changed path affects the snapshot source.
func (w *Watcher) relevant(path string) bool {
	if w.watchFile != "" {
		return filepath.Base(path) == w.watchFile
	}
	return filepath.Ext(path) == ".json"
}

// queueChange adds a file to the change queue with debouncing.
func (w *Watcher) queueChange(path string) {
	w.changeQueueMu.Lock()
	defer w.changeQueueMu.Unlock()

	w.changeQueue[path] = time.Now()
}

// processChangeQueue processes queued file changes with debouncing.
func (w *Watcher) processChangeQueue() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.processPendingChanges()
		}
	}
}

// processPendingChanges reloads once if any queued change has settled for a
// full debounce interval. One reload covers every pending path because the
// loader always reads the whole source.
func (w *Watcher) processPendingChanges() {
	w.changeQueueMu.Lock()
	now := time.Now()
	settled := false
	for path, queuedAt := range w.changeQueue {
		if now.Sub(queuedAt) < w.config.Debounce {
			continue
		}
		delete(w.changeQueue, path)
		settled = true
	}
	w.changeQueueMu.Unlock()

	if !settled {
		return
	}

	if err := w.Reload(); err != nil {
		w.config.Logger.Printf("Warning: %v (keeping last good state)", err)
	}
}
