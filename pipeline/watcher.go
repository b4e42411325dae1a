package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// eventChannelBuffer is the size of the changed-table channel.
	eventChannelBuffer = 100

	// DefaultDebounce is used when no debounce delay is configured.
	DefaultDebounce = 500 * time.Millisecond
)

// ErrNothingToWatch is returned when none of the watch roots exists.
var ErrNothingToWatch = errors.New("no input directory to watch")

// Watcher reports input tables whose content changed.
type Watcher struct {
	patterns []string
	roots    []string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	// Debouncing: collect changes before reporting
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// Hash-based change detection
	hashMu sync.Mutex
	hashes map[string]string

	events chan string

	droppedEvents atomic.Int64
}

// NewWatcher creates a watcher for the tables selected by the input patterns.
func NewWatcher(patterns []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		patterns: patterns,
		roots:    WatchRoots(patterns),
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		events:   make(chan string, eventChannelBuffer),
	}, nil
}

// Events returns the channel of changed table paths. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// DroppedEvents returns the number of changes dropped on a full channel.
func (w *Watcher) DroppedEvents() int64 {
	return w.droppedEvents.Load()
}

// Start adds watches under every root and begins processing events.
func (w *Watcher) Start(ctx context.Context) error {
	watched := 0
	for _, root := range w.roots {
		if !isDir(root) {
			w.logger.Warn("Watch root is not a directory", "path", root)
			continue
		}
		if err := w.addWatchesRecursive(root); err != nil {
			return err
		}
		watched++
	}
	if watched == 0 {
		return ErrNothingToWatch
	}

	go w.processEvents(ctx)

	w.logger.Info("Input watcher started",
		"roots", w.roots,
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher.
// The events channel is closed by processEvents when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Seed records the current content of path so that an unchanged file is not
// reported after the initial conversion.
func (w *Watcher) Seed(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}
	w.hashMu.Lock()
	w.hashes[filepath.Clean(path)] = contentHash(content)
	w.hashMu.Unlock()
}

// addWatchesRecursive adds watches to root and every non-hidden directory below it.
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		if path != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// handleFSEvent records a change to a selected table.
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Create) && isDir(path) {
		if !strings.HasPrefix(filepath.Base(path), ".") {
			if err := w.addWatchesRecursive(path); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
			}
		}
		return
	}

	if !MatchInput(path, w.patterns) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Table change detected", "path", path, "op", event.Op.String())
}

// flushPending reports the accumulated changes.
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range toProcess {
		select {
		case <-ctx.Done():
			return
		default:
		}

		content, err := os.ReadFile(path)
		if err != nil {
			// Removed or renamed away; forget it so a re-created file is reported.
			w.hashMu.Lock()
			delete(w.hashes, path)
			w.hashMu.Unlock()
			if !op.Has(fsnotify.Remove) && !op.Has(fsnotify.Rename) {
				w.logger.Warn("Failed to read changed table", "path", path, "error", err)
			}
			continue
		}

		hash := contentHash(content)
		w.hashMu.Lock()
		old, seen := w.hashes[path]
		w.hashes[path] = hash
		w.hashMu.Unlock()
		if seen && old == hash {
			continue
		}

		w.send(path)
	}
}

// send reports a changed table without blocking.
func (w *Watcher) send(path string) {
	select {
	case w.events <- path:
		w.logger.Debug("Sent table change", "path", path)
	default:
		w.droppedEvents.Add(1)
		w.logger.Warn("Change channel full, dropping event",
			"path", path,
			"total_dropped", w.droppedEvents.Load())
	}
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
