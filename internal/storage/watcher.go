package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lehigh-university-libraries/portal/internal/models"
)

// ReloadFunc receives a freshly loaded catalog
type ReloadFunc func(books []models.Book) error

// Watcher reloads a catalog file whenever it changes on disk
type Watcher struct {
	path     string
	onReload ReloadFunc
	debounce time.Duration
}

func NewWatcher(path string, onReload ReloadFunc, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{
		path:     filepath.Clean(path),
		onReload: onReload,
		debounce: debounce,
	}
}

// Run blocks until ctx is done. The parent directory is watched so that
// editors which replace the file on save are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	slog.Info("Watching catalog file", "path", w.path)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Catalog watcher error", "err", err)
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	books, err := Load(w.path)
	if err != nil {
		slog.Error("Failed to reload catalog", "path", w.path, "err", err)
		return
	}
	if err := w.onReload(books); err != nil {
		slog.Error("Rejected reloaded catalog", "path", w.path, "err", err)
		return
	}
	slog.Info("Catalog reloaded", "path", w.path, "books", len(books))
}
