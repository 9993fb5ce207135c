package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/txtshelf/internal/checksum"
	"github.com/starford/txtshelf/internal/filename"
	"github.com/starford/txtshelf/internal/storage"
)

const reconcileDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, name string)

// Watch starts an fsnotify watcher on the data directory and keeps the index
// in step with changes made outside the application until ctx is cancelled.
// cb (if non-nil) is only called when the index actually changed, so edits
// already indexed by the file service do not produce duplicate events.
//
// Rename events trigger a debounced reconciliation pass that removes stale
// entries and picks up the new name.
func Watch(ctx context.Context, db *DB, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	notify := func(kind, name string) {
		if cb != nil {
			cb(kind, name)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			name := filepath.Base(ev.Name)
			if !filename.IsCanonical(name) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind, changed := indexIfChanged(db, store, name, logger)
				if !changed {
					continue
				}
				logger.Debug("watcher: indexed", slog.String("name", name), slog.String("op", kind))
				notify(kind, name)

			case ev.Op&fsnotify.Remove != 0:
				removed, delErr := db.DeleteFile(name)
				if delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("name", name), slog.String("error", delErr.Error()))
					continue
				}
				if removed {
					logger.Debug("watcher: deleted", slog.String("name", name))
					notify("deleted", name)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports Rename on the old name only; the new
				// name arrives as Create if it stays in the directory.
				removed, delErr := db.DeleteFile(name)
				if delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("name", name), slog.String("error", delErr.Error()))
				} else if removed {
					notify("deleted", name)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// indexIfChanged reads name from disk and upserts it when its checksum
// differs from the indexed one.
func indexIfChanged(db *DB, store storage.Provider, name string, logger *slog.Logger) (string, bool) {
	data, err := store.Read(name)
	if err != nil {
		logger.Debug("watcher: read failed", slog.String("name", name), slog.String("error", err.Error()))
		return "", false
	}
	indexed, err := db.GetChecksum(name)
	if err != nil {
		logger.Warn("watcher: checksum lookup failed", slog.String("name", name), slog.String("error", err.Error()))
		return "", false
	}
	if indexed == checksum.Sum(data) {
		return "", false
	}
	if err := db.IndexContent(name, data, time.Now()); err != nil {
		logger.Warn("watcher: index failed", slog.String("name", name), slog.String("error", err.Error()))
		return "", false
	}
	if indexed == "" {
		return "created", true
	}
	return "updated", true
}

// reconcile removes index entries without a file on disk and indexes
// on-disk files that are missing or stale.
func reconcile(db *DB, store storage.Provider, logger *slog.Logger, notify EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	names, err := store.List()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]struct{}, len(names))
	for _, name := range names {
		disk[name] = struct{}{}
	}

	for name := range checksums {
		if _, ok := disk[name]; ok {
			continue
		}
		if removed, delErr := db.DeleteFile(name); delErr == nil && removed {
			logger.Debug("reconcile: removed stale", slog.String("name", name))
			notify("deleted", name)
		}
	}

	for name := range disk {
		if kind, changed := indexIfChanged(db, store, name, logger); changed {
			logger.Debug("reconcile: indexed", slog.String("name", name))
			notify(kind, name)
		}
	}
}
