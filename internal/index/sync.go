package index

import (
	"log/slog"

	"github.com/starford/txtshelf/internal/storage"
)

// Sync walks the data directory and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	names, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(names))
	for _, name := range names {
		disk[name] = struct{}{}

		info, err := store.Stat(name)
		if err != nil {
			logger.Warn("sync: stat failed", slog.String("name", name), slog.String("error", err.Error()))
			continue
		}
		if checksums[name] == info.Checksum {
			continue
		}

		data, err := store.Read(name)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("name", name), slog.String("error", err.Error()))
			continue
		}
		if err := db.IndexContent(name, data, info.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("name", name), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("name", name))
		}
	}

	// Remove stale entries.
	for name := range checksums {
		if _, ok := disk[name]; ok {
			continue
		}
		if _, err := db.DeleteFile(name); err != nil {
			logger.Warn("sync: delete failed", slog.String("name", name), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("name", name))
		}
	}

	return nil
}
