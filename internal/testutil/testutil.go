// Package testutil provides shared test helpers for setting up data
// directories, databases and file services.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/txtshelf/internal/fileservice"
	"github.com/starford/txtshelf/internal/index"
	"github.com/starford/txtshelf/internal/models"
	"github.com/starford/txtshelf/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "txtshelf-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestShelf creates a temporary data directory with a storage.Provider.
func TestShelf(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dataDir := t.TempDir()
	store, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	return dataDir, store
}

// WriteFile places a file directly in dir, bypassing the service.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// QuietLogger discards everything below error level.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Events records published file events.
type Events struct {
	mu     sync.Mutex
	events []models.Event
}

// PublishFileEvent implements fileservice.Publisher.
func (e *Events) PublishFileEvent(ev models.Event) {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
}

// All returns a copy of the recorded events.
func (e *Events) All() []models.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Event(nil), e.events...)
}

// TestService wires a file service over a fresh data directory and index.
func TestService(t *testing.T) (string, *fileservice.Service, *Events) {
	t.Helper()
	dataDir, store := TestShelf(t)
	events := &Events{}
	return dataDir, fileservice.NewService(store, TestDB(t), events, QuietLogger()), events
}
