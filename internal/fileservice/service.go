// Package fileservice coordinates filename validation, the file repository,
// the search index and change events for every user-facing operation.
package fileservice

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/starford/txtshelf/internal/apperr"
	"github.com/starford/txtshelf/internal/filename"
	"github.com/starford/txtshelf/internal/index"
	"github.com/starford/txtshelf/internal/models"
	"github.com/starford/txtshelf/internal/storage"
)

// Publisher receives an event after each successful mutation.
type Publisher interface {
	PublishFileEvent(ev models.Event)
}

// Service is shared by the web UI, the JSON API and the MCP server.
//
// The repository is authoritative. Index failures are logged and never fail
// an operation whose filesystem step succeeded; the next Sync repairs them.
type Service struct {
	store  storage.Provider
	idx    index.FileIndex
	events Publisher
	logger *slog.Logger
}

// NewService creates a file service. idx and events may be nil.
func NewService(store storage.Provider, idx index.FileIndex, events Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, idx: idx, events: events, logger: logger}
}

// List returns metadata for every stored file, sorted by name. Files that
// disappear between listing and stat are skipped.
func (s *Service) List(_ context.Context) ([]models.FileInfo, error) {
	names, err := s.store.List()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]models.FileInfo, 0, len(names))
	for _, name := range names {
		info, err := s.store.Stat(name)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// Get returns a file with its content.
func (s *Service) Get(_ context.Context, name string) (*models.File, error) {
	return s.store.Load(name)
}

// Create validates rawName, stores content under the canonical name and
// indexes it. rawName is the token without the .txt extension.
func (s *Service) Create(_ context.Context, rawName string, content []byte) (*models.FileInfo, error) {
	name, err := filename.Validate(rawName)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(name, content); err != nil {
		return nil, err
	}
	s.index(name, content)
	s.publish(models.Event{Kind: "created", Name: name})

	info, err := s.store.Stat(name)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Delete removes a stored file.
func (s *Service) Delete(_ context.Context, name string) error {
	if err := s.store.Delete(name); err != nil {
		return err
	}
	s.unindex(name)
	s.publish(models.Event{Kind: "deleted", Name: name})
	return nil
}

// Rename validates rawNewName and moves oldName to the canonical new name.
// Content is untouched.
func (s *Service) Rename(_ context.Context, oldName, rawNewName string) (*models.FileInfo, error) {
	newName, err := filename.Validate(rawNewName)
	if err != nil {
		return nil, err
	}
	if err := s.store.Rename(oldName, newName); err != nil {
		return nil, err
	}

	s.unindex(oldName)
	if data, readErr := s.store.Read(newName); readErr == nil {
		s.index(newName, data)
	}
	s.publish(models.Event{Kind: "renamed", Name: newName, OldName: oldName})

	info, err := s.store.Stat(newName)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Open returns a download stream for name. The caller must drain or close it.
func (s *Service) Open(_ context.Context, name string) (*storage.Stream, error) {
	return s.store.Open(name)
}

// Search runs a full-text query against the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.idx == nil {
		return []index.SearchResult{}, nil
	}
	results, err := s.idx.Search(query, limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	return results, nil
}

func (s *Service) index(name string, data []byte) {
	if s.idx == nil {
		return
	}
	if err := s.idx.IndexContent(name, data, time.Now()); err != nil {
		s.logger.Warn("fileservice: index failed", slog.String("name", name), slog.String("error", err.Error()))
	}
}

func (s *Service) unindex(name string) {
	if s.idx == nil {
		return
	}
	if _, err := s.idx.DeleteFile(name); err != nil {
		s.logger.Warn("fileservice: unindex failed", slog.String("name", name), slog.String("error", err.Error()))
	}
}

func (s *Service) publish(ev models.Event) {
	if s.events != nil {
		s.events.PublishFileEvent(ev)
	}
}
