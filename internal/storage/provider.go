// Package storage implements the file repository: every filesystem
// operation on the data directory goes through here.
package storage

import "github.com/starford/txtshelf/internal/models"

// Provider is the interface for data directory operations. Names are
// canonical filenames such as "notes.txt". Only regular files are stored
// files; a symlink under a stored name is reported as not found by every
// operation.
type Provider interface {
	// List returns the names of all stored files. A missing data directory
	// yields an empty list.
	List() ([]string, error)
	// Stat returns metadata for one file.
	Stat(name string) (models.FileInfo, error)
	// Read returns the full content of a file.
	Read(name string) ([]byte, error)
	// Load returns metadata and content from a single read of a file.
	Load(name string) (*models.File, error)
	// Create writes a new file and fails if name is already taken.
	Create(name string, content []byte) error
	// Delete removes a file.
	Delete(name string) error
	// Rename moves oldName to newName without overwriting newName.
	Rename(oldName, newName string) error
	// Open returns a single-pass stream of the file content.
	Open(name string) (*Stream, error)
}
