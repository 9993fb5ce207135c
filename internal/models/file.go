// Package models defines the domain types for txtshelf.
package models

import "time"

// FileInfo describes a stored text file without its content.
type FileInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// File is a stored text file together with its content.
type File struct {
	FileInfo
	Content string `json:"content"`
}

// Event is a change notification emitted after a mutation of the data directory.
type Event struct {
	Kind    string `json:"kind"` // "created", "updated", "deleted" or "renamed"
	Name    string `json:"name"`
	OldName string `json:"old_name,omitempty"`
}
