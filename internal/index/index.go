package index

import "time"

// FileIndex defines the index operations used by the service and MCP layers.
type FileIndex interface {
	IndexContent(name string, data []byte, updatedAt time.Time) error
	DeleteFile(name string) (bool, error)
	GetChecksum(name string) (string, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies FileIndex at compile time.
var _ FileIndex = (*DB)(nil)
