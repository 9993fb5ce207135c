package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/txtshelf/internal/checksum"
	"github.com/starford/txtshelf/internal/parser"
)

// FileRow represents a row in the files table.
type FileRow struct {
	Name      string
	Title     string
	Checksum  string
	Size      int64
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// IndexContent parses data and upserts it under name.
func (db *DB) IndexContent(name string, data []byte, updatedAt time.Time) error {
	res := parser.Parse(data)
	return db.UpsertFile(FileRow{
		Name:      name,
		Title:     res.Title,
		Checksum:  checksum.Sum(data),
		Size:      int64(len(data)),
		UpdatedAt: updatedAt,
	}, res.Body)
}

// UpsertFile inserts or replaces a file row and its FTS entry within a transaction.
func (db *DB) UpsertFile(f FileRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO files (name, title, checksum, body, size, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			body       = excluded.body,
			size       = excluded.size,
			updated_at = excluded.updated_at
	`, f.Name, f.Title, f.Checksum, body, f.Size, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, f.Name, f.Title, body); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteFile removes a file and its FTS entry. It reports whether a row existed.
func (db *DB) DeleteFile(name string) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, name)
	res, err := tx.Exec(`DELETE FROM files WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("index: delete file: %w", err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("index: commit: %w", err)
	}
	return n > 0, nil
}

// GetChecksum returns the stored checksum for a file, or empty string if not indexed.
func (db *DB) GetChecksum(name string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE name = ?`, name).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns name -> checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT name, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, cs string
		if err := rows.Scan(&name, &cs); err != nil {
			return nil, err
		}
		out[name] = cs
	}
	return out, rows.Err()
}
