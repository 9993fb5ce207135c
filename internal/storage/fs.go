package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/starford/txtshelf/internal/apperr"
	"github.com/starford/txtshelf/internal/checksum"
	"github.com/starford/txtshelf/internal/filename"
	"github.com/starford/txtshelf/internal/models"
)

const tmpPattern = ".txtshelf-tmp-*"

// FS implements Provider backed by one flat directory on the local disk.
type FS struct {
	root string // absolute path to the data directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory does not have to exist yet; if it does, it must be a directory.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if err == nil && !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute path of the data directory.
func (f *FS) Root() string {
	return f.root
}

// EnsureRoot creates the data directory if it is missing.
func (f *FS) EnsureRoot() error {
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir root: %w", err)
	}
	return nil
}

// resolve maps a stored filename to its absolute path. Names that can never
// be stored files, including anything with a path separator, do not exist.
func (f *FS) resolve(op, name string) (string, error) {
	if !filename.IsCanonical(name) {
		return "", notFound(op, name)
	}
	return filepath.Join(f.root, name), nil
}

// List returns the names of the stored files in directory order.
func (f *FS) List() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fail("list", f.root, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !filename.IsCanonical(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// openRegular opens a stored file for reading. Only a regular file directly
// in the root counts: a symlink or anything else under a stored name does
// not exist, and the opened file must be the one Lstat saw.
func (f *FS) openRegular(op, name string) (*os.File, fs.FileInfo, error) {
	abs, err := f.resolve(op, name)
	if err != nil {
		return nil, nil, err
	}
	linfo, err := os.Lstat(abs)
	if err != nil {
		return nil, nil, fail(op, name, err)
	}
	if !linfo.Mode().IsRegular() {
		return nil, nil, notFound(op, name)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, nil, fail(op, name, err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, fail(op, name, err)
	}
	if !os.SameFile(linfo, info) {
		_ = file.Close()
		return nil, nil, notFound(op, name)
	}
	return file, info, nil
}

// readRegular reads a stored file in one pass and describes exactly the
// bytes it read.
func (f *FS) readRegular(op, name string) (models.FileInfo, []byte, error) {
	file, info, err := f.openRegular(op, name)
	if err != nil {
		return models.FileInfo{}, nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.FileInfo{}, nil, fail(op, name, err)
	}
	return models.FileInfo{
		Name:      name,
		Size:      int64(len(data)),
		Checksum:  checksum.Sum(data),
		UpdatedAt: info.ModTime(),
	}, data, nil
}

// Stat returns size, modification time and checksum of a stored file.
func (f *FS) Stat(name string) (models.FileInfo, error) {
	info, _, err := f.readRegular("stat", name)
	return info, err
}

// Read returns the raw bytes of a stored file.
func (f *FS) Read(name string) ([]byte, error) {
	_, data, err := f.readRegular("read", name)
	return data, err
}

// Load returns a stored file with its content. Metadata and checksum come
// from the same read as the content.
func (f *FS) Load(name string) (*models.File, error) {
	info, data, err := f.readRegular("read", name)
	if err != nil {
		return nil, err
	}
	return &models.File{FileInfo: info, Content: string(data)}, nil
}

// Create writes content under name, never replacing an existing file.
// The content goes to a temp file first (write, fsync, close) which is then
// hard-linked to its final name, so the file appears complete or not at all
// and the link fails with EEXIST if name was taken in the meantime.
func (f *FS) Create(name string, content []byte) error {
	abs, err := f.resolve("create", name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return fail("create", name, err)
	}

	tmp, err := os.CreateTemp(f.root, tmpPattern)
	if err != nil {
		return fail("create", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fail("create", name, err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("create", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fail("create", name, err)
	}

	err = os.Link(tmpName, abs)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrExist):
		return fail("create", name, err)
	default:
		// No hard links on this filesystem.
		return f.createExclusive(abs, name, content)
	}
}

func (f *FS) createExclusive(abs, name string, content []byte) error {
	file, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fail("create", name, err)
	}
	if _, err := file.Write(content); err != nil {
		_ = file.Close()
		_ = os.Remove(abs)
		return fail("create", name, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(abs)
		return fail("create", name, err)
	}
	return nil
}

// Delete removes a stored file. Existence is checked with Lstat first so a
// missing file is reported as not found regardless of what unlink returns.
func (f *FS) Delete(name string) error {
	abs, err := f.resolve("delete", name)
	if err != nil {
		return err
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return fail("delete", name, err)
	}
	if !info.Mode().IsRegular() {
		return notFound("delete", name)
	}
	if err := os.Remove(abs); err != nil {
		return fail("delete", name, err)
	}
	return nil
}

// Rename gives a stored file a new name. The destination is never
// overwritten: the file is hard-linked to newName (EEXIST if taken) and
// the old link removed afterwards.
func (f *FS) Rename(oldName, newName string) error {
	absOld, err := f.resolve("rename", oldName)
	if err != nil {
		return err
	}
	absNew, err := f.resolve("rename", newName)
	if err != nil {
		return &Error{Op: "rename", Name: newName, Kind: apperr.ErrInternal, Err: errors.New("target is not a valid filename")}
	}

	info, err := os.Lstat(absOld)
	if err != nil {
		return fail("rename", oldName, err)
	}
	if !info.Mode().IsRegular() {
		return notFound("rename", oldName)
	}

	err = os.Link(absOld, absNew)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrExist):
		return fail("rename", newName, err)
	case errors.Is(err, fs.ErrNotExist):
		return fail("rename", oldName, err)
	default:
		return f.renameNoLink(absOld, absNew, oldName, newName)
	}

	if err := os.Remove(absOld); err != nil {
		_ = os.Remove(absNew)
		return fail("rename", oldName, err)
	}
	return nil
}

// renameNoLink is the check-then-rename path for filesystems without hard
// links. It can race with a concurrent create of newName.
func (f *FS) renameNoLink(absOld, absNew, oldName, newName string) error {
	if _, err := os.Lstat(absNew); err == nil {
		return &Error{Op: "rename", Name: newName, Kind: apperr.ErrAlreadyExists}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fail("rename", newName, err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fail("rename", oldName, err)
	}
	return nil
}

// Open returns a stream over a stored file's content. The stream closes the
// file once it is drained.
func (f *FS) Open(name string) (*Stream, error) {
	file, info, err := f.openRegular("open", name)
	if err != nil {
		return nil, err
	}
	return &Stream{
		Name:    name,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		file:    file,
	}, nil
}
