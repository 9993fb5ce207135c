package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"github.com/starford/txtshelf/internal/apperr"
)

// Error is returned by every FS operation. Kind is one of the apperr
// sentinels; Err is the underlying OS error, if any.
type Error struct {
	Op   string
	Name string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Name, e.Kind)
	}
	return fmt.Sprintf("storage: %s %s: %v: %v", e.Op, e.Name, e.Kind, e.Err)
}

// Unwrap lets errors.Is match both the kind and the OS cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// classify maps an OS error onto the apperr kinds. ENOTDIR is reported as
// not found: depending on the platform it means either the file or one of its
// parents is missing.
func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return apperr.ErrNotFound
	case errors.Is(err, fs.ErrExist):
		return apperr.ErrAlreadyExists
	case errors.Is(err, fs.ErrPermission):
		return apperr.ErrAccessDenied
	default:
		return apperr.ErrInternal
	}
}

func fail(op, name string, err error) error {
	return &Error{Op: op, Name: name, Kind: classify(err), Err: err}
}

func notFound(op, name string) error {
	return &Error{Op: op, Name: name, Kind: apperr.ErrNotFound}
}
