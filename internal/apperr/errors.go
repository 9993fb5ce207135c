// Package apperr defines the error kinds shared by every layer of txtshelf.
package apperr

import "errors"

var (
	ErrInvalidName   = errors.New("invalid filename")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrAccessDenied  = errors.New("access denied")
	ErrInternal      = errors.New("internal error")
)
