// Package filename decides which user-supplied names are legal and maps them
// to the canonical on-disk filename.
package filename

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/txtshelf/internal/apperr"
)

// Ext is the extension appended to every stored file.
const Ext = ".txt"

var (
	tokenRe     = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	canonicalRe = regexp.MustCompile(`^[A-Za-z0-9_-]+\.txt$`)
)

// Kind tells why a name was rejected.
type Kind int

// Validation error kinds.
const (
	EmptyName Kind = iota + 1
	IllegalCharacters
)

func (k Kind) String() string {
	switch k {
	case EmptyName:
		return "empty name"
	case IllegalCharacters:
		return "illegal characters"
	default:
		return "unknown"
	}
}

// ValidationError is returned by Validate. It unwraps to apperr.ErrInvalidName.
type ValidationError struct {
	Kind Kind
	Name string
	Msg  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("filename %q: %s", e.Name, e.Msg)
}

func (e *ValidationError) Unwrap() error { return apperr.ErrInvalidName }

var (
	requiredRule = validation.Required.Error("filename is required")
	tokenRule    = validation.Match(tokenRe).
			Error("only alphanumeric, underscore, and hyphen are allowed")
)

// Validate checks a raw user-supplied name and returns the canonical
// filename (raw + ".txt").
func Validate(raw string) (string, error) {
	if err := validation.Validate(raw, requiredRule); err != nil {
		return "", &ValidationError{Kind: EmptyName, Name: raw, Msg: err.Error()}
	}
	if err := validation.Validate(raw, tokenRule); err != nil {
		return "", &ValidationError{Kind: IllegalCharacters, Name: raw, Msg: err.Error()}
	}
	return raw + Ext, nil
}

// IsCanonical reports whether name is a legal stored filename.
func IsCanonical(name string) bool {
	return canonicalRe.MatchString(name)
}

// Token strips the extension from a canonical name. It is the inverse of
// Validate for legal names and returns name unchanged otherwise.
func Token(name string) string {
	if !IsCanonical(name) {
		return name
	}
	return strings.TrimSuffix(name, Ext)
}
