package storage

import (
	"io"
	"os"
	"time"
)

// Stream is a single-pass reader over a stored file. The underlying file is
// closed as soon as a Read returns an error (io.EOF included); Close may be
// called any number of times.
type Stream struct {
	Name    string
	Size    int64
	ModTime time.Time

	file *os.File
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if s.file == nil {
		return 0, io.EOF
	}
	n, err := s.file.Read(p)
	if err != nil {
		_ = s.Close()
	}
	return n, err
}

// Close releases the file handle.
func (s *Stream) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Closed reports whether the underlying file has been released.
func (s *Stream) Closed() bool {
	return s.file == nil
}
