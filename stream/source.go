package stream

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// ByteSource is a pull-based chunked byte source. ReadNext returns the next
// chunk of at most maxBytes bytes, or io.EOF once the source is exhausted.
// ReadNext may block; implementations should honor context cancellation where
// their backing medium allows it.
type ByteSource interface {
	ReadNext(maxBytes int) ([]byte, error)
	Close() error
}

// FileSource reads chunks from a file on disk.
type FileSource struct {
	file *os.File
}

// OpenFile opens a file-backed byte source.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open stream source %s", path)
	}
	return &FileSource{file: f}, nil
}

// ReadNext returns the next chunk from the file.
func (s *FileSource) ReadNext(maxBytes int) ([]byte, error) {
	buf := make([]byte, maxBytes)
	n, err := s.file.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == io.EOF {
		return nil, io.EOF
	}
	return nil, errors.Wrap(err, "read stream chunk")
}

// Close closes the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}

// MemorySource serves chunks from an in-memory buffer. Useful for tests and
// for replaying received payloads.
type MemorySource struct {
	data   []byte
	offset int
}

// NewMemorySource creates a source over data.
func NewMemorySource(data []byte) *MemorySource {
	return &MemorySource{data: data}
}

// ReadNext returns the next chunk.
func (s *MemorySource) ReadNext(maxBytes int) ([]byte, error) {
	if s.offset >= len(s.data) {
		return nil, io.EOF
	}
	end := s.offset + maxBytes
	if end > len(s.data) {
		end = len(s.data)
	}
	chunk := s.data[s.offset:end]
	s.offset = end
	return chunk, nil
}

// Close is a no-op for memory sources.
func (s *MemorySource) Close() error {
	return nil
}
