// Package images turns picked photos into the URIs stored on image
// records: the picker's cache URI, a durable local copy and an optional
// public URL.
package images

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage keeps local copies of picked images under one directory.
// Files are named by the SHA-256 of their content, so saving the same
// photo twice yields the same path.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates the directory if needed.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// Save copies r into storage and returns the stored file's path.
// ext is the file extension to keep, with or without the leading dot.
func (s *Storage) Save(r io.Reader, ext string) (string, error) {
	tmp, err := os.CreateTemp(s.basePath, ".incoming-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Gone after a successful rename

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("copy image: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}

	name := hex.EncodeToString(h.Sum(nil)) + normalizeExt(ext)

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return path, nil
}

// Exists reports whether a stored file with name exists.
func (s *Storage) Exists(name string) bool {
	if name == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Delete removes a stored file. Deleting a missing file is not an error.
func (s *Storage) Delete(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Path returns the full filesystem path for a stored file name.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.basePath, filepath.Base(name))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return ".jpg"
	}
	return "." + ext
}
