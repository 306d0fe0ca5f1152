package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a stored blob no longer exists on disk.
var ErrNotFound = errors.New("storage: blob not found")

// Store writes uploaded blobs to a directory tree keyed by random IDs. Paths
// handed back to callers are always relative to the root so the root can move
// between deployments.
type Store struct {
	root string
}

// NewStore prepares the storage root, creating it if needed.
func NewStore(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &Store{root: root}, nil
}

// Save streams the reader to a new blob and returns its relative path and
// byte count. Blobs are sharded by the first two characters of their ID to
// keep directories small.
func (s *Store) Save(r io.Reader) (string, int64, error) {
	id := uuid.NewString()
	rel := filepath.Join(id[:2], id)

	dir := filepath.Join(s.root, id[:2])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: create shard dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(s.root, rel), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("storage: create blob: %w", err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.root, rel))
		return "", 0, fmt.Errorf("storage: write blob: %w", err)
	}
	return rel, size, nil
}

// Open returns a reader over the stored blob. The caller closes it.
func (s *Store) Open(rel string) (io.ReadCloser, error) {
	path, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: open blob: %w", err)
	}
	return f, nil
}

// Remove deletes the blob. Removing an already-deleted blob is a no-op.
func (s *Store) Remove(rel string) error {
	path, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove blob: %w", err)
	}
	return nil
}

// resolve joins the relative path under the root and rejects traversal.
func (s *Store) resolve(rel string) (string, error) {
	rel = filepath.Clean(strings.TrimSpace(rel))
	if rel == "" || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("storage: invalid blob path %q", rel)
	}
	return filepath.Join(s.root, rel), nil
}
