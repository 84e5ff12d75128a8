package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/doctwin/storage"
)

// FS is a filesystem-backed BlobStore. Artifact keys map directly to paths
// under the root directory, so the on-disk layout mirrors the addressing
// scheme: {root}/{tenant}/{project}/{file}/{kind}/{name}.
type FS struct {
	root string
}

var _ storage.BlobStore = (*FS)(nil)

// NewFS creates a filesystem blob store rooted at the given directory,
// creating it if needed.
func NewFS(root string) (*FS, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	return &FS{root: root}, nil
}

// Put writes a blob, overwriting any previous content at the key. The write
// goes through a temp file and rename so readers never observe a torn blob.
func (s *FS) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	return nil
}

// Get reads a blob by key.
func (s *FS) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: blob %s", storage.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	return data, nil
}

// Exists reports whether a blob is present at the key.
func (s *FS) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	return true, nil
}

// Delete removes a blob. Deleting an absent blob is not an error.
func (s *FS) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	return nil
}

// DeletePrefix removes every blob under the prefix.
func (s *FS) DeletePrefix(ctx context.Context, prefix string) error {
	path, err := s.resolve(strings.TrimSuffix(prefix, "/"))
	if err != nil {
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	return nil
}

// resolve maps a key to an on-disk path and refuses anything that would
// escape the root.
func (s *FS) resolve(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty key", storage.ErrBadKey)
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %q", storage.ErrBadKey, key)
	}
	return filepath.Join(s.root, clean), nil
}
