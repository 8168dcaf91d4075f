package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects as plain files under a base directory. Keys use
// forward slashes regardless of the host OS.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a store rooted at basePath
func NewLocalStore(basePath string) *LocalStore {
	return &LocalStore{basePath: basePath}
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(key))
}

// List returns the keys of regular files directly under prefix
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	dir := s.path(prefix)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		keys = append(keys, strings.TrimSuffix(prefix, "/")+"/"+entry.Name())
	}
	return keys, nil
}

// Get reads the file at key
func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put writes the file at key, creating parent directories as needed
func (s *LocalStore) Put(_ context.Context, key string, data []byte) error {
	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o644)
}
