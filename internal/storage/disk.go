package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// DiskStore keeps files in a local directory served back under a static prefix
type DiskStore struct {
	root   string
	prefix string
}

func NewDiskStore(root, prefix string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &DiskStore{root: root, prefix: prefix}, nil
}

func (s *DiskStore) Root() string {
	return s.root
}

func (s *DiskStore) Prefix() string {
	return s.prefix
}

func (s *DiskStore) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	if !validKey(key) {
		return ErrInvalidKey
	}

	target := filepath.Join(s.root, key)
	file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(target)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(target)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *DiskStore) Remove(ctx context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	err := os.Remove(filepath.Join(s.root, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *DiskStore) URL(key string) string {
	return path.Join(s.prefix, key)
}
