// Package storage holds uploaded attachment files. Keys are opaque,
// flat object names chosen by the caller.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var ErrInvalidKey = errors.New("invalid storage key")

// FileStore persists attachment bytes outside the database
type FileStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	// Remove deletes the object. A key that does not exist is not an error.
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	if strings.ContainsAny(key, `/\`) {
		return false
	}
	return path.Base(key) == key
}
