package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// File stores each key as <dir>/<name>.json on an afero filesystem.
type File struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
}

// NewFile creates dir if needed.
func NewFile(fs afero.Fs, dir string) (*File, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &File{fs: fs, dir: dir}, nil
}

func (f *File) path(key Key) string {
	return filepath.Join(f.dir, strings.TrimPrefix(string(key), "@")+".json")
}

func (f *File) Get(_ context.Context, key Key) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := afero.ReadFile(f.fs, f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Set writes to a temp file and renames it over the old value.
func (f *File) Set(_ context.Context, key Key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := f.path(key)
	tmp := target + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, value, 0o644); err != nil {
		return err
	}
	return f.fs.Rename(tmp, target)
}

func (f *File) Remove(_ context.Context, key Key) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.fs.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
