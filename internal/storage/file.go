package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

const fileExt = ".json"

// File stores each key as its own file inside a directory.
// Writes go through a temp file and rename so readers never see a partial value.
type File struct {
	dir string
}

// NewFile creates the directory (0700) if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	// Keys are internal constants, but keep them inside the directory regardless.
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(f.dir, safe+fileExt)
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", config.ErrKVRead, key, err)
	}
	return data, nil
}

func (f *File) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrKVWrite, key, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s %q: %w", config.ErrKVWrite, key, err)
	}
	if err := tmp.Chmod(config.FilePermUserRW); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s %q: %w", config.ErrKVWrite, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrKVWrite, key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrKVWrite, key, err)
	}
	return nil
}
