// Package storage provides the key/value backends that persist the birthday
// list and the scheduler watermark.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New(config.ErrKeyNotFound)

// KV is a minimal byte-oriented key/value store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Open returns the backend selected by the settings. The returned closer must be
// closed when the process exits.
func Open(s config.Settings) (KV, io.Closer, error) {
	if s.Storage.Backend == config.StorageMemory {
		return NewMemory(), io.NopCloser(nil), nil
	}

	path, err := s.DataPath()
	if err != nil {
		return nil, nil, err
	}

	switch s.Storage.Backend {
	case config.StorageSQLite:
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case config.StorageFile:
		f, err := NewFile(path)
		if err != nil {
			return nil, nil, err
		}
		return f, io.NopCloser(nil), nil
	default:
		return nil, nil, fmt.Errorf("%s: %q", config.ErrStorageUnknown, s.Storage.Backend)
	}
}

// Memory is an in-process KV used by tests and the "memory" backend.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.data[key] = slices.Clone(value)
	m.mu.Unlock()
	return nil
}
