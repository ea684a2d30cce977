// Package host models the capabilities the core components need from their
// runtime: a single stored list and a way to tell the user something failed.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/storage"
)

// Capabilities is everything the birthday store depends on.
type Capabilities interface {
	// GetStoredList returns the serialized list, or nil when nothing was stored yet.
	GetStoredList(ctx context.Context) ([]byte, error)
	PutStoredList(ctx context.Context, data []byte) error
	// NotifyUser surfaces a short message to whoever is watching (toast).
	NotifyUser(ctx context.Context, message string)
}

// Toaster delivers user-facing toasts, e.g. to connected websocket clients.
type Toaster interface {
	Toast(ctx context.Context, message string)
}

// Runtime implements Capabilities over a key/value store.
type Runtime struct {
	KV      storage.KV
	Toaster Toaster // optional
}

// NewRuntime wires a runtime. toaster may be nil.
func NewRuntime(kv storage.KV, toaster Toaster) *Runtime {
	return &Runtime{KV: kv, Toaster: toaster}
}

func (r *Runtime) GetStoredList(ctx context.Context) ([]byte, error) {
	data, err := r.KV.Get(ctx, config.StorageKeyBirthdays)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStorageRead, err)
	}
	return data, nil
}

func (r *Runtime) PutStoredList(ctx context.Context, data []byte) error {
	if err := r.KV.Put(ctx, config.StorageKeyBirthdays, data); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStorageWrite, err)
	}
	return nil
}

func (r *Runtime) NotifyUser(ctx context.Context, message string) {
	slog.InfoContext(ctx, message,
		config.LogKeyComponent, config.CompHost,
		config.LogKeyCategory, config.CategoryToast,
	)
	if r.Toaster != nil {
		r.Toaster.Toast(ctx, message)
	}
}
