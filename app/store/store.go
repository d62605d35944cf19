// Package store contains models and storage primitives for application.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is an error that is returned when the requested entity is not found.
var ErrNotFound = errors.New("not found")

//go:generate moq -out mock_kv.go . KV

// KV defines a key-value blob storage.
type KV interface {
	// Get returns the value stored under the key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set replaces the value stored under the key.
	Set(ctx context.Context, key, value string) error
}
