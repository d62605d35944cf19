package store

import (
	"context"
	"fmt"
	"path"

	bolt "go.etcd.io/bbolt"
)

const kvBktName = "kv"

// Bolt is a storage that uses BoltDB as a backend.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates new Bolt storage.
func NewBolt(dir string) (*Bolt, error) {
	db, err := bolt.Open(path.Join(dir, "newsbook.db"), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make boltdb for %s: %w", dir, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{kvBktName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create top-level bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Set puts the value under the key.
func (b *Bolt) Set(_ context.Context, key, value string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(kvBktName))

		if err := bkt.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("put value to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// Get returns the value stored under the key.
func (b *Bolt) Get(_ context.Context, key string) (value string, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(kvBktName))

		bts := bkt.Get([]byte(key))
		if bts == nil {
			return ErrNotFound
		}

		// bolt values are valid only within the transaction
		value = string(bts)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("view storage: %w", err)
	}

	return value, nil
}

// Close closes the storage.
func (b *Bolt) Close() error { return b.db.Close() }
