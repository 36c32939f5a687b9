package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/gfdmit/web-forum/posts-api/internal/repository"
)

const prefix = "kv:"

// Open opens the badger directory shared by the key/value store and the
// task queue. An empty path opens an in-memory database.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger.Open: %v", err)
	}
	return db, nil
}

// Store is a small key/value scratch space exposed to authenticated users.
type Store struct {
	db *badger.DB
}

func New(db *badger.DB) *Store {
	return &Store{db: db}
}

// Set stores value under key. A zero ttl keeps the entry until overwritten.
func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(prefix+key), []byte(value))
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv.Get: %w", err)
	}
	return string(value), nil
}

// Ping writes a short-lived probe and reads it back.
func (s *Store) Ping(ctx context.Context) error {
	const probe = "healthcheck"
	if err := s.Set(ctx, probe, "ok", 5*time.Second); err != nil {
		return fmt.Errorf("kv.Ping: %w", err)
	}
	value, err := s.Get(ctx, probe)
	if err != nil {
		return fmt.Errorf("kv.Ping: %w", err)
	}
	if value != "ok" {
		return fmt.Errorf("kv.Ping: unexpected probe value %q", value)
	}
	return nil
}
