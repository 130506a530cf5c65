package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig configures a BadgerCache.
type BadgerConfig struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Used in tests.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool
}

// BadgerCache is a Cache backed by an embedded BadgerDB. TTLs are handled by
// Badger itself, so expired entries simply stop being returned.
type BadgerCache struct {
	db *badger.DB
}

// NewBadgerCache opens (or creates) a Badger database.
func NewBadgerCache(cfg BadgerConfig) (*BadgerCache, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger: path is required when not in-memory")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

// Get implements Cache.
func (c *BadgerCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if errors.Is(err, badger.ErrDBClosed) {
		return nil, false, ErrClosed
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set implements Cache.
func (c *BadgerCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}

// Delete implements Cache.
func (c *BadgerCache) Delete(_ context.Context, key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}

// Clear drops every key.
func (c *BadgerCache) Clear() error {
	return c.db.DropAll()
}

// Close implements Cache.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

var _ Cache = (*BadgerCache)(nil)
