// ABOUTME: Local BadgerDB backend for the KV client
// ABOUTME: Same byte-level API as charm KV, without a server, for offline use and tests

package charm

import (
	"fmt"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v3"
)

type badgerKV struct {
	db *badger.DB
}

func (b *badgerKV) Get(key []byte) ([]byte, error) {
	var result []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

func (b *badgerKV) Set(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *badgerKV) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (b *badgerKV) Keys() ([][]byte, error) {
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (b *badgerKV) Sync() error { return nil }

func (b *badgerKV) Reset() error {
	return b.db.DropAll()
}

// NewLocalClient opens a BadgerDB under dir. Nothing is synced.
func NewLocalClient(dir string) (*Client, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create kv dir: %w", err)
	}

	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return &Client{
		kv:     &badgerKV{db: db},
		config: &Config{Host: "localhost", AutoSync: false},
		closer: db.Close,
	}, nil
}

// NewTestClient creates a local client in a temp directory that is removed
// when the test finishes.
func NewTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open test kv: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Logf("Warning: failed to close test kv: %v", err)
		}
	})
	return c
}
