package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// keyPrefix namespaces result entries inside the database.
const keyPrefix = "result/"

// Entry is a cached search outcome.
type Entry struct {
	Status   int       `json:"status"`
	Ply      int       `json:"ply,omitempty"`
	Position string    `json:"position,omitempty"`
	StoredAt time.Time `json:"stored_at"`
}

// Options configures a ResultCache.
type Options struct {
	// Dir is the database directory. Empty means an in-memory database.
	Dir string
	// TTL expires entries after the given duration. Zero keeps them forever.
	TTL time.Duration
}

// ResultCache wraps BadgerDB for search results. It is safe for concurrent
// use.
type ResultCache struct {
	db  *badger.DB
	ttl time.Duration

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Open opens or creates a result cache.
func Open(opts Options) (*ResultCache, error) {
	bopts := badger.DefaultOptions(opts.Dir)
	if opts.Dir == "" {
		bopts = bopts.WithInMemory(true)
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, err
	}
	return &ResultCache{db: db, ttl: opts.TTL}, nil
}

// OpenDefault opens the on-disk cache in the platform data directory.
func OpenDefault() (*ResultCache, error) {
	dir, err := CacheDir()
	if err != nil {
		return nil, err
	}
	return Open(Options{Dir: dir})
}

// Close closes the database.
func (c *ResultCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func entryKey(key uint64) []byte {
	b := make([]byte, len(keyPrefix)+8)
	copy(b, keyPrefix)
	binary.BigEndian.PutUint64(b[len(keyPrefix):], key)
	return b
}

// Get looks up a result. The boolean is false when the key is absent.
func (c *ResultCache) Get(key uint64) (Entry, bool, error) {
	var e Entry
	found := false

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		return Entry{}, false, err
	}

	if found {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return e, found, nil
}

// Put stores a result, replacing any previous one.
func (c *ResultCache) Put(key uint64, e Entry) error {
	if e.StoredAt.IsZero() {
		e.StoredAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(entryKey(key), data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes a result.
func (c *ResultCache) Delete(key uint64) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(entryKey(key))
	})
}

// Len counts stored results.
func (c *ResultCache) Len() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Clear removes every stored result and resets the counters.
func (c *ResultCache) Clear() error {
	c.hits.Store(0)
	c.misses.Store(0)

	var keys [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := c.db.NewWriteBatch()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			wb.Cancel()
			return err
		}
	}
	return wb.Flush()
}

// HitRate returns the lookup hit rate as a percentage.
func (c *ResultCache) HitRate() float64 {
	hits, misses := c.hits.Load(), c.misses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
