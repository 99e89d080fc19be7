package finder

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/hailam/chessfinder/internal/storage"
)

// ResultStore is the persistence a CachedSearcher needs.
// *storage.ResultCache implements it.
type ResultStore interface {
	Get(key uint64) (storage.Entry, bool, error)
	Put(key uint64, e storage.Entry) error
}

// CachedSearcher wraps another searcher with a result store. Only found
// and not-found results are stored; input errors are recomputed.
type CachedSearcher struct {
	inner  Searcher
	store  ResultStore
	salt   string
	logger *zap.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedSearcher creates a cached searcher wrapping inner. When inner
// is a *Finder its settings become part of every key.
func NewCachedSearcher(inner Searcher, store ResultStore, logger *zap.Logger) *CachedSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	salt := ""
	if f, ok := inner.(interface{ Fingerprint() string }); ok {
		salt = f.Fingerprint()
	}
	return &CachedSearcher{inner: inner, store: store, salt: salt, logger: logger}
}

// Key returns the cache key for a search.
func (cs *CachedSearcher) Key(target, pgnText string) uint64 {
	d := xxhash.New()
	d.WriteString(cs.salt)
	d.Write([]byte{0})
	d.WriteString(target)
	d.Write([]byte{0})
	d.WriteString(pgnText)
	return d.Sum64()
}

// Find answers from the store when possible and searches otherwise.
func (cs *CachedSearcher) Find(target, pgnText string) Result {
	key := cs.Key(target, pgnText)

	e, ok, err := cs.store.Get(key)
	if err != nil {
		cs.logger.Warn("impossible to read the result cache", zap.Uint64("key", key), zap.Error(err))
	}
	if ok {
		cs.hits.Add(1)
		return Result{Status: Status(e.Status), Ply: e.Ply, Position: e.Position}
	}
	cs.misses.Add(1)

	res := cs.inner.Find(target, pgnText)
	if res.Status.Cacheable() {
		entry := storage.Entry{Status: int(res.Status), Ply: res.Ply, Position: res.Position}
		if err := cs.store.Put(key, entry); err != nil {
			cs.logger.Warn("impossible to write the result cache", zap.Uint64("key", key), zap.Error(err))
		}
	}
	return res
}

// HitRate returns the cache hit rate as a percentage.
func (cs *CachedSearcher) HitRate() float64 {
	hits, misses := cs.hits.Load(), cs.misses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
