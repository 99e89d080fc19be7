package finder

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessfinder/internal/storage"
)

type countingSearcher struct {
	mu    sync.Mutex
	calls int
	inner Searcher
}

func (c *countingSearcher) Find(target, pgnText string) Result {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.Find(target, pgnText)
}

type mapStore struct {
	mu      sync.Mutex
	entries map[uint64]storage.Entry
	failGet bool
}

func newMapStore() *mapStore {
	return &mapStore{entries: make(map[uint64]storage.Entry)}
}

func (s *mapStore) Get(key uint64) (storage.Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return storage.Entry{}, false, errors.New("disk on fire")
	}
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *mapStore) Put(key uint64, e storage.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

func TestCachedSearcherServesRepeats(t *testing.T) {
	inner := &countingSearcher{inner: New()}
	store := newMapStore()
	cs := NewCachedSearcher(inner, store, nil)

	first := cs.Find(afterNc6, italian)
	second := cs.Find(afterNc6, italian)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, StatusFound, second.Status)
	assert.Equal(t, 4, second.Ply)
	assert.InDelta(t, 50.0, cs.HitRate(), 0.001)
}

func TestCachedSearcherSkipsInputErrors(t *testing.T) {
	inner := &countingSearcher{inner: New()}
	store := newMapStore()
	cs := NewCachedSearcher(inner, store, nil)

	cs.Find(afterNc6, broken)
	res := cs.Find(afterNc6, broken)

	assert.Equal(t, StatusIllegalMove, res.Status)
	assert.Error(t, res.Err)
	assert.Equal(t, 2, inner.calls)
	assert.Empty(t, store.entries)
}

func TestCachedSearcherKeys(t *testing.T) {
	trusted := NewCachedSearcher(New(), newMapStore(), nil)
	strict := NewCachedSearcher(New(WithStrict(true)), newMapStore(), nil)

	assert.Equal(t, trusted.Key(afterNc6, italian), trusted.Key(afterNc6, italian))
	assert.NotEqual(t, trusted.Key(afterNc6, italian), trusted.Key(afterNc6, french))
	assert.NotEqual(t, trusted.Key(afterNc6, italian), strict.Key(afterNc6, italian))
	assert.NotEqual(t, trusted.Key("ab", "c"), trusted.Key("a", "bc"))
}

func TestCachedSearcherStoreFailure(t *testing.T) {
	store := newMapStore()
	store.failGet = true
	cs := NewCachedSearcher(New(), store, nil)

	res := cs.Find(afterNc6, italian)
	assert.Equal(t, StatusFound, res.Status)
}

func TestCachedSearcherWithBadger(t *testing.T) {
	cache, err := storage.Open(storage.Options{})
	require.NoError(t, err)
	defer cache.Close()

	inner := &countingSearcher{inner: New()}
	cs := NewCachedSearcher(inner, cache, nil)

	batch := games(italian, french, italian)
	report, err := Match(context.Background(), cs, afterNc6, batch, MatchOptions{Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"game-0", "game-2"}, report.Matched)
	assert.Equal(t, 2, inner.calls)

	n, err := cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
