package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage[string, int]()

	_, ok := s.Get("a")
	assert.False(t, ok)

	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("a", 3)

	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, s.Count())

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	_, ok = s.UpdatedAt("a")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Count())
}

func TestMemoryStorageUpdatedAt(t *testing.T) {
	s := NewMemoryStorage[string, string]()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.Set("k", "v")
	at, ok := s.UpdatedAt("k")
	assert.True(t, ok)
	assert.Equal(t, fixed, at)
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	s := NewMemoryStorage[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set(i, i*i)
			s.Get(i)
			s.UpdatedAt(i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count())
}

func TestMemoryStoragePrune(t *testing.T) {
	s := NewMemoryStorage[string, int]()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	s.Set("old", 1)
	s.now = func() time.Time { return base.Add(time.Hour) }
	s.Set("new", 2)

	pruned := s.Prune(base.Add(time.Minute))
	assert.Equal(t, []string{"old"}, pruned)
	assert.Equal(t, 1, s.Count())

	_, ok := s.Get("new")
	assert.True(t, ok)
}
