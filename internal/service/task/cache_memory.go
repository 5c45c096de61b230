package task

import (
	"context"
	"time"

	"buildingclash/internal/model"
	"buildingclash/internal/service/storage"
)

// MemoryCache keeps encoded records in process memory. Entries older than
// ttl read as missing; a zero ttl keeps them forever.
type MemoryCache struct {
	store storage.Storage[string, []byte]
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryCache creates an in-process cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		store: storage.NewMemoryStorage[string, []byte](),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, taskID string) (model.FeatureCollection, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.FeatureCollection{}, false, err
	}

	data, ok := c.store.Get(taskID)
	if !ok {
		return model.FeatureCollection{}, false, nil
	}
	if c.expired(taskID) {
		c.store.Delete(taskID)
		return model.FeatureCollection{}, false, nil
	}

	_, fc, err := DecodeRecord(data)
	if err != nil {
		return model.FeatureCollection{}, false, err
	}
	return fc, true, nil
}

func (c *MemoryCache) Put(ctx context.Context, taskID string, result model.FeatureCollection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := EncodeRecord(taskID, result)
	if err != nil {
		return err
	}
	if c.ttl > 0 {
		c.store.Prune(c.now().Add(-c.ttl))
	}
	c.store.Set(taskID, data)
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	return c.store.Count()
}

func (c *MemoryCache) expired(taskID string) bool {
	if c.ttl <= 0 {
		return false
	}
	updated, ok := c.store.UpdatedAt(taskID)
	return ok && c.now().Sub(updated) > c.ttl
}
