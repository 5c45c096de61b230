package storage

import "time"

// Storage defines interface for an in-process key-value store
type Storage[K comparable, V any] interface {
	Set(key K, value V)
	Get(key K) (V, bool)
	Delete(key K) bool
	UpdatedAt(key K) (time.Time, bool)
	Count() int
	Prune(cutoff time.Time) []K
}
