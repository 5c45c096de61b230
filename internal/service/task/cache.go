// Package task implements the idempotent asynchronous task protocol: input
// digests, the result cache, the work queue and the submit dispatcher.
package task

import (
	"context"

	"buildingclash/internal/model"
)

// Cache stores finished results keyed by task id. A missing entry is
// reported as found == false with a nil error.
type Cache interface {
	Get(ctx context.Context, taskID string) (result model.FeatureCollection, found bool, err error)
	Put(ctx context.Context, taskID string, result model.FeatureCollection) error
}
