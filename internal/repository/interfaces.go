package repository

import (
	"context"

	"github.com/rpggio/guidequeue/internal/domain/activity"
)

// KVRepository is a durable string key-value store. Get returns
// ErrNotFound for a missing key. PutMany writes all values or none.
type KVRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	PutMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, key string) error
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
	Clear(ctx context.Context) error
}
