package activity

import "context"

// Repository provides persistence operations for activity entries.
// List returns entries newest first.
type Repository interface {
	Log(ctx context.Context, entry *ActivityEntry) error
	List(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error)
	Clear(ctx context.Context) error
}
