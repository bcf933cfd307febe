package schedule

import (
	"context"

	"github.com/rpggio/guidequeue/internal/domain/activity"
	"github.com/rpggio/guidequeue/internal/domain/attendance"
	"github.com/rpggio/guidequeue/internal/domain/session"
	"github.com/rpggio/guidequeue/internal/store"
)

// Store is the persistence the coordinator needs.
type Store interface {
	attendance.Reader
	LoadActive(ctx context.Context) session.ID
	Batch() *store.Batch
}

// Recorder receives one entry per applied command.
type Recorder interface {
	Record(ctx context.Context, entry *activity.ActivityEntry) error
	Clear(ctx context.Context) error
}
