package schedule

import "errors"

// ErrPersistence wraps a failed write. The in-memory state is rolled back
// to what it was before the command.
var ErrPersistence = errors.New("persisting session state")
