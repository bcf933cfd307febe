package session

import "errors"

// ErrInvalidSession indicates an unknown session identifier.
var ErrInvalidSession = errors.New("invalid session")
