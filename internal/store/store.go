// Package store persists each session's queue and slot board, plus the
// active session id, on top of a key-value repository. Loads never fail:
// missing or malformed records fall back to an empty queue or default
// slots. Saves return the backend error.
package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rpggio/guidequeue/internal/domain/queue"
	"github.com/rpggio/guidequeue/internal/domain/session"
	"github.com/rpggio/guidequeue/internal/domain/slot"
	"github.com/rpggio/guidequeue/internal/repository"
)

// Options configures a Store.
type Options struct {
	// KeyPrefix is prepended to every key, e.g. "borobudur.".
	KeyPrefix string
	// Capacity is used for regenerated slots and for stored slots that
	// carry no capacity.
	Capacity int
	Logger   *slog.Logger
}

// Store reads and writes session state through a KVRepository.
type Store struct {
	kv       repository.KVRepository
	prefix   string
	capacity int
	logger   *slog.Logger
}

// New creates a Store.
func New(kv repository.KVRepository, opts Options) *Store {
	if opts.Capacity <= 0 {
		opts.Capacity = slot.DefaultCapacity
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		kv:       kv,
		prefix:   opts.KeyPrefix,
		capacity: opts.Capacity,
		logger:   opts.Logger,
	}
}

// QueueKey returns the key holding the queue of id.
func (s *Store) QueueKey(id session.ID) string {
	return s.prefix + "queue." + string(id)
}

// SlotsKey returns the key holding the slot board of id.
func (s *Store) SlotsKey(id session.ID) string {
	return s.prefix + "slots." + string(id)
}

// ActiveKey returns the key holding the active session id.
func (s *Store) ActiveKey() string {
	return s.prefix + "session"
}

// Capacity returns the slot capacity used for defaults.
func (s *Store) Capacity() int {
	return s.capacity
}

// DefaultSlots returns fresh empty slots for id.
func (s *Store) DefaultSlots(id session.ID) []slot.Slot {
	return slot.Defaults(session.Labels(id), s.capacity)
}

// LoadQueue returns the stored queue of id, or an empty queue.
func (s *Store) LoadQueue(ctx context.Context, id session.ID) []queue.Entry {
	raw, ok := s.read(ctx, s.QueueKey(id))
	if !ok {
		return []queue.Entry{}
	}
	entries, err := decodeQueue(raw)
	if err != nil {
		s.logger.Warn("discarding malformed queue record", "session", id, "error", err)
		return []queue.Entry{}
	}
	return entries
}

// SaveQueue writes the queue of id.
func (s *Store) SaveQueue(ctx context.Context, id session.ID, entries []queue.Entry) error {
	return s.Batch().PutQueue(id, entries).Commit(ctx)
}

// LoadSlots returns the stored slots of id when they match the current
// slot schema, and default slots otherwise.
func (s *Store) LoadSlots(ctx context.Context, id session.ID) []slot.Slot {
	raw, ok := s.read(ctx, s.SlotsKey(id))
	if !ok {
		return s.DefaultSlots(id)
	}
	slots, err := decodeSlots(raw, session.SchemaFor(id), s.capacity)
	if err != nil {
		s.logger.Info("regenerating slots", "session", id, "reason", err)
		return s.DefaultSlots(id)
	}
	return slots
}

// SaveSlots writes the slots of id stamped with the current schema.
func (s *Store) SaveSlots(ctx context.Context, id session.ID, slots []slot.Slot) error {
	return s.Batch().PutSlots(id, slots).Commit(ctx)
}

// LoadActive returns the stored active session, or session.DefaultID.
func (s *Store) LoadActive(ctx context.Context) session.ID {
	raw, ok := s.read(ctx, s.ActiveKey())
	if !ok {
		return session.DefaultID
	}
	id, err := session.Parse(raw)
	if err != nil {
		s.logger.Warn("ignoring stored active session", "value", raw)
		return session.DefaultID
	}
	return id
}

// SaveActive writes the active session id.
func (s *Store) SaveActive(ctx context.Context, id session.ID) error {
	return s.Batch().PutActive(id).Commit(ctx)
}

// ResetSession empties the queue of id and regenerates its slots.
func (s *Store) ResetSession(ctx context.Context, id session.ID) error {
	return s.Batch().ResetSession(id).Commit(ctx)
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("store read failed", "key", key, "error", err)
		}
		return "", false
	}
	return raw, raw != ""
}
