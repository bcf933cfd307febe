package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/guidequeue/internal/domain/queue"
	"github.com/rpggio/guidequeue/internal/domain/session"
	"github.com/rpggio/guidequeue/internal/domain/slot"
)

// Batch collects record writes that Commit applies together. The first
// encoding error is kept and returned by Commit; later puts are ignored.
type Batch struct {
	store  *Store
	values map[string]string
	err    error
}

// Batch starts an empty batch.
func (s *Store) Batch() *Batch {
	return &Batch{store: s, values: make(map[string]string)}
}

// PutQueue stages the queue of id.
func (b *Batch) PutQueue(id session.ID, entries []queue.Entry) *Batch {
	if b.err != nil {
		return b
	}
	if entries == nil {
		entries = []queue.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		b.err = fmt.Errorf("encoding queue %s: %w", id, err)
		return b
	}
	b.values[b.store.QueueKey(id)] = string(data)
	return b
}

// PutSlots stages the slots of id stamped with the current schema.
func (b *Batch) PutSlots(id session.ID, slots []slot.Slot) *Batch {
	if b.err != nil {
		return b
	}
	data, err := encodeSlots(slots, session.SchemaFor(id))
	if err != nil {
		b.err = fmt.Errorf("encoding slots %s: %w", id, err)
		return b
	}
	b.values[b.store.SlotsKey(id)] = string(data)
	return b
}

// PutActive stages the active session id.
func (b *Batch) PutActive(id session.ID) *Batch {
	if b.err == nil {
		b.values[b.store.ActiveKey()] = string(id)
	}
	return b
}

// ResetSession stages an empty queue and default slots for id.
func (b *Batch) ResetSession(id session.ID) *Batch {
	return b.PutQueue(id, nil).PutSlots(id, b.store.DefaultSlots(id))
}

// Len returns the number of staged records.
func (b *Batch) Len() int {
	return len(b.values)
}

// Commit writes every staged record in one repository call.
func (b *Batch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.values) == 0 {
		return nil
	}
	if len(b.values) == 1 {
		for k, v := range b.values {
			if err := b.store.kv.Put(ctx, k, v); err != nil {
				return fmt.Errorf("saving %s: %w", k, err)
			}
		}
		return nil
	}
	if err := b.store.kv.PutMany(ctx, b.values); err != nil {
		return fmt.Errorf("saving %d records: %w", len(b.values), err)
	}
	return nil
}
