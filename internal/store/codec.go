package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/rpggio/guidequeue/internal/domain/guide"
	"github.com/rpggio/guidequeue/internal/domain/queue"
	"github.com/rpggio/guidequeue/internal/domain/session"
	"github.com/rpggio/guidequeue/internal/domain/slot"
)

var (
	errSchemaMismatch = errors.New("slot schema mismatch")
	errMalformed      = errors.New("malformed record")
)

// slotDocument is the versioned slot record. Schema holds the session
// schema fingerprint at write time.
type slotDocument struct {
	Schema string            `json:"schema"`
	Slots  []json.RawMessage `json:"slots"`
}

type slotDocumentOut struct {
	Schema string      `json:"schema"`
	Slots  []slot.Slot `json:"slots"`
}

func encodeSlots(slots []slot.Slot, schema session.Schema) ([]byte, error) {
	if slots == nil {
		slots = []slot.Slot{}
	}
	return json.Marshal(slotDocumentOut{Schema: schema.Fingerprint(), Slots: slots})
}

// decodeSlots accepts the versioned document or the legacy bare array.
// Both must match schema in slot count and label order.
func decodeSlots(raw string, schema session.Schema, capacity int) ([]slot.Slot, error) {
	var top any
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}

	var elems []json.RawMessage
	switch top.(type) {
	case map[string]any:
		var doc slotDocument
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformed, err)
		}
		if doc.Schema != schema.Fingerprint() {
			return nil, errSchemaMismatch
		}
		elems = doc.Slots
	case []any:
		if err := json.Unmarshal([]byte(raw), &elems); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformed, err)
		}
	default:
		return nil, errMalformed
	}

	objs := make([]map[string]any, 0, len(elems))
	labels := make([]string, 0, len(elems))
	for _, elem := range elems {
		var obj map[string]any
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			return nil, errSchemaMismatch
		}
		label, ok := obj["timeLabel"].(string)
		if !ok {
			return nil, errSchemaMismatch
		}
		objs = append(objs, obj)
		labels = append(labels, label)
	}
	if !schema.MatchesLabels(labels) {
		return nil, errSchemaMismatch
	}

	slots := make([]slot.Slot, 0, len(objs))
	for i, obj := range objs {
		slots = append(slots, normalizeSlot(obj, i, capacity))
	}
	return slots, nil
}

// normalizeSlot converts one stored slot. The older single-guide layout
// stored a "guide" object instead of a "guides" list.
func normalizeSlot(obj map[string]any, index, capacity int) slot.Slot {
	s := slot.Slot{
		ID:        index + 1,
		TimeLabel: obj["timeLabel"].(string),
		Guides:    []guide.Guide{},
		Capacity:  capacity,
	}
	if id, ok := positiveInt(obj["id"]); ok {
		s.ID = id
	}
	if c, ok := positiveInt(obj["capacity"]); ok {
		s.Capacity = c
	}

	seen := make(map[int]bool)
	add := func(v any) {
		g, ok := normalizeGuide(v)
		if !ok || seen[g.ID] || len(s.Guides) >= s.Capacity {
			return
		}
		seen[g.ID] = true
		s.Guides = append(s.Guides, g)
	}
	if single, ok := obj["guide"].(map[string]any); ok {
		add(single)
	} else if list, ok := obj["guides"].([]any); ok {
		for _, v := range list {
			add(v)
		}
	}
	return s
}

func decodeQueue(raw string) ([]queue.Entry, error) {
	var elems []any
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	entries := make([]queue.Entry, 0, len(elems))
	for _, elem := range elems {
		obj, ok := elem.(map[string]any)
		if !ok {
			continue
		}
		g, ok := normalizeGuide(obj["guide"])
		if !ok {
			continue
		}
		status := queue.StatusActive
		if st, ok := obj["status"].(string); ok && queue.Status(st) == queue.StatusMandu {
			status = queue.StatusMandu
		}
		entries = append(entries, queue.Entry{Guide: g, Status: status})
	}
	return queue.New(entries).Entries(), nil
}

func normalizeGuide(v any) (guide.Guide, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return guide.Guide{}, false
	}
	id, ok := positiveInt(obj["id"])
	if !ok {
		return guide.Guide{}, false
	}
	g := guide.Guide{ID: id, Languages: []string{}}
	if name, ok := obj["name"].(string); ok {
		g.Name = name
	}
	if langs, ok := obj["languages"].([]any); ok {
		for _, l := range langs {
			if code, ok := l.(string); ok {
				g.Languages = append(g.Languages, code)
			}
		}
	}
	if ts, ok := obj["checkInTime"].(float64); ok {
		ms := int64(ts)
		g.CheckInTime = &ms
	}
	if tag, ok := obj["tag"].(string); ok {
		g.Tag = &tag
	}
	return g, true
}

func positiveInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
