package session

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// ID identifies one of the three fixed daily sessions.
type ID string

const (
	Pagi  ID = "PAGI"
	Siang ID = "SIANG"
	Sore  ID = "SORE"
)

// DefaultID is used when no valid active session has been stored.
const DefaultID = Pagi

var order = []ID{Pagi, Siang, Sore}

// slotLabels is the fixed slot time table per session. Changing an entry
// changes that session's schema fingerprint and invalidates stored slots.
var slotLabels = map[ID][]string{
	Pagi:  {"08:30", "09:30", "10:30", "11:30"},
	Siang: {"12:30", "13:30", "14:30", "15:30"},
	Sore:  {"16:30", "17:30", "18:30", "19:30"},
}

// All returns the sessions in chronological order.
func All() []ID {
	return append([]ID(nil), order...)
}

// Parse converts s into a session ID.
func Parse(s string) (ID, error) {
	id := ID(s)
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSession, s)
	}
	return id, nil
}

// Valid reports whether id is one of the fixed sessions.
func (id ID) Valid() bool {
	_, ok := slotLabels[id]
	return ok
}

// Next returns the chronologically following session. SORE has none.
func (id ID) Next() (ID, bool) {
	for i, s := range order {
		if s == id && i+1 < len(order) {
			return order[i+1], true
		}
	}
	return "", false
}

func (id ID) String() string {
	return string(id)
}

// Labels returns the slot time labels for id.
func Labels(id ID) []string {
	return append([]string(nil), slotLabels[id]...)
}

// Schema describes the expected slot layout of a session.
type Schema struct {
	Session ID
	Labels  []string
}

// SchemaFor returns the current slot schema of id.
func SchemaFor(id ID) Schema {
	return Schema{Session: id, Labels: Labels(id)}
}

// Fingerprint is a stable hash of the session id and ordered labels. It is
// stored next to slot data and compared on load.
func (s Schema) Fingerprint() string {
	h := blake3.New()
	_, _ = h.Write([]byte(s.Session))
	for _, label := range s.Labels {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(label))
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// MatchesLabels reports whether labels equal the schema labels in order.
func (s Schema) MatchesLabels(labels []string) bool {
	if len(labels) != len(s.Labels) {
		return false
	}
	for i := range labels {
		if labels[i] != s.Labels[i] {
			return false
		}
	}
	return true
}
