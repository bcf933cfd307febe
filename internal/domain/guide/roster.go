package guide

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// languageSets rotates across the generated roster by id.
var languageSets = [][]string{
	{"ID", "EN"},
	{"ID", "EN", "ES"},
	{"ID"},
	{"ID", "EN", "JP"},
	{"ID", "DE"},
	{"ID", "EN", "FR"},
}

// DefaultRosterSize is the size of the generated roster.
const DefaultRosterSize = 70

// Directory is the fixed roster of guides. It is immutable after
// construction and safe for concurrent reads.
type Directory struct {
	byID   map[int]Guide
	sorted []int
}

// NewDirectory validates guides and builds a Directory. Check-in time and
// tag are stripped since roster entries never carry queue state.
func NewDirectory(guides []Guide) (*Directory, error) {
	d := &Directory{byID: make(map[int]Guide, len(guides))}
	for _, g := range guides {
		if g.ID <= 0 {
			return nil, fmt.Errorf("%w: id %d", ErrInvalidGuide, g.ID)
		}
		if len(g.Languages) == 0 {
			return nil, fmt.Errorf("%w: guide %d has no languages", ErrInvalidGuide, g.ID)
		}
		if _, exists := d.byID[g.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateGuide, g.ID)
		}
		entry := g.Clone()
		entry.CheckInTime = nil
		entry.Tag = nil
		d.byID[g.ID] = entry
		d.sorted = append(d.sorted, g.ID)
	}
	sort.Ints(d.sorted)
	return d, nil
}

// Get returns a copy of the guide with the given id.
func (d *Directory) Get(id int) (Guide, bool) {
	g, ok := d.byID[id]
	if !ok {
		return Guide{}, false
	}
	return g.Clone(), true
}

// Has reports whether id is on the roster.
func (d *Directory) Has(id int) bool {
	_, ok := d.byID[id]
	return ok
}

// All returns copies of every guide ordered by id.
func (d *Directory) All() []Guide {
	out := make([]Guide, 0, len(d.sorted))
	for _, id := range d.sorted {
		out = append(out, d.byID[id].Clone())
	}
	return out
}

// Len returns the roster size.
func (d *Directory) Len() int {
	return len(d.sorted)
}

// DefaultRoster generates n guides named "Guide 01".."Guide n".
func DefaultRoster(n int) []Guide {
	guides := make([]Guide, 0, n)
	for id := 1; id <= n; id++ {
		langs := languageSets[id%len(languageSets)]
		guides = append(guides, Guide{
			ID:        id,
			Name:      fmt.Sprintf("Guide %02d", id),
			Languages: append([]string(nil), langs...),
		})
	}
	return guides
}

type rosterFile struct {
	Guides []Guide `yaml:"guides"`
}

// LoadRoster reads a YAML roster file of the form
//
//	guides:
//	  - id: 1
//	    name: Guide 01
//	    languages: [ID, EN]
func LoadRoster(path string) ([]Guide, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}
	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse roster file: %w", err)
	}
	return file.Guides, nil
}
