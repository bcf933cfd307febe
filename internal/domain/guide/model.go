package guide

import "strings"

// Guide is a person on the roster who can check in and be scheduled.
type Guide struct {
	ID          int      `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Languages   []string `json:"languages" yaml:"languages"`
	CheckInTime *int64   `json:"checkInTime" yaml:"-"`
	Tag         *string  `json:"tag" yaml:"-"`
}

// Clone returns a deep copy of g.
func (g Guide) Clone() Guide {
	out := g
	if g.Languages != nil {
		out.Languages = append([]string(nil), g.Languages...)
	}
	if g.CheckInTime != nil {
		ts := *g.CheckInTime
		out.CheckInTime = &ts
	}
	if g.Tag != nil {
		tag := *g.Tag
		out.Tag = &tag
	}
	return out
}

// WithCheckIn returns a copy of g stamped with the given check-in time.
func (g Guide) WithCheckIn(epochMillis int64) Guide {
	out := g.Clone()
	out.CheckInTime = &epochMillis
	return out
}

// Matches reports whether search is a case-insensitive substring of the
// guide name or of its space-joined language codes. An empty search matches.
func (g Guide) Matches(search string) bool {
	s := strings.ToLower(strings.TrimSpace(search))
	if s == "" {
		return true
	}
	if strings.Contains(strings.ToLower(g.Name), s) {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(g.Languages, " ")), s)
}

// TagValue returns the tag or the empty string.
func (g Guide) TagValue() string {
	if g.Tag == nil {
		return ""
	}
	return *g.Tag
}
