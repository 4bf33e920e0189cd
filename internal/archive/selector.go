package archive

import (
	"strings"
	"time"
)

// Selector describes which entries a Clear operation removes.
// Construct one with SelectAll, SelectTitle, or SelectRecordedBetween.
type Selector struct {
	all           bool
	titleContains string
	from, to      time.Time
}

// SelectAll matches every entry.
func SelectAll() Selector {
	return Selector{all: true}
}

// SelectTitle matches entries whose title contains the given substring,
// case-insensitively.
func SelectTitle(substring string) Selector {
	return Selector{titleContains: strings.ToLower(substring)}
}

// SelectRecordedBetween matches entries recorded inside the inclusive
// [from, to] range. Pass to as the end of its day when working from a bare
// date, otherwise entries recorded later that day are excluded.
func SelectRecordedBetween(from, to time.Time) Selector {
	return Selector{from: from, to: to}
}

// Matches reports whether the selector applies to the entry.
func (s Selector) Matches(e Entry) bool {
	switch {
	case s.all:
		return true
	case s.titleContains != "":
		return strings.Contains(strings.ToLower(e.Title), s.titleContains)
	case !s.from.IsZero() || !s.to.IsZero():
		if e.RecordedAt.Before(s.from) {
			return false
		}
		return !e.RecordedAt.After(s.to)
	default:
		return false
	}
}
