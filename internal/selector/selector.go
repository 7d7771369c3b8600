// Package selector maps calendar days to corpus indices.
package selector

import (
	"errors"
	"fmt"
	"time"
)

const millisPerDay = 86_400_000

// ErrInvalidCorpus is returned when selecting from an empty corpus.
var ErrInvalidCorpus = errors.New("invalid corpus: length must be at least 1")

// DateLayout is the civil date format used in links and ledger keys.
const DateLayout = "2006-01-02"

// CivilDate returns t's calendar day in loc, as a UTC midnight instant.
// Two instants on the same day in loc always yield the same value.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from epoch to today, both taken as
// calendar days in loc. The result is negative when today precedes epoch.
func DaysBetween(today, epoch time.Time, loc *time.Location) int64 {
	// Differencing UTC midnights keeps every day exactly 24h long, so a
	// 23h or 25h local day around a DST switch cannot shift the count.
	ms := CivilDate(today, loc).Sub(CivilDate(epoch, loc)).Milliseconds()
	return floorDiv(ms, millisPerDay)
}

// Select returns the corpus index for today:
// floor(days(today - epoch)) mod corpusLength, always in [0, corpusLength).
func Select(today, epoch time.Time, loc *time.Location, corpusLength int) (int, error) {
	if corpusLength <= 0 {
		return 0, fmt.Errorf("select day index: %w", ErrInvalidCorpus)
	}

	days := DaysBetween(today, epoch, loc)
	n := int64(corpusLength)
	return int(((days % n) + n) % n), nil
}

// Selector binds the epoch and zone so callers only pass the day.
type Selector struct {
	epoch time.Time
	loc   *time.Location
}

// New creates a Selector for the given reference epoch and zone.
func New(epoch time.Time, loc *time.Location) *Selector {
	if loc == nil {
		loc = time.UTC
	}
	return &Selector{epoch: epoch, loc: loc}
}

// Select returns the index for today in a corpus of corpusLength quotes.
func (s *Selector) Select(today time.Time, corpusLength int) (int, error) {
	return Select(today, s.epoch, s.loc, corpusLength)
}

// Day returns the civil date of t in the selector's zone formatted as YYYY-MM-DD.
func (s *Selector) Day(t time.Time) string {
	return CivilDate(t, s.loc).Format(DateLayout)
}

// ParseDay parses a YYYY-MM-DD string as noon of that day in the selector's
// zone, which lies on that calendar day regardless of DST shifts.
func (s *Selector) ParseDay(day string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, day, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", day, err)
	}
	return d.Add(12 * time.Hour), nil
}

// NextMidnight returns the first local midnight in the selector's zone strictly after t.
func (s *Selector) NextMidnight(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)
}

// Location returns the selector's reference zone.
func (s *Selector) Location() *time.Location {
	return s.loc
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
