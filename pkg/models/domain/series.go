package domain

import (
	"slices"
	"time"
)

const (
	// IntervalWidth is the bucket size, in minutes, of every canonical sample.
	IntervalWidth = 5
	// MaxInterval is the start minute of the last bucket of a day.
	MaxInterval = 24*60 - IntervalWidth

	DateLayout = "2006-01-02"
)

// Sample is one 5-minute bucket of step activity.
// While Missing is set the Steps value carries no meaning.
type Sample struct {
	Date     time.Time // midnight UTC
	Interval int       // minutes since midnight, multiple of 5
	Steps    float64
	Missing  bool
}

// Series is the canonical, vendor-agnostic step series ordered by (Date, Interval).
type Series []Sample

type DailyTotal struct {
	Date  time.Time
	Steps float64
}

// IntervalMean is one entry of an interval profile: mean steps across dates.
type IntervalMean struct {
	Interval int
	Steps    float64
}

// ValidInterval reports whether i is a 5-minute bucket inside a day.
func ValidInterval(i int) bool {
	return i >= 0 && i <= MaxInterval && i%IntervalWidth == 0
}

// CalendarDate truncates t to its calendar date expressed as midnight UTC.
// The wall-clock date of t is kept, its location is dropped.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysInclusive counts the calendar days of [start, end], both ends included.
// It works on whole days, so spans beyond the range of time.Duration are exact.
func DaysInclusive(start, end time.Time) int {
	const secondsPerDay = 24 * 60 * 60
	return int((CalendarDate(end).Unix()-CalendarDate(start).Unix())/secondsPerDay) + 1
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func (s Series) Len() int {
	return len(s)
}

// Clone returns a copy that shares no backing array with s.
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// Dates returns the distinct calendar dates of the series in ascending order.
func (s Series) Dates() []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, sample := range s {
		if _, ok := seen[sample.Date]; ok {
			continue
		}
		seen[sample.Date] = struct{}{}
		dates = append(dates, sample.Date)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates
}
