// Package canonical converts vendor readings into the 5-minute canonical series.
package canonical

import (
	"slices"
	"time"

	"github.com/de-tools/activity-atlas/pkg/models/domain"
)

// Reading is one raw vendor observation at a minute of the day.
type Reading struct {
	Hour    int
	Minute  int
	Steps   float64
	Missing bool
}

// Bucket rounds a minute-of-day down to its 5-minute interval.
func Bucket(minuteOfDay int) int {
	return (minuteOfDay / domain.IntervalWidth) * domain.IntervalWidth
}

// ReadingAt builds a reading from the wall-clock time of t.
func ReadingAt(t time.Time, steps float64) Reading {
	return Reading{Hour: t.Hour(), Minute: t.Minute(), Steps: steps}
}

// Build groups readings of one date into 5-minute buckets, summing duplicates.
// A bucket is missing only when every reading in it is missing. Without
// readings the date still yields one zero sample at interval 0.
func Build(date time.Time, readings []Reading) domain.Series {
	date = domain.CalendarDate(date)
	if len(readings) == 0 {
		return Summary(date, 0)
	}

	type bucket struct {
		steps   float64
		present bool
	}
	buckets := make(map[int]*bucket)
	for _, r := range readings {
		interval := Bucket(r.Hour*60 + r.Minute)
		if !domain.ValidInterval(interval) {
			continue
		}
		b, ok := buckets[interval]
		if !ok {
			b = &bucket{}
			buckets[interval] = b
		}
		if r.Missing {
			continue
		}
		b.steps += max(r.Steps, 0)
		b.present = true
	}
	if len(buckets) == 0 {
		return Summary(date, 0)
	}

	series := make(domain.Series, 0, len(buckets))
	for interval, b := range buckets {
		series = append(series, domain.Sample{
			Date:     date,
			Interval: interval,
			Steps:    b.steps,
			Missing:  !b.present,
		})
	}
	slices.SortFunc(series, func(a, b domain.Sample) int { return a.Interval - b.Interval })
	return series
}

// Summary is the single-sample fallback holding a whole day at interval 0.
func Summary(date time.Time, total float64) domain.Series {
	if total < 0 {
		total = 0
	}
	return domain.Series{{Date: domain.CalendarDate(date), Interval: 0, Steps: total}}
}

// Concat appends fragments into a new series without touching the inputs.
func Concat(fragments ...domain.Series) domain.Series {
	n := 0
	for _, f := range fragments {
		n += len(f)
	}
	out := make(domain.Series, 0, n)
	for _, f := range fragments {
		out = append(out, f...)
	}
	return out
}
