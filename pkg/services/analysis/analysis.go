// Package analysis computes descriptive statistics over a canonical step series.
//
// Every function is pure: the input series is never modified and degenerate
// input (empty, single day, fully missing) yields well-defined zero, empty or
// NaN values instead of an error.
package analysis

import (
	"math"
	"slices"
	"time"

	"github.com/de-tools/activity-atlas/pkg/models/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Analyze composes every statistic into one report.
func Analyze(series domain.Series) domain.AnalysisReport {
	profile := IntervalProfile(series)

	report := domain.AnalysisReport{
		DailyStatistics: DailyStatistics(series),
		WeekdayPatterns: WeekdaySplit(series),
		DataQuality:     DataQuality(series),
		TimeSpan:        TimeSpan(series),
	}
	if peak, ok := PeakInterval(profile); ok {
		report.Peak = &peak
	}
	return report
}

// DailyTotals sums non-missing steps per date, ascending by date.
// Dates whose samples are all missing are reported with a zero total.
func DailyTotals(series domain.Series) []domain.DailyTotal {
	totals := make(map[time.Time]float64)
	for _, s := range series {
		if _, ok := totals[s.Date]; !ok {
			totals[s.Date] = 0
		}
		if !s.Missing {
			totals[s.Date] += s.Steps
		}
	}

	out := make([]domain.DailyTotal, 0, len(totals))
	for date, steps := range totals {
		out = append(out, domain.DailyTotal{Date: date, Steps: steps})
	}
	slices.SortFunc(out, func(a, b domain.DailyTotal) int { return a.Date.Compare(b.Date) })
	return out
}

func DailyStatistics(series domain.Series) domain.DailyStatistics {
	totals := DailyTotals(series)
	if len(totals) == 0 {
		nan := math.NaN()
		return domain.DailyStatistics{Mean: nan, Median: nan, Min: nan, Max: nan, Std: nan}
	}

	values := make([]float64, len(totals))
	for i, t := range totals {
		values[i] = t.Steps
	}

	stats := domain.DailyStatistics{
		Mean:   stat.Mean(values, nil),
		Median: median(values),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Std:    math.NaN(),
	}
	if len(values) > 1 {
		stats.Std = stat.StdDev(values, nil)
	}
	return stats
}

// IntervalProfile averages steps per interval over all dates of the series.
// Missing samples are left out of the mean; intervals without any
// observation are absent from the profile.
func IntervalProfile(series domain.Series) []domain.IntervalMean {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[int]*acc)
	for _, s := range series {
		if s.Missing || !domain.ValidInterval(s.Interval) {
			continue
		}
		a, ok := groups[s.Interval]
		if !ok {
			a = &acc{}
			groups[s.Interval] = a
		}
		a.sum += s.Steps
		a.count++
	}

	profile := make([]domain.IntervalMean, 0, len(groups))
	for interval, a := range groups {
		profile = append(profile, domain.IntervalMean{
			Interval: interval,
			Steps:    a.sum / float64(a.count),
		})
	}
	slices.SortFunc(profile, func(a, b domain.IntervalMean) int { return a.Interval - b.Interval })
	return profile
}

// PeakInterval returns the entry with the highest mean. Ties go to the lowest
// interval. ok is false for an empty profile.
func PeakInterval(profile []domain.IntervalMean) (domain.IntervalMean, bool) {
	sorted := slices.Clone(profile)
	slices.SortStableFunc(sorted, func(a, b domain.IntervalMean) int { return a.Interval - b.Interval })

	var (
		peak  domain.IntervalMean
		found bool
	)
	for _, entry := range sorted {
		if math.IsNaN(entry.Steps) {
			continue
		}
		if !found || entry.Steps > peak.Steps {
			peak = entry
			found = true
		}
	}
	return peak, found
}

// Impute returns a copy of series where missing samples carry their
// interval's mean, or 0 when the interval has no observation.
func Impute(series domain.Series) domain.Series {
	means := make(map[int]float64)
	for _, entry := range IntervalProfile(series) {
		means[entry.Interval] = entry.Steps
	}

	out := series.Clone()
	for i := range out {
		if !out[i].Missing {
			continue
		}
		out[i].Steps = means[out[i].Interval]
		out[i].Missing = false
	}
	return out
}

func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeekdaySplit partitions samples into Mon-Fri and Sat-Sun and profiles each
// partition independently. An empty partition has an empty profile and a NaN
// average.
func WeekdaySplit(series domain.Series) domain.PatternSplit {
	var weekday, weekend domain.Series
	for _, s := range series {
		if isWeekend(s.Date) {
			weekend = append(weekend, s)
		} else {
			weekday = append(weekday, s)
		}
	}

	return domain.PatternSplit{
		WeekdayAverage:   meanSteps(weekday),
		WeekendAverage:   meanSteps(weekend),
		WeekdayIntervals: IntervalProfile(weekday),
		WeekendIntervals: IntervalProfile(weekend),
		WeekdayCount:     len(weekday),
		WeekendCount:     len(weekend),
	}
}

func DataQuality(series domain.Series) domain.DataQuality {
	q := domain.DataQuality{TotalRows: len(series)}

	allMissing := make(map[time.Time]bool)
	for _, s := range series {
		if s.Missing {
			q.MissingSteps++
		}
		if !domain.ValidInterval(s.Interval) {
			q.MissingIntervals++
		}
		prev, seen := allMissing[s.Date]
		allMissing[s.Date] = s.Missing && (!seen || prev)
	}
	for _, missing := range allMissing {
		if missing {
			q.MissingDays++
		}
	}

	if q.TotalRows > 0 {
		q.DataCompleteness = (1 - float64(q.MissingSteps)/float64(q.TotalRows)) * 100
	}
	return q
}

// TimeSpan reports the min and max date and the inclusive day count between them.
func TimeSpan(series domain.Series) domain.TimeSpan {
	dates := series.Dates()
	if len(dates) == 0 {
		return domain.TimeSpan{}
	}
	start, end := dates[0], dates[len(dates)-1]
	return domain.TimeSpan{
		Start:     start,
		End:       end,
		TotalDays: domain.DaysInclusive(start, end),
	}
}

func meanSteps(series domain.Series) float64 {
	values := make([]float64, 0, len(series))
	for _, s := range series {
		if !s.Missing {
			values = append(values, s.Steps)
		}
	}
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
