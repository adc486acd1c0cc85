package domain

import "time"

// AnalysisReport is the immutable result of one analysis call.
type AnalysisReport struct {
	DailyStatistics DailyStatistics
	Peak            *IntervalMean // nil when no interval has an observation
	WeekdayPatterns PatternSplit
	DataQuality     DataQuality
	TimeSpan        TimeSpan
}

// DailyStatistics describes the distribution of daily totals.
// Every field is NaN for an empty series; Std is NaN below two days.
type DailyStatistics struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	Std    float64
}

// PatternSplit holds interval profiles computed independently for weekdays and weekends.
type PatternSplit struct {
	WeekdayAverage   float64
	WeekendAverage   float64
	WeekdayIntervals []IntervalMean
	WeekendIntervals []IntervalMean
	WeekdayCount     int
	WeekendCount     int
}

type DataQuality struct {
	TotalRows        int
	MissingSteps     int
	MissingIntervals int
	MissingDays      int
	DataCompleteness float64 // percent
}

// TimeSpan represents the inclusive date range covered by a series.
type TimeSpan struct {
	Start     time.Time
	End       time.Time
	TotalDays int
}
