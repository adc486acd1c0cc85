package api

import (
	"bytes"
	"math"
	"strconv"
)

// Float encodes NaN and infinities as null.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Sample is one canonical sample; Steps is null when the value is missing
// and Interval is null when the bucket is unknown.
type Sample struct {
	Date     string   `json:"date"`
	Interval *int     `json:"interval"`
	Steps    *float64 `json:"steps"`
}

type DailyStatistics struct {
	Mean   Float `json:"mean_steps"`
	Median Float `json:"median_steps"`
	Min    Float `json:"min_steps"`
	Max    Float `json:"max_steps"`
	Std    Float `json:"std_steps"`
}

type IntervalMean struct {
	Interval int   `json:"interval"`
	Steps    Float `json:"steps"`
}

type PeakActivity struct {
	Interval     int   `json:"interval"`
	AverageSteps Float `json:"average_steps"`
}

type WeekdayPatterns struct {
	WeekdayAverage   Float          `json:"weekday_avg"`
	WeekendAverage   Float          `json:"weekend_avg"`
	WeekdayIntervals []IntervalMean `json:"weekday_intervals"`
	WeekendIntervals []IntervalMean `json:"weekend_intervals"`
	WeekdayCount     int            `json:"weekday_count"`
	WeekendCount     int            `json:"weekend_count"`
}

type DataQuality struct {
	TotalRows        int   `json:"total_rows"`
	MissingSteps     int   `json:"missing_steps"`
	MissingIntervals int   `json:"missing_intervals"`
	MissingDays      int   `json:"missing_days"`
	DataCompleteness Float `json:"data_completeness"`
}

type TimeSpan struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	TotalDays int    `json:"total_days"`
}

type AnalysisReport struct {
	DailyStatistics DailyStatistics `json:"daily_statistics"`
	PeakActivity    *PeakActivity   `json:"peak_activity"`
	WeekdayPatterns WeekdayPatterns `json:"weekday_patterns"`
	DataQuality     DataQuality     `json:"data_quality"`
	TimeSpan        TimeSpan        `json:"time_span"`
}

type SkippedDate struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type FetchSummary struct {
	RunID         string        `json:"run_id"`
	Platform      string        `json:"platform"`
	Profile       string        `json:"profile"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	RequestedDays int           `json:"requested_days"`
	CoveredDays   int           `json:"covered_days"`
	Skipped       []SkippedDate `json:"skipped"`
	StopReason    string        `json:"stop_reason"`
}

type AnalyzeRequest struct {
	Platform     string   `json:"platform"`
	Profile      string   `json:"profile,omitempty"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	AccessToken  string   `json:"access_token,omitempty"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	Samples      []Sample `json:"samples,omitempty"`
	Impute       bool     `json:"impute"`
	// IncludeSeries adds the analysed canonical series to the response.
	IncludeSeries bool `json:"include_series"`
}

type AnalyzeResponse struct {
	Report  AnalysisReport `json:"report"`
	Partial bool           `json:"partial"`
	Fetch   *FetchSummary  `json:"fetch,omitempty"`
	Series  []Sample       `json:"series,omitempty"`
}

type Platform struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	APIURL            string `json:"api_url"`
	DirectIntegration bool   `json:"supports_direct_integration"`
	Supported         bool   `json:"supported"`
	Note              string `json:"note,omitempty"`
}

type PlatformsResponse struct {
	Platforms []Platform `json:"platforms"`
}

type Profile struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

type FeaturesResponse struct {
	Features   []string `json:"features"`
	Algorithms []string `json:"algorithms"`
}

type ServiceInfo struct {
	Service  string   `json:"service"`
	Version  string   `json:"version"`
	Status   string   `json:"status"`
	Features []string `json:"features"`
}

type Health struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error             string `json:"error"`
	Class             string `json:"class,omitempty"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}
