package adapters

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/de-tools/activity-atlas/pkg/models/api"
	"github.com/de-tools/activity-atlas/pkg/models/domain"
	"github.com/de-tools/activity-atlas/pkg/services/canonical"
)

// unknownInterval stands in for a sample whose bucket was not reported.
const unknownInterval = -1

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

// MapSampleApiToDomain converts one sample. A null interval maps to an
// unknown bucket and a null step count to a missing reading; negative steps
// and intervals off the 5-minute grid are rejected.
func MapSampleApiToDomain(s api.Sample) (domain.Sample, error) {
	date, err := domain.ParseDate(s.Date)
	if err != nil {
		return domain.Sample{}, fmt.Errorf("invalid sample date %q: expected YYYY-MM-DD", s.Date)
	}

	sample := domain.Sample{Date: date, Interval: unknownInterval}
	if s.Interval != nil {
		if !domain.ValidInterval(*s.Interval) {
			return domain.Sample{}, fmt.Errorf("invalid sample interval %d on %s: expected a multiple of %d in [0, %d]",
				*s.Interval, s.Date, domain.IntervalWidth, domain.MaxInterval)
		}
		sample.Interval = *s.Interval
	}
	if s.Steps == nil {
		sample.Missing = true
	} else {
		if *s.Steps < 0 || math.IsNaN(*s.Steps) || math.IsInf(*s.Steps, 0) {
			return domain.Sample{}, fmt.Errorf("invalid sample steps %v on %s: expected a non-negative count", *s.Steps, s.Date)
		}
		sample.Steps = *s.Steps
	}
	return sample, nil
}

// MapSamplesApiToDomain converts samples into a canonical series ordered by
// date and interval. Samples sharing a (date, interval) bucket are summed;
// samples without an interval are kept as they are.
func MapSamplesApiToDomain(samples []api.Sample) (domain.Series, error) {
	readings := make(map[time.Time][]canonical.Reading)
	var series domain.Series
	for _, s := range samples {
		sample, err := MapSampleApiToDomain(s)
		if err != nil {
			return nil, err
		}
		if sample.Interval == unknownInterval {
			series = append(series, sample)
			continue
		}
		readings[sample.Date] = append(readings[sample.Date], canonical.Reading{
			Hour:    sample.Interval / 60,
			Minute:  sample.Interval % 60,
			Steps:   sample.Steps,
			Missing: sample.Missing,
		})
	}
	for date, rs := range readings {
		series = append(series, canonical.Build(date, rs)...)
	}
	if series == nil {
		series = domain.Series{}
	}

	slices.SortStableFunc(series, func(a, b domain.Sample) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Interval, b.Interval)
	})
	return series, nil
}

func MapSampleDomainToApi(s domain.Sample) api.Sample {
	out := api.Sample{Date: formatDate(s.Date)}
	if domain.ValidInterval(s.Interval) {
		interval := s.Interval
		out.Interval = &interval
	}
	if !s.Missing {
		steps := s.Steps
		out.Steps = &steps
	}
	return out
}

func MapAnalyzeRequestApiToDomain(r api.AnalyzeRequest) (domain.AnalyzeRequest, error) {
	req := domain.AnalyzeRequest{
		FetchRequest: domain.FetchRequest{
			Platform:     domain.Vendor(r.Platform),
			Profile:      r.Profile,
			AccessToken:  r.AccessToken,
			RefreshToken: r.RefreshToken,
		},
		Impute: r.Impute,
	}

	if req.Platform == domain.VendorManual {
		samples, err := MapSamplesApiToDomain(r.Samples)
		if err != nil {
			return domain.AnalyzeRequest{}, err
		}
		req.Samples = samples
		return req, nil
	}

	start, err := domain.ParseDate(r.StartDate)
	if err != nil {
		return domain.AnalyzeRequest{}, errors.New("invalid 'start_date' format. Expected format: YYYY-MM-DD")
	}
	end, err := domain.ParseDate(r.EndDate)
	if err != nil {
		return domain.AnalyzeRequest{}, errors.New("invalid 'end_date' format. Expected format: YYYY-MM-DD")
	}
	req.Start, req.End = start, end
	return req, nil
}

func MapIntervalMeansDomainToApi(means []domain.IntervalMean) []api.IntervalMean {
	res := make([]api.IntervalMean, 0, len(means))
	for _, m := range means {
		res = append(res, api.IntervalMean{Interval: m.Interval, Steps: api.Float(m.Steps)})
	}
	return res
}

func MapReportDomainToApi(r domain.AnalysisReport) api.AnalysisReport {
	res := api.AnalysisReport{
		DailyStatistics: api.DailyStatistics{
			Mean:   api.Float(r.DailyStatistics.Mean),
			Median: api.Float(r.DailyStatistics.Median),
			Min:    api.Float(r.DailyStatistics.Min),
			Max:    api.Float(r.DailyStatistics.Max),
			Std:    api.Float(r.DailyStatistics.Std),
		},
		WeekdayPatterns: api.WeekdayPatterns{
			WeekdayAverage:   api.Float(r.WeekdayPatterns.WeekdayAverage),
			WeekendAverage:   api.Float(r.WeekdayPatterns.WeekendAverage),
			WeekdayIntervals: MapIntervalMeansDomainToApi(r.WeekdayPatterns.WeekdayIntervals),
			WeekendIntervals: MapIntervalMeansDomainToApi(r.WeekdayPatterns.WeekendIntervals),
			WeekdayCount:     r.WeekdayPatterns.WeekdayCount,
			WeekendCount:     r.WeekdayPatterns.WeekendCount,
		},
		DataQuality: api.DataQuality{
			TotalRows:        r.DataQuality.TotalRows,
			MissingSteps:     r.DataQuality.MissingSteps,
			MissingIntervals: r.DataQuality.MissingIntervals,
			MissingDays:      r.DataQuality.MissingDays,
			DataCompleteness: api.Float(r.DataQuality.DataCompleteness),
		},
		TimeSpan: api.TimeSpan{
			StartDate: formatDate(r.TimeSpan.Start),
			EndDate:   formatDate(r.TimeSpan.End),
			TotalDays: r.TimeSpan.TotalDays,
		},
	}
	if r.Peak != nil {
		res.PeakActivity = &api.PeakActivity{Interval: r.Peak.Interval, AverageSteps: api.Float(r.Peak.Steps)}
	}
	return res
}

func MapFetchResultDomainToApi(r domain.FetchResult) api.FetchSummary {
	res := api.FetchSummary{
		RunID:         r.RunID,
		Platform:      string(r.Vendor),
		Profile:       r.Profile,
		StartDate:     formatDate(r.Start),
		EndDate:       formatDate(r.End),
		RequestedDays: r.RequestedDays(),
		CoveredDays:   len(r.Covered),
		Skipped:       make([]api.SkippedDate, 0, len(r.Skipped)),
		StopReason:    string(r.StopReason),
	}
	for _, s := range r.Skipped {
		res.Skipped = append(res.Skipped, api.SkippedDate{Date: formatDate(s.Date), Reason: s.Reason})
	}
	return res
}

func MapAnalysisResultDomainToApi(r domain.AnalysisResult, includeSeries bool) api.AnalyzeResponse {
	res := api.AnalyzeResponse{Report: MapReportDomainToApi(r.Report)}
	if r.Fetch != nil {
		fetch := MapFetchResultDomainToApi(*r.Fetch)
		res.Fetch = &fetch
		res.Partial = r.Fetch.Partial
	}
	if includeSeries {
		res.Series = make([]api.Sample, 0, len(r.Series))
		for _, s := range r.Series {
			res.Series = append(res.Series, MapSampleDomainToApi(s))
		}
	}
	return res
}

func MapPlatformDomainToApi(p domain.Platform) api.Platform {
	return api.Platform{
		ID:                string(p.ID),
		Name:              p.Name,
		APIURL:            p.APIURL,
		DirectIntegration: p.DirectIntegration,
		Supported:         p.Supported,
		Note:              p.Note,
	}
}

func MapProfileDomainToApi(p domain.Profile) api.Profile {
	return api.Profile{Name: p.Name, Platform: string(p.Vendor)}
}
