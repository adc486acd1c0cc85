package domain

import "time"

// FetchState is a state of the per-range fetch state machine.
type FetchState string

const (
	FetchStatePending         FetchState = "pending"
	FetchStateFetching        FetchState = "fetching"
	FetchStateRateLimitedStop FetchState = "rate_limited_stop"
	FetchStateAuthFailed      FetchState = "auth_failed"
	FetchStateDone            FetchState = "done"
	// FetchStateCanceled ends a range whose context was done mid-fetch.
	FetchStateCanceled FetchState = "canceled"
)

// DateFailure records a date that was skipped during a range fetch.
type DateFailure struct {
	Date   time.Time
	Reason string
}

// FetchResult is the series assembled by one range fetch.
type FetchResult struct {
	RunID   string
	Vendor  Vendor
	Profile string
	Start   time.Time
	End     time.Time
	Series  Series
	// Partial is set whenever Series does not cover every requested date.
	Partial bool
	Covered []time.Time
	Skipped []DateFailure
	// StopReason is the terminal state of the fetch.
	StopReason FetchState
}

// RequestedDays is the inclusive number of calendar days in [Start, End].
func (r FetchResult) RequestedDays() int {
	return DaysInclusive(r.Start, r.End)
}

// FetchRequest selects a profile and an inclusive date range.
type FetchRequest struct {
	Platform     Vendor
	Profile      string
	Start        time.Time
	End          time.Time
	AccessToken  string
	RefreshToken string
}

// AnalyzeRequest is a FetchRequest, or a caller-supplied series for VendorManual.
type AnalyzeRequest struct {
	FetchRequest
	Samples Series
	Impute  bool
}

// AnalysisResult pairs a report with the series it was computed from and
// the fetch that produced that series.
type AnalysisResult struct {
	Report AnalysisReport
	Series Series
	Fetch  *FetchResult
}
