// Package fetch drives a vendor adapter across a date range, one calendar
// date at a time, applying the refresh, rate-limit and partial-result policy.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/activity-atlas/pkg/models/domain"
	"github.com/de-tools/activity-atlas/pkg/services/canonical"
	"github.com/de-tools/activity-atlas/pkg/services/vendor"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Outcome is the resolved result of one per-date unit of work.
type Outcome int

const (
	OutcomeFetched Outcome = iota
	OutcomeSkipped
	OutcomeRateLimited
	OutcomeAuthFailed
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFetched:
		return "fetched"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeAuthFailed:
		return "auth_failed"
	case OutcomeCanceled:
		return "canceled"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

type Settings struct {
	// Pacing is the minimum spacing between consecutive per-date units.
	Pacing time.Duration
	// RateLimitBackoff is the single fixed wait before retrying a rate-limited request.
	RateLimitBackoff time.Duration
	// MaxRangeDays rejects longer ranges up front; zero disables the check.
	MaxRangeDays int
}

type Option func(*Orchestrator)

func WithSleeper(s Sleeper) Option {
	return func(o *Orchestrator) { o.sleeper = s }
}

func WithRunID(fn func() string) Option {
	return func(o *Orchestrator) { o.newRunID = fn }
}

// Orchestrator owns one adapter for the duration of its range fetches.
// Requests are strictly sequential.
type Orchestrator struct {
	adapter  vendor.Adapter
	settings Settings
	sleeper  Sleeper
	newRunID func() string
}

func NewOrchestrator(adapter vendor.Adapter, settings Settings, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		adapter:  adapter,
		settings: settings,
		sleeper:  timerSleeper{},
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run is the state of one range fetch.
type run struct {
	result    *domain.FetchResult
	fragments []domain.Series
	logger    zerolog.Logger
	// summaryOnly is set once the adapter reports intraday data unavailable.
	summaryOnly bool
	lastErr     error
}

func (r *run) transition(state domain.FetchState, date time.Time) {
	r.result.StopReason = state
	r.logger.Debug().
		Str("state", string(state)).
		Str("date", date.Format(domain.DateLayout)).
		Msg("fetch state changed")
}

// FetchRange fetches every calendar date of [start, end] in ascending order.
// It returns a partial result without error when at least one date produced
// data before the range stopped, and a *FetchError when none did or when
// authentication failed.
func (o *Orchestrator) FetchRange(ctx context.Context, start, end time.Time) (*domain.FetchResult, error) {
	start, end = domain.CalendarDate(start), domain.CalendarDate(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange,
			end.Format(domain.DateLayout), start.Format(domain.DateLayout))
	}

	result := &domain.FetchResult{
		RunID:      o.newRunID(),
		Vendor:     o.adapter.Vendor(),
		Start:      start,
		End:        end,
		StopReason: domain.FetchStatePending,
	}
	if days := result.RequestedDays(); o.settings.MaxRangeDays > 0 && days > o.settings.MaxRangeDays {
		return nil, fmt.Errorf("%w: %d days requested, at most %d allowed", ErrRangeTooLong, days, o.settings.MaxRangeDays)
	}

	logger := zerolog.Ctx(ctx).With().
		Str("run_id", result.RunID).
		Str("vendor", string(result.Vendor)).
		Logger()
	ctx = logger.WithContext(ctx)
	r := &run{result: result, logger: logger}

	limit := rate.Inf
	if o.settings.Pacing > 0 {
		limit = rate.Every(o.settings.Pacing)
	}
	limiter := rate.NewLimiter(limit, 1)

	logger.Info().
		Str("start", start.Format(domain.DateLayout)).
		Str("end", end.Format(domain.DateLayout)).
		Int("days", result.RequestedDays()).
		Msg("range fetch started")

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if err := limiter.Wait(ctx); err != nil {
			return o.finish(r, date, domain.FetchStateCanceled, fmt.Errorf("pacing wait: %w", err))
		}

		r.transition(domain.FetchStateFetching, date)
		series, outcome, err := o.fetchDate(ctx, r, date)

		switch outcome {
		case OutcomeFetched:
			r.fragments = append(r.fragments, series)
			result.Covered = append(result.Covered, date)

		case OutcomeSkipped:
			r.lastErr = err
			result.Skipped = append(result.Skipped, domain.DateFailure{Date: date, Reason: err.Error()})
			logger.Warn().Err(err).Str("date", date.Format(domain.DateLayout)).Msg("date skipped")

		case OutcomeRateLimited:
			fe := &FetchError{Class: ClassRateLimited, Vendor: result.Vendor, Date: date, Err: err}
			var rl *vendor.RateLimitError
			if errors.As(err, &rl) {
				fe.RetryAfter = rl.RetryAfter
			}
			return o.finish(r, date, domain.FetchStateRateLimitedStop, fe)

		case OutcomeAuthFailed:
			r.transition(domain.FetchStateAuthFailed, date)
			logger.Error().Err(err).Msg("range fetch aborted")
			return nil, &FetchError{Class: ClassAuthenticationFailure, Vendor: result.Vendor, Date: date, Err: err}

		case OutcomeCanceled:
			return o.finish(r, date, domain.FetchStateCanceled, err)
		}
	}

	var trigger error
	if r.lastErr != nil {
		trigger = &FetchError{Class: ClassTransientFetchError, Vendor: result.Vendor, Date: end, Err: r.lastErr}
	} else {
		trigger = &FetchError{Class: ClassTransientFetchError, Vendor: result.Vendor, Date: end, Err: errors.New("no data")}
	}
	return o.finish(r, end, domain.FetchStateDone, trigger)
}

// finish emits the accumulated series, or trigger when nothing was covered.
func (o *Orchestrator) finish(r *run, date time.Time, state domain.FetchState, trigger error) (*domain.FetchResult, error) {
	r.transition(state, date)
	result := r.result

	if len(result.Covered) == 0 {
		r.logger.Warn().Err(trigger).Int("skipped", len(result.Skipped)).Msg("range fetch produced no data")
		return nil, trigger
	}

	result.Series = canonical.Concat(r.fragments...)
	result.Partial = len(result.Covered) < result.RequestedDays()
	r.logger.Info().
		Int("covered", len(result.Covered)).
		Int("skipped", len(result.Skipped)).
		Int("samples", len(result.Series)).
		Bool("partial", result.Partial).
		Str("stop_reason", string(state)).
		Msg("range fetch finished")
	return result, nil
}

// fetchDate resolves one date: at most one refresh-and-retry on expired
// authentication and at most one retry after a rate-limit backoff.
func (o *Orchestrator) fetchDate(ctx context.Context, r *run, date time.Time) (domain.Series, Outcome, error) {
	refreshed, backedOff := false, false

	for {
		series, err := o.fetchOnce(ctx, r, date)
		if err == nil {
			return series, OutcomeFetched, nil
		}
		if ctx.Err() != nil {
			return nil, OutcomeCanceled, ctx.Err()
		}

		switch {
		case errors.Is(err, vendor.ErrAuthRejected), errors.Is(err, vendor.ErrAuthFailed):
			return nil, OutcomeAuthFailed, err

		case errors.Is(err, vendor.ErrAuthExpired):
			if refreshed {
				return nil, OutcomeAuthFailed, err
			}
			refresher, ok := o.adapter.(vendor.Refresher)
			if !ok {
				return nil, OutcomeAuthFailed, err
			}
			r.logger.Info().Str("date", date.Format(domain.DateLayout)).Msg("authentication expired, refreshing")
			if rerr := refresher.RefreshAuth(ctx); rerr != nil {
				return nil, OutcomeAuthFailed, rerr
			}
			refreshed = true

		case errors.Is(err, vendor.ErrRateLimited):
			if backedOff {
				return nil, OutcomeRateLimited, err
			}
			r.logger.Warn().
				Str("date", date.Format(domain.DateLayout)).
				Dur("backoff", o.settings.RateLimitBackoff).
				Msg("rate limited, backing off once")
			if serr := o.sleeper.Sleep(ctx, o.settings.RateLimitBackoff); serr != nil {
				return nil, OutcomeCanceled, serr
			}
			backedOff = true

		default:
			return nil, OutcomeSkipped, err
		}
	}
}

// fetchOnce prefers the intraday payload and falls back to the daily summary.
func (o *Orchestrator) fetchOnce(ctx context.Context, r *run, date time.Time) (domain.Series, error) {
	var (
		payload domain.RawPayload
		err     error
	)
	if !r.summaryOnly {
		payload, err = o.adapter.FetchIntraday(ctx, date)
		if errors.Is(err, vendor.ErrIntradayUnavailable) {
			r.summaryOnly = true
			r.logger.Info().Err(err).Msg("intraday unavailable, using daily summaries")
		}
	}
	if r.summaryOnly {
		payload, err = o.adapter.FetchSummary(ctx, date)
	}
	if err != nil {
		return nil, err
	}

	series, err := o.adapter.ToCanonical(date, payload)
	if err != nil {
		return nil, err
	}
	return series, nil
}
