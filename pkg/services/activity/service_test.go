package activity

import (
	"context"
	"testing"
	"time"

	"github.com/de-tools/activity-atlas/pkg/models/domain"
	"github.com/de-tools/activity-atlas/pkg/services/canonical"
	"github.com/de-tools/activity-atlas/pkg/services/config"
	"github.com/de-tools/activity-atlas/pkg/services/fetch"
	"github.com/de-tools/activity-atlas/pkg/services/vendor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type stubAdapter struct {
	profile domain.Profile
	closed  bool
	// missingOn marks the intraday bucket of that date as missing.
	missingOn time.Time
}

func (a *stubAdapter) Vendor() domain.Vendor { return a.profile.Vendor }

func (a *stubAdapter) FetchSummary(_ context.Context, date time.Time) (domain.RawPayload, error) {
	return vendor.Payload(a.profile.Vendor, domain.PayloadSummary, date, nil), nil
}

func (a *stubAdapter) FetchIntraday(context.Context, time.Time) (domain.RawPayload, error) {
	return domain.RawPayload{}, vendor.ErrIntradayUnavailable
}

func (a *stubAdapter) ToCanonical(date time.Time, _ domain.RawPayload) (domain.Series, error) {
	if date.Equal(a.missingOn) {
		return domain.Series{{Date: date, Interval: 0, Missing: true}}, nil
	}
	return canonical.Summary(date, 1000), nil
}

func (a *stubAdapter) Close() error {
	a.closed = true
	return nil
}

type fixture struct {
	svc     Service
	created []*stubAdapter
}

func setupFixture(t *testing.T, profiles config.Registry) *fixture {
	f := &fixture{}
	reg, err := vendor.NewRegistry(map[domain.Vendor]vendor.Factory{
		domain.VendorFitbit: func(_ context.Context, p domain.Profile) (vendor.Adapter, error) {
			a := &stubAdapter{profile: p, missingOn: monday.AddDate(0, 0, 1)}
			f.created = append(f.created, a)
			return a, nil
		},
	})
	require.NoError(t, err)

	f.svc = NewService(reg, profiles, fetch.Settings{MaxRangeDays: 10},
		fetch.WithRunID(func() string { return "run" }))
	return f
}

func testProfiles(t *testing.T) config.Registry {
	r, err := config.NewRegistryFromBytes([]byte(`
[wrist]
vendor = fitbit
access_token = from-file
client_id = id

[watch]
vendor = garmin
consumer_key = ck
`))
	require.NoError(t, err)
	return r
}

func TestService_Platforms(t *testing.T) {
	f := setupFixture(t, nil)
	platforms := f.svc.Platforms()
	require.Len(t, platforms, 4)
	supported := map[domain.Vendor]bool{}
	for _, p := range platforms {
		supported[p.ID] = p.Supported
	}
	assert.Equal(t, map[domain.Vendor]bool{
		domain.VendorFitbit:      true,
		domain.VendorGarmin:      false,
		domain.VendorAppleHealth: false,
		"googlefit":              false,
	}, supported)

	profiles, err := f.svc.Profiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestService_FetchRange(t *testing.T) {
	ctx := context.Background()

	t.Run("profile with token override", func(t *testing.T) {
		f := setupFixture(t, testProfiles(t))

		result, err := f.svc.FetchRange(ctx, domain.FetchRequest{
			Profile:     "wrist",
			Start:       monday,
			End:         monday.AddDate(0, 0, 2),
			AccessToken: "from-request",
		})

		require.NoError(t, err)
		assert.Equal(t, "wrist", result.Profile)
		assert.Len(t, result.Covered, 3)
		require.Len(t, f.created, 1)
		assert.Equal(t, "from-request", f.created[0].profile.Settings["access_token"])
		assert.Equal(t, "id", f.created[0].profile.Settings["client_id"])
		assert.True(t, f.created[0].closed)
	})

	t.Run("inline platform", func(t *testing.T) {
		f := setupFixture(t, nil)

		result, err := f.svc.FetchRange(ctx, domain.FetchRequest{
			Platform:     domain.VendorFitbit,
			Start:        monday,
			End:          monday,
			AccessToken:  "a",
			RefreshToken: "r",
		})

		require.NoError(t, err)
		assert.Equal(t, "fitbit", result.Profile)
		assert.Equal(t, map[string]string{"access_token": "a", "refresh_token": "r"}, f.created[0].profile.Settings)
	})

	tests := []struct {
		name     string
		req      domain.FetchRequest
		expected error
	}{
		{"missing dates", domain.FetchRequest{Platform: domain.VendorFitbit}, ErrInvalidRequest},
		{"no platform or profile", domain.FetchRequest{Start: monday, End: monday}, ErrInvalidRequest},
		{"unknown profile", domain.FetchRequest{Profile: "nope", Start: monday, End: monday}, config.ErrProfileNotFound},
		{"profile vendor mismatch", domain.FetchRequest{Profile: "wrist", Platform: domain.VendorGarmin, Start: monday, End: monday}, ErrInvalidRequest},
		{"unsupported vendor", domain.FetchRequest{Profile: "watch", Start: monday, End: monday}, vendor.ErrUnsupportedVendor},
		{"range too long", domain.FetchRequest{Platform: domain.VendorFitbit, Start: monday, End: monday.AddDate(0, 1, 0)}, fetch.ErrRangeTooLong},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setupFixture(t, testProfiles(t))
			_, err := f.svc.FetchRange(ctx, tc.req)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestService_Analyze(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t, nil)
	req := domain.FetchRequest{Platform: domain.VendorFitbit, Start: monday, End: monday.AddDate(0, 0, 2)}

	t.Run("fetched series", func(t *testing.T) {
		result, err := f.svc.Analyze(ctx, domain.AnalyzeRequest{FetchRequest: req})

		require.NoError(t, err)
		require.NotNil(t, result.Fetch)
		assert.Equal(t, 3, result.Report.DataQuality.TotalRows)
		assert.Equal(t, 1, result.Report.DataQuality.MissingSteps)
		assert.Equal(t, 3, result.Report.TimeSpan.TotalDays)
	})

	t.Run("imputed series", func(t *testing.T) {
		result, err := f.svc.Analyze(ctx, domain.AnalyzeRequest{FetchRequest: req, Impute: true})

		require.NoError(t, err)
		assert.Zero(t, result.Report.DataQuality.MissingSteps)
		assert.InDelta(t, 1000, result.Report.DailyStatistics.Min, 1e-9)
	})

	t.Run("manual samples", func(t *testing.T) {
		result, err := f.svc.Analyze(ctx, domain.AnalyzeRequest{
			FetchRequest: domain.FetchRequest{Platform: domain.VendorManual},
			Samples: domain.Series{
				{Date: monday, Interval: 300, Steps: 10},
				{Date: monday, Interval: 305, Steps: 30},
			},
		})

		require.NoError(t, err)
		assert.Nil(t, result.Fetch)
		require.NotNil(t, result.Report.Peak)
		assert.Equal(t, 305, result.Report.Peak.Interval)
		assert.InDelta(t, 40, result.Report.DailyStatistics.Mean, 1e-9)
	})
}
