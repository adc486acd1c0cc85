// Package activity composes profile resolution, the range fetch and the
// analysis engine behind the operations exposed by the API and the CLI.
package activity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"

	"github.com/de-tools/activity-atlas/pkg/models/domain"
	"github.com/de-tools/activity-atlas/pkg/services/analysis"
	"github.com/de-tools/activity-atlas/pkg/services/config"
	"github.com/de-tools/activity-atlas/pkg/services/fetch"
	"github.com/de-tools/activity-atlas/pkg/services/vendor"
	"github.com/rs/zerolog"
)

var ErrInvalidRequest = errors.New("invalid request")

type Service interface {
	Platforms() []domain.Platform
	Profiles(ctx context.Context) ([]domain.Profile, error)
	FetchRange(ctx context.Context, req domain.FetchRequest) (*domain.FetchResult, error)
	Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisResult, error)
}

type service struct {
	vendors  vendor.Registry
	profiles config.Registry
	settings fetch.Settings
	opts     []fetch.Option
}

// NewService creates the service. profiles may be nil when no profiles file
// is configured; requests then carry their credentials inline.
func NewService(vendors vendor.Registry, profiles config.Registry, settings fetch.Settings, opts ...fetch.Option) Service {
	return &service{
		vendors:  vendors,
		profiles: profiles,
		settings: settings,
		opts:     opts,
	}
}

// Platforms lists the known platforms, marking those with a registered adapter.
func (s *service) Platforms() []domain.Platform {
	registered := make(map[domain.Vendor]bool)
	for _, v := range s.vendors.ListVendors() {
		registered[v] = true
	}

	platforms := make([]domain.Platform, 0, len(catalog))
	for _, p := range catalog {
		p.Supported = registered[p.ID]
		platforms = append(platforms, p)
	}
	return platforms
}

func (s *service) Profiles(ctx context.Context) ([]domain.Profile, error) {
	if s.profiles == nil {
		return []domain.Profile{}, nil
	}
	return s.profiles.GetProfiles(ctx)
}

func (s *service) FetchRange(ctx context.Context, req domain.FetchRequest) (*domain.FetchResult, error) {
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidRequest)
	}

	profile, err := s.resolveProfile(ctx, req)
	if err != nil {
		return nil, err
	}

	adapter, err := s.vendors.Create(ctx, profile)
	if err != nil {
		return nil, err
	}
	if c, ok := adapter.(io.Closer); ok {
		defer c.Close()
	}

	ctx = zerolog.Ctx(ctx).With().Str("profile", profile.Name).Logger().WithContext(ctx)
	result, err := fetch.NewOrchestrator(adapter, s.settings, s.opts...).FetchRange(ctx, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	result.Profile = profile.Name
	return result, nil
}

func (s *service) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisResult, error) {
	if req.Platform == domain.VendorManual {
		series := req.Samples
		if req.Impute {
			series = analysis.Impute(series)
		}
		return &domain.AnalysisResult{Report: analysis.Analyze(series), Series: series}, nil
	}

	result, err := s.FetchRange(ctx, req.FetchRequest)
	if err != nil {
		return nil, err
	}

	series := result.Series
	if req.Impute {
		series = analysis.Impute(series)
	}

	zerolog.Ctx(ctx).Info().
		Str("run_id", result.RunID).
		Int("samples", series.Len()).
		Bool("partial", result.Partial).
		Msg("analyzing fetched series")
	return &domain.AnalysisResult{Report: analysis.Analyze(series), Series: series, Fetch: result}, nil
}

// resolveProfile loads the named profile, or builds an inline one from the
// request, then applies request token overrides.
func (s *service) resolveProfile(ctx context.Context, req domain.FetchRequest) (domain.Profile, error) {
	var profile domain.Profile

	switch {
	case req.Profile != "":
		if s.profiles == nil {
			return domain.Profile{}, fmt.Errorf("profile %q: %w", req.Profile, config.ErrProfileNotFound)
		}
		p, err := s.profiles.GetProfile(ctx, req.Profile)
		if err != nil {
			return domain.Profile{}, err
		}
		if req.Platform != "" && req.Platform != p.Vendor {
			return domain.Profile{}, fmt.Errorf("%w: profile %q is for %s, not %s",
				ErrInvalidRequest, p.Name, p.Vendor, req.Platform)
		}
		profile = p
	case req.Platform != "":
		profile = domain.Profile{Name: string(req.Platform), Vendor: req.Platform}
	default:
		return domain.Profile{}, fmt.Errorf("%w: platform or profile is required", ErrInvalidRequest)
	}

	settings := make(map[string]string, len(profile.Settings)+2)
	maps.Copy(settings, profile.Settings)
	if req.AccessToken != "" {
		settings["access_token"] = req.AccessToken
	}
	if req.RefreshToken != "" {
		settings["refresh_token"] = req.RefreshToken
	}
	profile.Settings = settings
	return profile, nil
}
