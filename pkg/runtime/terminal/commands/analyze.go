package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/de-tools/activity-atlas/pkg/adapters"
	"github.com/de-tools/activity-atlas/pkg/models/api"
	"github.com/de-tools/activity-atlas/pkg/models/domain"
	"github.com/de-tools/activity-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/activity-atlas/pkg/services/vendor"
	"github.com/spf13/cobra"
)

type AnalyzeCmd struct {
	serviceFlags
	profile     string
	from        string
	to          string
	samplesPath string
	impute      bool
	timeout     time.Duration
	vendors     vendor.Registry
	reporter    *export.Reporter
}

func NewAnalyzeCmd(vendors vendor.Registry, reporter *export.Reporter) *cobra.Command {
	ac := &AnalyzeCmd{vendors: vendors, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Fetch a date range for a profile and analyze the step series",
		Example: `  activity analyze --profiles profiles.ini --profile my-fitbit --from 2024-01-01 --to 2024-01-07
  activity analyze --samples samples.json --impute`,
		RunE: ac.run,
	}

	ac.serviceFlags.register(cmd)
	cmd.Flags().StringVar(&ac.profile, "profile", "", "Name of the profile to fetch with")
	cmd.Flags().StringVar(&ac.from, "from", "", "First date of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ac.to, "to", "", "Last date of the range, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ac.samplesPath, "samples", "", "Analyze a JSON array of samples instead of fetching")
	cmd.Flags().BoolVar(&ac.impute, "impute", false, "Fill missing step readings with their interval mean across days")
	cmd.Flags().DurationVar(&ac.timeout, "timeout", 10*time.Minute, "Upper bound for the whole run")

	cmd.MarkFlagsMutuallyExclusive("profile", "samples")
	cmd.MarkFlagsOneRequired("profile", "samples")
	cmd.MarkFlagsRequiredTogether("profile", "from", "to")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	svc, logger, err := ac.build(ac.vendors, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), ac.timeout)
	defer cancel()
	ctx = logger.WithContext(ctx)

	req, err := ac.request()
	if err != nil {
		return err
	}

	result, err := svc.Analyze(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("analysis did not finish within %s: %w", ac.timeout, err)
		}
		return fmt.Errorf("failed to analyze activity: %w", err)
	}

	return ac.reporter.Handle(result)
}

func (ac *AnalyzeCmd) request() (domain.AnalyzeRequest, error) {
	if ac.samplesPath != "" {
		data, err := os.ReadFile(ac.samplesPath)
		if err != nil {
			return domain.AnalyzeRequest{}, fmt.Errorf("failed to read samples: %w", err)
		}
		var samples []api.Sample
		if err := json.Unmarshal(data, &samples); err != nil {
			return domain.AnalyzeRequest{}, fmt.Errorf("failed to parse samples: %w", err)
		}
		series, err := adapters.MapSamplesApiToDomain(samples)
		if err != nil {
			return domain.AnalyzeRequest{}, err
		}
		return domain.AnalyzeRequest{
			FetchRequest: domain.FetchRequest{Platform: domain.VendorManual},
			Samples:      series,
			Impute:       ac.impute,
		}, nil
	}

	start, err := domain.ParseDate(ac.from)
	if err != nil {
		return domain.AnalyzeRequest{}, fmt.Errorf("invalid --from %q: expected YYYY-MM-DD", ac.from)
	}
	end, err := domain.ParseDate(ac.to)
	if err != nil {
		return domain.AnalyzeRequest{}, fmt.Errorf("invalid --to %q: expected YYYY-MM-DD", ac.to)
	}
	return domain.AnalyzeRequest{
		FetchRequest: domain.FetchRequest{Profile: ac.profile, Start: start, End: end},
		Impute:       ac.impute,
	}, nil
}
