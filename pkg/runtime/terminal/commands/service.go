package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/activity-atlas/pkg/services/activity"
	"github.com/de-tools/activity-atlas/pkg/services/config"
	"github.com/de-tools/activity-atlas/pkg/services/fetch"
	"github.com/de-tools/activity-atlas/pkg/services/vendor"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// serviceFlags are shared by every command that needs an activity.Service.
type serviceFlags struct {
	profilesPath string
	settingsPath string
}

func (f *serviceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.profilesPath, "profiles", "", "Path to the vendor profiles ini file")
	cmd.Flags().StringVar(&f.settingsPath, "settings", "", "Path to a settings file (yaml, json or toml)")
}

// build loads settings and profiles and returns the service with a logger
// writing to errOut. An explicit --profiles path must exist; the settings
// default is only used when present.
func (f *serviceFlags) build(vendors vendor.Registry, errOut io.Writer) (activity.Service, zerolog.Logger, error) {
	settings, err := config.LoadSettings(f.settingsPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	level, err := zerolog.ParseLevel(settings.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: errOut}).Level(level).With().Timestamp().Logger()

	var profiles config.Registry
	path := f.profilesPath
	if path == "" {
		path = settings.ProfilesPath
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	if path != "" {
		profiles, err = config.NewRegistry(path)
		if err != nil {
			return nil, logger, fmt.Errorf("failed to load profiles: %w", err)
		}
	}

	svc := activity.NewService(vendors, profiles, fetch.Settings{
		Pacing:           settings.Fetch.Pacing,
		RateLimitBackoff: settings.Fetch.RateLimitBackoff,
		MaxRangeDays:     settings.Fetch.MaxRangeDays,
	})
	return svc, logger, nil
}
