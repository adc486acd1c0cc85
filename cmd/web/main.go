package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/de-tools/activity-atlas/pkg/server"
	"github.com/de-tools/activity-atlas/pkg/services/activity"
	"github.com/de-tools/activity-atlas/pkg/services/config"
	"github.com/de-tools/activity-atlas/pkg/services/fetch"
	"github.com/de-tools/activity-atlas/pkg/services/registry"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath      string
	profilesPath string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Activity Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the settings file (defaults and ACTIVITY_* env vars are used without it)")
	rootCmd.Flags().StringVarP(&profilesPath, "profiles", "p", "",
		"Path to the vendor profiles ini file (overrides profiles_path)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(settings.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	if profilesPath == "" {
		profilesPath = settings.ProfilesPath
	}

	var profiles config.Registry
	if _, err := os.Stat(profilesPath); err == nil {
		profiles, err = config.NewRegistry(profilesPath)
		if err != nil {
			return fmt.Errorf("failed to create profile registry: %w", err)
		}

		found, _ := profiles.GetProfiles(ctx)
		logger.Info().Msgf("Profiles at `%s` successfully loaded.", profilesPath)
		for _, p := range found {
			logger.Info().Msgf("Name: `%s`, Vendor: `%s`", p.Name, p.Vendor)
		}
	} else {
		logger.Warn().Str("path", profilesPath).Msg("no profiles file, requests must carry their credentials")
	}

	vendors, err := registry.NewDefault()
	if err != nil {
		return fmt.Errorf("failed to register vendors: %w", err)
	}

	svc := activity.NewService(vendors, profiles, fetch.Settings{
		Pacing:           settings.Fetch.Pacing,
		RateLimitBackoff: settings.Fetch.RateLimitBackoff,
		MaxRangeDays:     settings.Fetch.MaxRangeDays,
	})

	api := server.NewWebAPI(logger, server.Config{
		Addr:            net.JoinHostPort(settings.Server.Host, strconv.Itoa(settings.Server.Port)),
		ShutdownTimeout: settings.Server.ShutdownTimeout,
		RequestTimeout:  settings.Server.RequestTimeout,
		Dependencies: server.Dependencies{
			Activity: svc,
		},
	})

	return api.Start()
}
