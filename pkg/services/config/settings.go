package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "ACTIVITY"

type Settings struct {
	ProfilesPath string         `mapstructure:"profiles_path" validate:"required"`
	Server       ServerSettings `mapstructure:"server"`
	Fetch        FetchSettings  `mapstructure:"fetch"`
	Log          LogSettings    `mapstructure:"log"`
}

type ServerSettings struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"required"`
}

// FetchSettings drives the range-fetch orchestrator.
type FetchSettings struct {
	Pacing           time.Duration `mapstructure:"pacing" validate:"min=0"`
	RateLimitBackoff time.Duration `mapstructure:"rate_limit_backoff" validate:"min=0"`
	MaxRangeDays     int           `mapstructure:"max_range_days" validate:"min=1,max=366"`
}

type LogSettings struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("profiles_path", "activity-profiles.ini")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 2*time.Minute)
	v.SetDefault("fetch.pacing", 500*time.Millisecond)
	v.SetDefault("fetch.rate_limit_backoff", 2*time.Second)
	v.SetDefault("fetch.max_range_days", 90)
	v.SetDefault("log.level", "info")
}

// LoadSettings reads settings from an optional file, then ACTIVITY_* environment
// variables (e.g. ACTIVITY_SERVER_PORT), over built-in defaults.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}
