package config

import (
	"fmt"
	"sync"

	"github.com/de-tools/activity-atlas/pkg/models/domain"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate checks the `validate` struct tags of v.
func Validate(v any) error {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate.Struct(v)
}

// DecodeProfile decodes the string settings of a profile into out using its
// mapstructure tags, applying defaults for unset keys, then validates it.
func DecodeProfile(profile domain.Profile, defaults map[string]any, out any) error {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, value := range profile.Settings {
		if value == "" {
			continue
		}
		v.Set(key, value)
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to parse profile %s: %w", profile.Name, err)
	}
	if err := Validate(out); err != nil {
		return fmt.Errorf("invalid profile %s: %w", profile.Name, err)
	}
	return nil
}
