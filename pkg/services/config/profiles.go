package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/activity-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

const vendorKey = "vendor"

var ErrProfileNotFound = errors.New("profile not found")

// Registry exposes the vendor profiles of an ini file, one section per profile:
//
//	[my-fitbit]
//	vendor = fitbit
//	client_id = ...
type Registry interface {
	GetProfiles(ctx context.Context) ([]domain.Profile, error)
	GetProfile(ctx context.Context, name string) (domain.Profile, error)
}

type iniRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles from %s: %w", path, err)
	}
	return &iniRegistry{cfg: cfg}, nil
}

// NewRegistryFromBytes parses profiles from an in-memory ini document.
func NewRegistryFromBytes(data []byte) (Registry, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	return &iniRegistry{cfg: cfg}, nil
}

func (r *iniRegistry) GetProfiles(_ context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		profiles = append(profiles, sectionToProfile(section))
	}
	return profiles, nil
}

func (r *iniRegistry) GetProfile(_ context.Context, name string) (domain.Profile, error) {
	section, err := r.cfg.GetSection(name)
	if err != nil || len(section.Keys()) == 0 {
		return domain.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	profile := sectionToProfile(section)
	if profile.Vendor == "" {
		return domain.Profile{}, fmt.Errorf("profile %s has no %q key", name, vendorKey)
	}
	return profile, nil
}

func sectionToProfile(section *ini.Section) domain.Profile {
	settings := make(map[string]string, len(section.Keys()))
	for _, key := range section.Keys() {
		if key.Name() == vendorKey {
			continue
		}
		settings[key.Name()] = key.String()
	}
	return domain.Profile{
		Name:     section.Name(),
		Vendor:   domain.Vendor(section.Key(vendorKey).String()),
		Settings: settings,
	}
}
