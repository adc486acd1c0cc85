// Package registry wires the supported vendor adapters into a vendor.Registry.
package registry

import (
	"github.com/de-tools/activity-atlas/pkg/models/domain"
	"github.com/de-tools/activity-atlas/pkg/services/vendor"
	"github.com/de-tools/activity-atlas/pkg/services/vendor/applehealth"
	"github.com/de-tools/activity-atlas/pkg/services/vendor/fitbit"
	"github.com/de-tools/activity-atlas/pkg/services/vendor/garmin"
)

// NewDefault returns a registry with every supported vendor.
func NewDefault() (vendor.Registry, error) {
	return vendor.NewRegistry(map[domain.Vendor]vendor.Factory{
		domain.VendorFitbit:      fitbit.NewFactory(),
		domain.VendorGarmin:      garmin.NewFactory(),
		domain.VendorAppleHealth: applehealth.NewFactory(),
	})
}
