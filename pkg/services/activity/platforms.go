package activity

import "github.com/de-tools/activity-atlas/pkg/models/domain"

var catalog = []domain.Platform{
	{
		ID:                domain.VendorFitbit,
		Name:              "Fitbit",
		APIURL:            "https://dev.fitbit.com",
		DirectIntegration: true,
	},
	{
		ID:                domain.VendorGarmin,
		Name:              "Garmin",
		APIURL:            "https://developer.garmin.com",
		DirectIntegration: true,
	},
	{
		ID:     domain.VendorAppleHealth,
		Name:   "Apple Health",
		APIURL: "https://developer.apple.com/healthkit",
		Note:   "Reads a HealthKit export file (XML or CSV)",
	},
	{
		ID:                "googlefit",
		Name:              "Google Fit",
		APIURL:            "https://developers.google.com/fit",
		DirectIntegration: true,
		Note:              "No adapter available",
	},
}
