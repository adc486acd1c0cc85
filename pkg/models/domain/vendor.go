package domain

import (
	"fmt"
	"time"
)

// Vendor tags the closed set of supported data sources.
type Vendor string

const (
	VendorFitbit      Vendor = "fitbit"
	VendorGarmin      Vendor = "garmin"
	VendorAppleHealth Vendor = "applehealth"
	// VendorManual marks a series supplied directly by the caller.
	VendorManual Vendor = "manual"
)

type PayloadKind string

const (
	PayloadSummary  PayloadKind = "summary"
	PayloadIntraday PayloadKind = "intraday"
)

// RawPayload is a vendor response body for one calendar date, before normalisation.
type RawPayload struct {
	Vendor Vendor
	Kind   PayloadKind
	Date   time.Time
	Body   []byte
}

// Profile is a named set of vendor settings, e.g. one section of the profiles file.
type Profile struct {
	Name     string
	Vendor   Vendor
	Settings map[string]string
}

func (p Profile) String() string {
	return fmt.Sprintf("%s:%s", p.Vendor, p.Name)
}

// Setting returns the value for key, or def when the key is unset or empty.
func (p Profile) Setting(key, def string) string {
	if v, ok := p.Settings[key]; ok && v != "" {
		return v
	}
	return def
}

// Platform describes a fitness platform and whether this build can read it.
type Platform struct {
	ID                Vendor
	Name              string
	APIURL            string
	DirectIntegration bool
	Supported         bool
	Note              string
}
