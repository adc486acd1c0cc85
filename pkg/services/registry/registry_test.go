package registry

import (
	"context"
	"testing"

	"github.com/de-tools/activity-atlas/pkg/models/domain"
	"github.com/de-tools/activity-atlas/pkg/services/vendor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	r, err := NewDefault()
	require.NoError(t, err)

	assert.Equal(t, []domain.Vendor{
		domain.VendorAppleHealth,
		domain.VendorFitbit,
		domain.VendorGarmin,
	}, r.ListVendors())

	_, err = r.Create(context.Background(), domain.Profile{Name: "x", Vendor: domain.VendorManual})
	assert.ErrorIs(t, err, vendor.ErrUnsupportedVendor)

	a, err := r.Create(context.Background(), domain.Profile{
		Name:     "me",
		Vendor:   domain.VendorFitbit,
		Settings: map[string]string{"access_token": "tok"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VendorFitbit, a.Vendor())
}
