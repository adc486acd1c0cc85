package canonical

import (
	"testing"
	"time"

	"github.com/de-tools/activity-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket(t *testing.T) {
	tests := []struct {
		minute   int
		expected int
	}{
		{0, 0},
		{4, 0},
		{5, 5},
		{509, 505},
		{1439, 1435},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, Bucket(tc.minute), "minute %d", tc.minute)
	}
}

func TestBuild(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("empty payload is zero filled", func(t *testing.T) {
		series := Build(date, nil)

		require.Len(t, series, 1)
		assert.Equal(t, domain.Sample{Date: date, Interval: 0, Steps: 0}, series[0])
	})

	t.Run("duplicates in one bucket are summed", func(t *testing.T) {
		series := Build(date, []Reading{
			{Hour: 8, Minute: 1, Steps: 10},
			{Hour: 8, Minute: 3, Steps: 5},
			{Hour: 8, Minute: 4, Steps: 1},
			{Hour: 0, Minute: 0, Steps: 2},
		})

		require.Len(t, series, 2)
		assert.Equal(t, 0, series[0].Interval)
		assert.Equal(t, 2.0, series[0].Steps)
		assert.Equal(t, 480, series[1].Interval)
		assert.Equal(t, 16.0, series[1].Steps)
	})

	t.Run("bucket is missing only when every reading is missing", func(t *testing.T) {
		series := Build(date, []Reading{
			{Hour: 9, Minute: 0, Missing: true},
			{Hour: 9, Minute: 2, Steps: 7},
			{Hour: 10, Minute: 0, Missing: true},
		})

		require.Len(t, series, 2)
		assert.False(t, series[0].Missing)
		assert.Equal(t, 7.0, series[0].Steps)
		assert.True(t, series[1].Missing)
		assert.Equal(t, 600, series[1].Interval)
	})

	t.Run("date is normalised to midnight", func(t *testing.T) {
		series := Build(date.Add(13*time.Hour), []Reading{{Hour: 1, Minute: 0, Steps: 1}})

		require.Len(t, series, 1)
		assert.Equal(t, date, series[0].Date)
	})

	t.Run("negative readings never produce negative steps", func(t *testing.T) {
		series := Build(date, []Reading{{Hour: 1, Minute: 0, Steps: -4}})

		require.Len(t, series, 1)
		assert.Equal(t, 0.0, series[0].Steps)
	})
}

func TestConcat(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	a := Summary(d1, 100)
	b := Summary(d2, 200)

	out := Concat(a, b)
	out[0].Steps = 1

	require.Len(t, out, 2)
	assert.Equal(t, 100.0, a[0].Steps)
	assert.Equal(t, d2, out[1].Date)
}
