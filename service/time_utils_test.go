package service

import (
	"testing"
	"time"

	"cactuscoin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowStart(t *testing.T) {
	// Thursday 2024-03-14 15:30 UTC
	now := time.Date(2024, time.March, 14, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		window   models.Window
		expected time.Time
	}{
		{name: "week starts monday midnight", window: models.WindowWeek, expected: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)},
		{name: "month starts on the first", window: models.WindowMonth, expected: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{name: "year starts on january first", window: models.WindowYear, expected: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := WindowStart(tt.window, now, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, start)
		})
	}
}

func TestWindowStart_OnMonday(t *testing.T) {
	monday := time.Date(2024, time.March, 11, 0, 0, 1, 0, time.UTC)

	start, err := WindowStart(models.WindowWeek, monday, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowStart_SundayBelongsToPreviousWeek(t *testing.T) {
	sunday := time.Date(2024, time.March, 17, 23, 59, 0, 0, time.UTC)

	start, err := WindowStart(models.WindowWeek, sunday, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowStart_UsesLocationMidnight(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 02:00 UTC on the 1st is still the previous month in UTC-5
	now := time.Date(2024, time.April, 1, 2, 0, 0, 0, time.UTC)

	start, err := WindowStart(models.WindowMonth, now, loc)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 1, 5, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.UTC, start.Location())
}

func TestWindowStart_UnknownWindow(t *testing.T) {
	_, err := WindowStart(models.Window("fortnight"), time.Now(), time.UTC)
	assert.Error(t, err)
}
