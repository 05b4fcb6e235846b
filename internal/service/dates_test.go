package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDays(t *testing.T) {
	got, err := addDays("2026-04-06", 7)
	require.NoError(t, err)
	assert.Equal(t, "2026-04-13", got)

	got, err = addDays("2026-04-06", -1)
	require.NoError(t, err)
	assert.Equal(t, "2026-04-05", got)

	// Month and year boundaries.
	got, err = addDays("2026-12-31", 1)
	require.NoError(t, err)
	assert.Equal(t, "2027-01-01", got)

	// Leap day.
	got, err = addDays("2028-02-28", 1)
	require.NoError(t, err)
	assert.Equal(t, "2028-02-29", got)

	_, err = addDays("04/06/2026", 1)
	require.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	d, err := daysBetween("2026-04-06", "2026-04-13")
	require.NoError(t, err)
	assert.Equal(t, 7, d)

	d, err = daysBetween("2026-04-13", "2026-04-06")
	require.NoError(t, err)
	assert.Equal(t, -7, d)

	d, err = daysBetween("2026-04-06", "2026-04-06")
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = daysBetween("2026-04-06", "bad")
	require.Error(t, err)
}
