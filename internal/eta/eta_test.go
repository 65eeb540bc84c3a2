package eta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmZero(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(37.5, 127.0, 37.5, 127.0))
}

func TestDistanceKmKnownPoints(t *testing.T) {
	// Seoul City Hall to Gangnam Station is roughly 8.9 km
	// as the crow flies.
	d := DistanceKm(37.5663, 126.9779, 37.4979, 127.0276)
	assert.InDelta(t, 8.9, d, 0.5)
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := DistanceKm(37.50, 127.00, 37.52, 127.03)
	b := DistanceKm(37.52, 127.03, 37.50, 127.00)
	assert.InDelta(t, a, b, 1e-9)
}

func TestMinutesRoundsUp(t *testing.T) {
	// 5 km at 30 km/h is exactly 10 minutes.
	assert.Equal(t, 10, Minutes(5, 30))
	// 5.1 km must round up to 11 minutes.
	assert.Equal(t, 11, Minutes(5.1, 30))
	// Zero distance means the bus is there.
	assert.Equal(t, 0, Minutes(0, 30))
}

func TestMinutesFallsBackToDefaultSpeed(t *testing.T) {
	assert.Equal(t, Minutes(5, DefaultAvgSpeedKmh), Minutes(5, 0))
}
