package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetThenGetReturnsSample(t *testing.T) {
	r := New()

	s := Sample{BusID: 7, Latitude: 37.1, Longitude: 127.1, SpeedKmh: 20, CapturedAt: time.Now()}
	r.Set(s)

	got, ok := r.Get(7)
	assert.True(t, ok)
	assert.Equal(t, s, got)
}

func TestGetUnknownBus(t *testing.T) {
	r := New()

	_, ok := r.Get(99)
	assert.False(t, ok)
}

func TestClearRemovesSample(t *testing.T) {
	r := New()

	r.Set(Sample{BusID: 7, Latitude: 37.1, Longitude: 127.1})
	r.Clear(7)

	_, ok := r.Get(7)
	assert.False(t, ok)
}

func TestLastWriterWins(t *testing.T) {
	r := New()

	// The second write always replaces the first, even when its
	// capture time is older. Only delivery order matters.
	s1 := Sample{BusID: 3, Latitude: 37.50, Longitude: 127.00, SpeedKmh: 15, CapturedAt: time.Now()}
	s2 := Sample{BusID: 3, Latitude: 37.51, Longitude: 127.01, SpeedKmh: 10, CapturedAt: s1.CapturedAt.Add(-time.Minute)}

	r.Set(s1)
	r.Set(s2)

	got, ok := r.Get(3)
	assert.True(t, ok)
	assert.Equal(t, s2, got)
}

func TestBusesAreIndependent(t *testing.T) {
	r := New()

	r.Set(Sample{BusID: 1, Latitude: 1})
	r.Set(Sample{BusID: 2, Latitude: 2})
	r.Clear(1)

	_, ok := r.Get(1)
	assert.False(t, ok)
	got, ok := r.Get(2)
	assert.True(t, ok)
	assert.Equal(t, float64(2), got.Latitude)
}
