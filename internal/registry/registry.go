// Package registry holds the last known location of every running bus.
// It is a pure in-memory cache: nothing is persisted, and a process
// restart simply starts empty until drivers report again.
package registry

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// Sample is the latest GPS fix reported for a bus.
type Sample struct {
	BusID      int64     `json:"busId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	SpeedKmh   float64   `json:"speed"`
	CapturedAt time.Time `json:"timestamp"`
}

// Registry maps a bus id to its last known location sample. At most
// one sample exists per bus; Set overwrites unconditionally in
// delivery order, with no timestamp comparison.
type Registry struct {
	samples *cache.Cache
}

// New creates an empty registry. Samples never expire; they are only
// removed by Clear when a trip ends.
func New() *Registry {
	return &Registry{
		samples: cache.New(cache.NoExpiration, 0),
	}
}

// Set stores the sample for its bus, replacing any previous one.
func (r *Registry) Set(s Sample) {
	r.samples.Set(key(s.BusID), s, cache.NoExpiration)
}

// Get returns the current sample for busID, if any.
func (r *Registry) Get(busID int64) (Sample, bool) {
	v, ok := r.samples.Get(key(busID))
	if !ok {
		return Sample{}, false
	}
	return v.(Sample), true
}

// Clear removes the sample for busID. Called only when a trip ends.
func (r *Registry) Clear(busID int64) {
	r.samples.Delete(key(busID))
}

func key(busID int64) string {
	return strconv.FormatInt(busID, 10)
}
