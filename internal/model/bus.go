package model

import "time"

// Trip status values. A bus is "waiting" between trips and "running"
// from driver:startTrip until driver:endTrip.
const (
	TripStatusWaiting = "waiting"
	TripStatusRunning = "running"
)

// Bus represents a shuttle bus and its current trip state.
type Bus struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"size:128;not null" json:"name"`
	PlateNumber      string     `gorm:"size:32" json:"plate_number"`
	DriverID         *int64     `gorm:"index" json:"driver_id"`
	Status           string     `gorm:"size:16;not null;default:waiting" json:"status"`
	CurrentTripStart *time.Time `json:"current_trip_start"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Associations
	Stops []Stop `gorm:"foreignKey:BusID" json:"stops,omitempty"`
}

// Stop represents a scheduled stop on a bus route.
type Stop struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	BusID     int64     `gorm:"index;not null" json:"bus_id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	StopOrder int       `gorm:"not null" json:"stop_order"`
	CreatedAt time.Time `json:"created_at"`
}
