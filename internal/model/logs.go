package model

import "time"

// Boarding log entry types.
const (
	BoardingTypeBoard  = "board"
	BoardingTypeAlight = "alight"
)

// LocationHistory is an append-only record of a reported GPS fix.
type LocationHistory struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	BusID     int64     `gorm:"index;not null" json:"bus_id"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	Speed     float64   `gorm:"not null" json:"speed"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BoardingLog is an append-only record of a child entering or leaving
// a bus. ChildID carries no foreign key constraint: the append happens
// before the child/parent lookup and must succeed even for an id the
// roster does not know.
type BoardingLog struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ChildID   int64     `gorm:"index;not null" json:"child_id"`
	BusID     int64     `gorm:"index;not null" json:"bus_id"`
	Type      string    `gorm:"size:16;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// EmergencyLog is an append-only record of an emergency report.
type EmergencyLog struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	BusID     int64     `gorm:"index;not null" json:"bus_id"`
	UserID    int64     `gorm:"not null" json:"user_id"`
	Message   string    `gorm:"size:512;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
