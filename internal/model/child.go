package model

import "time"

// Child represents a child assigned to a parent, and optionally to a
// bus and a boarding stop.
type Child struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ParentID  int64     `gorm:"index;not null" json:"parent_id"`
	BusID     *int64    `gorm:"index" json:"bus_id"`
	StopID    *int64    `json:"stop_id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
