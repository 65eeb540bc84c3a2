package model

import "time"

// Notification kinds created by the real-time hub.
const (
	NotificationKindBoard  = "board"
	NotificationKindAlight = "alight"
)

// Notification is a durable per-user notification. The hub only ever
// creates rows; reading and marking read happens over the HTTP API so
// a parent who was offline at emission time can catch up later.
type Notification struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"size:32;not null" json:"type"`
	Title     string    `gorm:"size:128;not null" json:"title"`
	Message   string    `gorm:"size:512;not null" json:"message"`
	ChildID   *int64    `json:"child_id"`
	BusID     *int64    `json:"bus_id"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
