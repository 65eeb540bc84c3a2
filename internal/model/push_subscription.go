package model

import "time"

// PushSubscription holds a browser push subscription registered by a
// user, so boarding notifications can reach parents who have no open
// websocket connection.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey" json:"endpoint"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}
