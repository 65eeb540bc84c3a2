package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus-tracker-backend/internal/model"
)

// ErrNotFound is returned by lookups when the referenced row does not exist.
var ErrNotFound = errors.New("store: not found")

// ChildParent is the result of resolving a child to its parent, used
// when building boarding notifications.
type ChildParent struct {
	ParentID  int64
	ChildName string
}

// Gateway is the persistence interface consumed by the real-time hub.
type Gateway interface {
	RecordLocationHistory(ctx context.Context, busID int64, lat, lng, speed float64) error
	SetTripState(ctx context.Context, busID int64, status string, startedAt *time.Time) error
	AppendBoardingLog(ctx context.Context, childID, busID int64, typ string) error
	LookupChildParent(ctx context.Context, childID int64) (ChildParent, error)
	CreateNotification(ctx context.Context, n *model.Notification) error
	AppendEmergencyLog(ctx context.Context, busID, userID int64, message string) error
}

// Store is the full database interface: the hub-facing Gateway plus
// the queries used by the HTTP API.
type Store interface {
	Gateway

	DB() *gorm.DB

	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	ListBuses(ctx context.Context) ([]model.Bus, error)
	StopsByBus(ctx context.Context, busID int64) ([]model.Stop, error)
	ChildrenByParent(ctx context.Context, parentID int64) ([]model.Child, error)
	ChildWithStop(ctx context.Context, childID int64) (*ChildStop, error)
	Notifications(ctx context.Context, userID int64) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID int64) error
	PushSubscriptionsByUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)
	SavePushSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeletePushSubscription(ctx context.Context, endpoint string) error
	NotificationByID(ctx context.Context, id int64) (*model.Notification, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying gorm handle for read-only HTTP handlers.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// RecordLocationHistory appends a reported GPS fix to the history log.
func (s *gormStore) RecordLocationHistory(ctx context.Context, busID int64, lat, lng, speed float64) error {
	h := model.LocationHistory{
		BusID:     busID,
		Latitude:  lat,
		Longitude: lng,
		Speed:     speed,
	}
	if err := s.db.WithContext(ctx).Create(&h).Error; err != nil {
		return fmt.Errorf("failed to record location history for bus %d: %w", busID, err)
	}
	return nil
}

// SetTripState updates a bus's trip status and start timestamp.
func (s *gormStore) SetTripState(ctx context.Context, busID int64, status string, startedAt *time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.Bus{}).
		Where("id = ?", busID).
		Updates(map[string]any{
			"status":             status,
			"current_trip_start": startedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to set trip state for bus %d: %w", busID, res.Error)
	}
	return nil
}

// AppendBoardingLog records a board/alight event. It succeeds even for
// a child id the roster does not know; the parent lookup happens after.
func (s *gormStore) AppendBoardingLog(ctx context.Context, childID, busID int64, typ string) error {
	entry := model.BoardingLog{
		ChildID: childID,
		BusID:   busID,
		Type:    typ,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append boarding log for child %d: %w", childID, err)
	}
	return nil
}

// LookupChildParent resolves a child to its parent id and display name.
func (s *gormStore) LookupChildParent(ctx context.Context, childID int64) (ChildParent, error) {
	var child model.Child
	err := s.db.WithContext(ctx).Select("parent_id", "name").First(&child, childID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ChildParent{}, ErrNotFound
	}
	if err != nil {
		return ChildParent{}, fmt.Errorf("failed to look up child %d: %w", childID, err)
	}
	return ChildParent{ParentID: child.ParentID, ChildName: child.Name}, nil
}

// CreateNotification persists a notification row for a user.
func (s *gormStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification for user %d: %w", n.UserID, err)
	}
	return nil
}

// AppendEmergencyLog records an emergency report.
func (s *gormStore) AppendEmergencyLog(ctx context.Context, busID, userID int64, message string) error {
	entry := model.EmergencyLog{
		BusID:   busID,
		UserID:  userID,
		Message: message,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append emergency log for bus %d: %w", busID, err)
	}
	return nil
}

// SavePushSubscription inserts or replaces a browser push subscription.
func (s *gormStore) SavePushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
}

// DeletePushSubscription removes a subscription by endpoint.
func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}
