package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bus-tracker-backend/internal/model"
)

// ChildStop joins a child with its assigned bus and stop coordinates,
// as needed by the ETA endpoint.
type ChildStop struct {
	Child model.Child
	Stop  *model.Stop
}

// CreateUser inserts a new user row.
func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

// UserByEmail fetches a user by email address.
func (s *gormStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListBuses returns all buses with their current trip status.
func (s *gormStore) ListBuses(ctx context.Context) ([]model.Bus, error) {
	var buses []model.Bus
	if err := s.db.WithContext(ctx).Order("id").Find(&buses).Error; err != nil {
		return nil, err
	}
	return buses, nil
}

// StopsByBus returns a bus's stops in route order.
func (s *gormStore) StopsByBus(ctx context.Context, busID int64) ([]model.Stop, error) {
	var stops []model.Stop
	err := s.db.WithContext(ctx).
		Where("bus_id = ?", busID).
		Order("stop_order ASC").
		Find(&stops).Error
	if err != nil {
		return nil, err
	}
	return stops, nil
}

// ChildrenByParent returns all children assigned to a parent.
func (s *gormStore) ChildrenByParent(ctx context.Context, parentID int64) ([]model.Child, error) {
	var children []model.Child
	if err := s.db.WithContext(ctx).Where("parent_id = ?", parentID).Find(&children).Error; err != nil {
		return nil, err
	}
	return children, nil
}

// ChildWithStop fetches a child together with its stop, when assigned.
func (s *gormStore) ChildWithStop(ctx context.Context, childID int64) (*ChildStop, error) {
	var child model.Child
	err := s.db.WithContext(ctx).First(&child, childID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cs := &ChildStop{Child: child}
	if child.StopID != nil {
		var stop model.Stop
		if err := s.db.WithContext(ctx).First(&stop, *child.StopID).Error; err == nil {
			cs.Stop = &stop
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return cs, nil
}

// Notifications returns a user's notifications, newest first.
func (s *gormStore) Notifications(ctx context.Context, userID int64) ([]model.Notification, error) {
	var list []model.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
func (s *gormStore) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// NotificationByID fetches a single notification row.
func (s *gormStore) NotificationByID(ctx context.Context, id int64) (*model.Notification, error) {
	var n model.Notification
	err := s.db.WithContext(ctx).First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification %d: %w", id, err)
	}
	return &n, nil
}

// PushSubscriptionsByUser returns all push subscriptions a user registered.
func (s *gormStore) PushSubscriptionsByUser(ctx context.Context, userID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
