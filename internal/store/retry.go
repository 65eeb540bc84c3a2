package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"log"
	"net"
	"strings"
	"time"

	"bus-tracker-backend/internal/model"
)

// Retrying decorates a Gateway with bounded retries of transient
// connection-class failures. Non-transient errors propagate on the
// first attempt; exhausting all attempts returns the last error.
type Retrying struct {
	inner       Gateway
	maxAttempts int
	backoff     time.Duration
}

// WithRetry wraps gw so every gateway call is retried up to
// maxAttempts times with linear backoff (attempt x backoff).
func WithRetry(gw Gateway, maxAttempts int, backoff time.Duration) *Retrying {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrying{inner: gw, maxAttempts: maxAttempts, backoff: backoff}
}

// do runs fn, retrying while the error is transient.
func (r *Retrying) do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
		if attempt < r.maxAttempts {
			log.Printf("transient database error, retrying %d/%d: %v", attempt, r.maxAttempts, lastErr)
			select {
			case <-time.After(time.Duration(attempt) * r.backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

// IsTransient reports whether err looks like a connection-class
// failure worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe")
}

func (r *Retrying) RecordLocationHistory(ctx context.Context, busID int64, lat, lng, speed float64) error {
	return r.do(ctx, func() error {
		return r.inner.RecordLocationHistory(ctx, busID, lat, lng, speed)
	})
}

func (r *Retrying) SetTripState(ctx context.Context, busID int64, status string, startedAt *time.Time) error {
	return r.do(ctx, func() error {
		return r.inner.SetTripState(ctx, busID, status, startedAt)
	})
}

func (r *Retrying) AppendBoardingLog(ctx context.Context, childID, busID int64, typ string) error {
	return r.do(ctx, func() error {
		return r.inner.AppendBoardingLog(ctx, childID, busID, typ)
	})
}

func (r *Retrying) LookupChildParent(ctx context.Context, childID int64) (ChildParent, error) {
	var cp ChildParent
	err := r.do(ctx, func() error {
		var innerErr error
		cp, innerErr = r.inner.LookupChildParent(ctx, childID)
		return innerErr
	})
	return cp, err
}

func (r *Retrying) CreateNotification(ctx context.Context, n *model.Notification) error {
	return r.do(ctx, func() error {
		return r.inner.CreateNotification(ctx, n)
	})
}

func (r *Retrying) AppendEmergencyLog(ctx context.Context, busID, userID int64, message string) error {
	return r.do(ctx, func() error {
		return r.inner.AppendEmergencyLog(ctx, busID, userID, message)
	})
}
