package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bus-tracker-backend/internal/db"
	"bus-tracker-backend/internal/model"
	"bus-tracker-backend/internal/store"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	mu       sync.Mutex
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SendFunc(payload, sub, options)
}

func okResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return store.NewGormStore(gdb)
}

func TestDispatchNeverBlocks(t *testing.T) {
	wp := NewWorkerPool(1, newTestStore(t), &webpush.Options{})

	// No workers are running; the buffer holds one job and the rest
	// are skipped without blocking.
	wp.Dispatch(1)
	wp.Dispatch(2)
	wp.Dispatch(3)

	select {
	case id := <-wp.jobs:
		assert.Equal(t, int64(1), id)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for queued job")
	}
}

func TestPushesToEverySubscription(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := model.Notification{UserID: 42, Type: model.NotificationKindBoard, Title: "Boarding alert", Message: "Minji boarded the bus."}
	require.NoError(t, s.CreateNotification(ctx, &n))
	require.NoError(t, s.SavePushSubscription(ctx, &model.PushSubscription{Endpoint: "https://push.example/a", UserID: 42, P256DH: "k", Auth: "a"}))
	require.NoError(t, s.SavePushSubscription(ctx, &model.PushSubscription{Endpoint: "https://push.example/b", UserID: 42, P256DH: "k", Auth: "a"}))
	// Another user's subscription must not receive anything.
	require.NoError(t, s.SavePushSubscription(ctx, &model.PushSubscription{Endpoint: "https://push.example/c", UserID: 7, P256DH: "k", Auth: "a"}))

	wp := NewWorkerPool(1, s, &webpush.Options{})

	var mu sync.Mutex
	var endpoints []string
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			var body pushPayload
			require.NoError(t, json.Unmarshal(payload, &body))
			assert.Equal(t, "Boarding alert", body.Title)
			mu.Lock()
			endpoints = append(endpoints, sub.Endpoint)
			mu.Unlock()
			return okResponse(http.StatusCreated), nil
		},
	}

	wp.pushNotification(ctx, n.ID)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"https://push.example/a", "https://push.example/b"}, endpoints)
}

func TestExpiredSubscriptionIsDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := model.Notification{UserID: 42, Type: model.NotificationKindAlight, Title: "Alighting alert", Message: "Minji got off the bus."}
	require.NoError(t, s.CreateNotification(ctx, &n))
	require.NoError(t, s.SavePushSubscription(ctx, &model.PushSubscription{Endpoint: "https://push.example/expired", UserID: 42, P256DH: "k", Auth: "a"}))

	wp := NewWorkerPool(1, s, &webpush.Options{})
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			return okResponse(http.StatusGone), nil
		},
	}

	wp.pushNotification(ctx, n.ID)

	subs, err := s.PushSubscriptionsByUser(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestMissingNotificationIsIgnored(t *testing.T) {
	s := newTestStore(t)
	wp := NewWorkerPool(1, s, &webpush.Options{})
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			t.Fatal("send must not be called for a missing notification")
			return nil, nil
		},
	}

	wp.pushNotification(context.Background(), 9999)
}

func TestWorkerProcessesDispatchedJobs(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := model.Notification{UserID: 42, Type: model.NotificationKindBoard, Title: "Boarding alert", Message: "Minji boarded the bus."}
	require.NoError(t, s.CreateNotification(ctx, &n))
	require.NoError(t, s.SavePushSubscription(ctx, &model.PushSubscription{Endpoint: "https://push.example/a", UserID: 42, P256DH: "k", Auth: "a"}))

	wp := NewWorkerPool(2, s, &webpush.Options{})

	done := make(chan struct{})
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			close(done)
			return okResponse(http.StatusCreated), nil
		},
	}
	wp.Start(ctx)

	wp.Dispatch(n.ID)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for push delivery")
	}
}
