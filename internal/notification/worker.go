package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"bus-tracker-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// pushPayload is the JSON body delivered to the browser.
type pushPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	ChildID *int64 `json:"childId,omitempty"`
	BusID   *int64 `json:"busId,omitempty"`
}

// WorkerPool delivers persisted notifications to the recipient's
// registered browser push subscriptions. The hub dispatches a
// notification id after the row is created; delivery here is
// best-effort on top of the durable record.
type WorkerPool struct {
	size    int
	jobs    chan int64
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// Dispatch queues a persisted notification for push delivery. It never
// blocks the caller: when all workers are busy and the buffer is full,
// the push is skipped, since the durable notification row already
// guarantees the parent can catch up over the HTTP API.
func (wp *WorkerPool) Dispatch(notificationID int64) {
	select {
	case wp.jobs <- notificationID:
	default:
		log.Printf("push queue full, skipping push for notification %d", notificationID)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("push worker %d started", id)
	for {
		select {
		case notificationID := <-wp.jobs:
			wp.pushNotification(ctx, notificationID)
		case <-ctx.Done():
			log.Printf("push worker %d shutting down", id)
			return
		}
	}
}

// pushNotification loads the notification and fans it out to every
// subscription the recipient registered.
func (wp *WorkerPool) pushNotification(ctx context.Context, notificationID int64) {
	n, err := wp.store.NotificationByID(ctx, notificationID)
	if err != nil {
		log.Printf("error fetching notification %d: %v", notificationID, err)
		return
	}

	subs, err := wp.store.PushSubscriptionsByUser(ctx, n.UserID)
	if err != nil {
		log.Printf("error fetching push subscriptions for user %d: %v", n.UserID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{
		Title:   n.Title,
		Message: n.Message,
		ChildID: n.ChildID,
		BusID:   n.BusID,
	})
	if err != nil {
		log.Printf("error encoding push payload for notification %d: %v", notificationID, err)
		return
	}

	log.Printf("pushing notification %d to %d subscriptions", notificationID, len(subs))
	for _, sub := range subs {
		wp.send(ctx, sub.Endpoint, sub.P256DH, sub.Auth, payload)
	}
}

// send delivers one push message and prunes expired subscriptions.
func (wp *WorkerPool) send(ctx context.Context, endpoint, p256dh, authKey string, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: endpoint,
		Keys: webpush.Keys{
			P256dh: p256dh,
			Auth:   authKey,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending push to %s: %v", endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s expired, deleting", endpoint)
		if err := wp.store.DeletePushSubscription(ctx, endpoint); err != nil {
			log.Printf("failed to delete expired subscription %s: %v", endpoint, err)
		}
	}
}
