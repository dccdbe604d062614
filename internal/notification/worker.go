package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"dorm-reservation-backend/internal/model"
	"dorm-reservation-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool delivers reservation events to the student's push subscriptions.
type WorkerPool struct {
	size    int
	jobs    chan model.ReservationEvent
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool with a queue of queueSize events.
func NewWorkerPool(size, queueSize int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan model.ReservationEvent, queueSize),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case event := <-wp.jobs:
			log.Printf("Worker %d processing reservation %d (%s)", id, event.ReservationID, event.Status)
			wp.sendNotificationsForEvent(ctx, event)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Notify queues an event. It never blocks: when the queue is full the event is dropped.
func (wp *WorkerPool) Notify(event model.ReservationEvent) {
	select {
	case wp.jobs <- event:
	default:
		log.Printf("Notification queue full, dropping event for reservation %d", event.ReservationID)
	}
}

// Message renders the text pushed to the student for event.
func Message(event model.ReservationEvent) string {
	switch event.Status {
	case model.StatusPending:
		return fmt.Sprintf("Your reservation #%d for room %d was received.", event.ReservationID, event.RoomID)
	case model.StatusConfirmed:
		return fmt.Sprintf("Your reservation #%d for room %d is confirmed.", event.ReservationID, event.RoomID)
	case model.StatusActive:
		return fmt.Sprintf("Welcome! Reservation #%d is active, room %d is yours.", event.ReservationID, event.RoomID)
	case model.StatusCompleted:
		return fmt.Sprintf("Reservation #%d for room %d is completed.", event.ReservationID, event.RoomID)
	case model.StatusCancelled:
		return fmt.Sprintf("Reservation #%d for room %d was cancelled.", event.ReservationID, event.RoomID)
	default:
		return fmt.Sprintf("Reservation #%d changed to %s.", event.ReservationID, event.Status)
	}
}

func (wp *WorkerPool) sendNotificationsForEvent(ctx context.Context, event model.ReservationEvent) {
	subscriptions, err := wp.store.ListSubscriptionsForStudent(ctx, event.StudentID)
	if err != nil {
		log.Printf("Error fetching subscriptions for student %d: %v", event.StudentID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for reservation %d", len(subscriptions), event.ReservationID)
	message := []byte(Message(event))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, message)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
