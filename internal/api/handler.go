package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"dorm-reservation-backend/internal/reservation"
	"dorm-reservation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	reservations *reservation.Service
	store        store.Store
	webpush      *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(svc *reservation.Service, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		reservations: svc,
		store:        s,
		webpush:      webpushOptions,
	}
}
