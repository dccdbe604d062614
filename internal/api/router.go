package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"dorm-reservation-backend/config"
	"dorm-reservation-backend/internal/mw"
	"dorm-reservation-backend/internal/reservation"
	"dorm-reservation-backend/internal/store"
)

// NewRouter creates and configures the orchestrator's Gin router.
func NewRouter(svc *reservation.Service, s store.Store, webpushOptions *webpush.Options, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()
	handler := NewHandler(svc, s, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	api := r.Group("/api")
	api.Use(mw.RequestID(), rateLimiter)
	if cfg.CacheTTLSeconds > 0 {
		// Any successful write flushes the whole cache.
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		api.Use(mw.Cache(cache.New(ttl, 2*ttl), ttl))
	}
	{
		api.POST("/reservations", handler.CreateReservation)
		api.GET("/reservations", handler.ListReservations)
		api.GET("/reservations/active", handler.ListActiveReservations)
		api.GET("/reservations/student/:studentId", handler.ListReservationsByStudent)
		api.GET("/reservations/room/:roomId", handler.ListReservationsByRoom)
		api.GET("/reservations/status/:status", handler.ListReservationsByStatus)
		api.GET("/reservations/:id", handler.GetReservation)
		api.PUT("/reservations/:id", handler.UpdateReservation)
		api.DELETE("/reservations/:id", handler.DeleteReservation)
		api.GET("/reservations/:id/room", handler.GetReservationRoom)
		api.POST("/reservations/:id/confirm", handler.ConfirmReservation)
		api.POST("/reservations/:id/activate", handler.ActivateReservation)
		api.POST("/reservations/:id/complete", handler.CompleteReservation)
		api.POST("/reservations/:id/cancel", handler.CancelReservation)

		api.GET("/discrepancies", handler.ListDiscrepancies)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
