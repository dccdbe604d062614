package rooms

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"dorm-reservation-backend/config"
	"dorm-reservation-backend/internal/model"
	"dorm-reservation-backend/internal/mw"
	"dorm-reservation-backend/internal/parse"
)

// Handler serves the room registry over HTTP.
type Handler struct {
	registry *Registry
}

// NewHandler creates a new room handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// NewRouter creates the gin engine of the room registry.
func NewRouter(registry *Registry, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()
	h := NewHandler(registry)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	api := r.Group("/api")
	api.Use(mw.RequestID(), rateLimiter)
	if cfg.CacheTTLSeconds > 0 {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		api.Use(mw.Cache(cache.New(ttl, 2*ttl), ttl))
	}
	h.Register(api)
	return r
}

// Register mounts the room routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/rooms", h.CreateRoom)
	rg.GET("/rooms", h.ListRooms)
	rg.GET("/rooms/available", h.ListAvailableRooms)
	rg.GET("/rooms/number/:number", h.GetRoomByNumber)
	rg.GET("/rooms/type/:type", h.ListRoomsByType)
	rg.GET("/rooms/status/:status", h.ListRoomsByStatus)
	rg.GET("/rooms/:id", h.GetRoom)
	rg.PUT("/rooms/:id", h.UpdateRoom)
	rg.DELETE("/rooms/:id", h.DeleteRoom)
	rg.GET("/rooms/:id/availability", h.CheckAvailability)
	rg.PATCH("/rooms/:id/status", h.SetRoomStatus)
	rg.POST("/rooms/:id/reserve", h.ReserveRoom)
	rg.POST("/rooms/:id/occupy", h.OccupyRoom)
	rg.POST("/rooms/:id/release", h.ReleaseRoom)
}

// CreateRoom handles POST /api/rooms.
func (h *Handler) CreateRoom(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	room, err := h.registry.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// GetRoom handles GET /api/rooms/:id.
func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	room, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// GetRoomByNumber handles GET /api/rooms/number/:number.
func (h *Handler) GetRoomByNumber(c *gin.Context) {
	room, err := h.registry.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// ListRooms handles GET /api/rooms.
func (h *Handler) ListRooms(c *gin.Context) {
	h.list(c, Filter{})
}

// ListAvailableRooms handles GET /api/rooms/available.
func (h *Handler) ListAvailableRooms(c *gin.Context) {
	h.list(c, Filter{Status: model.RoomAvailable})
}

// ListRoomsByType handles GET /api/rooms/type/:type.
func (h *Handler) ListRoomsByType(c *gin.Context) {
	t, err := model.ParseRoomType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.list(c, Filter{Type: t})
}

// ListRoomsByStatus handles GET /api/rooms/status/:status.
func (h *Handler) ListRoomsByStatus(c *gin.Context) {
	st, err := model.ParseRoomStatus(c.Param("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.list(c, Filter{Status: st})
}

func (h *Handler) list(c *gin.Context, filter Filter) {
	rooms, err := h.registry.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// UpdateRoom handles PUT /api/rooms/:id.
func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	room, err := h.registry.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /api/rooms/:id.
func (h *Handler) DeleteRoom(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	if err := h.registry.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckAvailability handles GET /api/rooms/:id/availability.
func (h *Handler) CheckAvailability(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	availability, err := h.registry.Availability(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

// SetRoomStatus handles PATCH /api/rooms/:id/status?status=...
func (h *Handler) SetRoomStatus(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	st, err := model.ParseRoomStatus(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.registry.SetStatus(c.Request.Context(), id, st); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// ReserveRoom handles POST /api/rooms/:id/reserve.
func (h *Handler) ReserveRoom(c *gin.Context) {
	h.transition(c, h.registry.Reserve)
}

// OccupyRoom handles POST /api/rooms/:id/occupy.
func (h *Handler) OccupyRoom(c *gin.Context) {
	h.transition(c, h.registry.Occupy)
}

// ReleaseRoom handles POST /api/rooms/:id/release.
func (h *Handler) ReleaseRoom(c *gin.Context) {
	h.transition(c, h.registry.Release)
}

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, id int64) error) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	if err := op(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func roomID(c *gin.Context) (int64, bool) {
	id, err := parse.ID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRoomData), errors.Is(err, model.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrRoomAlreadyExists), errors.Is(err, ErrRoomNotAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
