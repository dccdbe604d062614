package students

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"dorm-reservation-backend/config"
	"dorm-reservation-backend/internal/mw"
	"dorm-reservation-backend/internal/parse"
)

// Handler serves the student registry over HTTP.
type Handler struct {
	registry *Registry
}

// NewHandler creates a new student handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// NewRouter creates the gin engine of the student registry.
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

// Register mounts the student routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/students", h.CreateStudent)
	rg.GET("/students", h.ListStudents)
	rg.GET("/students/active", h.ListActiveStudents)
	rg.GET("/students/code/:code", h.GetStudentByCode)
	rg.GET("/students/:id", h.GetStudent)
	rg.PUT("/students/:id", h.UpdateStudent)
	rg.DELETE("/students/:id", h.DeleteStudent)
	rg.POST("/students/:id/rooms/:roomId", h.AddRoomToHistory)
}

// CreateStudent handles POST /api/students.
func (h *Handler) CreateStudent(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.registry.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// GetStudent handles GET /api/students/:id.
func (h *Handler) GetStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetStudentByCode handles GET /api/students/code/:code.
func (h *Handler) GetStudentByCode(c *gin.Context) {
	s, err := h.registry.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// ListStudents handles GET /api/students.
func (h *Handler) ListStudents(c *gin.Context) {
	h.list(c, false)
}

// ListActiveStudents handles GET /api/students/active.
func (h *Handler) ListActiveStudents(c *gin.Context) {
	h.list(c, true)
}

func (h *Handler) list(c *gin.Context, activeOnly bool) {
	students, err := h.registry.List(c.Request.Context(), activeOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

// UpdateStudent handles PUT /api/students/:id.
func (h *Handler) UpdateStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.registry.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// DeleteStudent handles DELETE /api/students/:id.
func (h *Handler) DeleteStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.registry.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddRoomToHistory handles POST /api/students/:id/rooms/:roomId.
func (h *Handler) AddRoomToHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	roomID, ok := pathID(c, "roomId")
	if !ok {
		return
	}
	s, err := h.registry.AddRoomToHistory(c.Request.Context(), id, roomID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := parse.ID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidStudentData):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrStudentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrStudentAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
