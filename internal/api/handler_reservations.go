package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dorm-reservation-backend/internal/model"
	"dorm-reservation-backend/internal/parse"
	"dorm-reservation-backend/internal/remote"
	"dorm-reservation-backend/internal/reservation"
	"dorm-reservation-backend/internal/store"
)

// ReservationResponse is the wire shape of a reservation.
type ReservationResponse struct {
	ID                 int64                   `json:"id"`
	StudentID          int64                   `json:"studentId"`
	RoomID             int64                   `json:"roomId"`
	CheckInDate        string                  `json:"checkInDate"`
	CheckOutDate       string                  `json:"checkOutDate"`
	Status             model.ReservationStatus `json:"status"`
	Notes              string                  `json:"notes"`
	CreatedAt          time.Time               `json:"createdAt"`
	UpdatedAt          *time.Time              `json:"updatedAt,omitempty"`
	CancelledAt        *time.Time              `json:"cancelledAt,omitempty"`
	CancellationReason *string                 `json:"cancellationReason,omitempty"`
}

func toResponse(r *model.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:                 r.ID,
		StudentID:          r.StudentID,
		RoomID:             r.RoomID,
		CheckInDate:        parse.FormatDate(r.CheckIn()),
		CheckOutDate:       parse.FormatDate(r.CheckOut()),
		Status:             r.Status,
		Notes:              r.Notes,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		CancelledAt:        r.CancelledAt,
		CancellationReason: r.CancellationReason,
	}
}

func toResponses(rs []model.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for i := range rs {
		out = append(out, toResponse(&rs[i]))
	}
	return out
}

type createReservationRequest struct {
	StudentID    int64  `json:"studentId"`
	RoomID       int64  `json:"roomId"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	Notes        string `json:"notes"`
}

type updateReservationRequest struct {
	CheckInDate  string  `json:"checkInDate"`
	CheckOutDate string  `json:"checkOutDate"`
	Status       string  `json:"status"`
	Notes        *string `json:"notes"`
}

type cancelReservationRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

// CreateReservation handles POST /api/reservations.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Missing dates are left zero so the orchestrator reports them as required.
	in := reservation.CreateInput{StudentID: req.StudentID, RoomID: req.RoomID, Notes: req.Notes}
	checkIn, err := parse.OptionalDate(req.CheckInDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkOut, err := parse.OptionalDate(req.CheckOutDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if checkIn != nil {
		in.CheckIn = *checkIn
	}
	if checkOut != nil {
		in.CheckOut = *checkOut
	}

	r, err := h.reservations.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(r))
}

// GetReservation handles GET /api/reservations/:id.
func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.reservations.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

// ListReservations handles GET /api/reservations.
func (h *Handler) ListReservations(c *gin.Context) {
	h.list(c, store.ReservationFilter{})
}

// ListActiveReservations handles GET /api/reservations/active.
func (h *Handler) ListActiveReservations(c *gin.Context) {
	h.list(c, store.ReservationFilter{Status: model.StatusActive})
}

// ListReservationsByStudent handles GET /api/reservations/student/:studentId.
func (h *Handler) ListReservationsByStudent(c *gin.Context) {
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	h.list(c, store.ReservationFilter{StudentID: studentID})
}

// ListReservationsByRoom handles GET /api/reservations/room/:roomId.
func (h *Handler) ListReservationsByRoom(c *gin.Context) {
	roomID, ok := pathID(c, "roomId")
	if !ok {
		return
	}
	h.list(c, store.ReservationFilter{RoomID: roomID})
}

// ListReservationsByStatus handles GET /api/reservations/status/:status.
func (h *Handler) ListReservationsByStatus(c *gin.Context) {
	status, err := model.ParseReservationStatus(c.Param("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.list(c, store.ReservationFilter{Status: status})
}

func (h *Handler) list(c *gin.Context, filter store.ReservationFilter) {
	rs, err := h.reservations.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(rs))
}

// UpdateReservation handles PUT /api/reservations/:id.
func (h *Handler) UpdateReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := reservation.UpdateInput{Notes: req.Notes}
	var err error
	if in.CheckIn, err = parse.OptionalDate(req.CheckInDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.CheckOut, err = parse.OptionalDate(req.CheckOutDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != "" {
		status, err := model.ParseReservationStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		in.Status = &status
	}

	r, err := h.reservations.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

// DeleteReservation handles DELETE /api/reservations/:id.
func (h *Handler) DeleteReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reservations.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ConfirmReservation handles POST /api/reservations/:id/confirm.
func (h *Handler) ConfirmReservation(c *gin.Context) {
	h.transition(c, h.reservations.Confirm)
}

// ActivateReservation handles POST /api/reservations/:id/activate.
func (h *Handler) ActivateReservation(c *gin.Context) {
	h.transition(c, h.reservations.Activate)
}

// CompleteReservation handles POST /api/reservations/:id/complete.
func (h *Handler) CompleteReservation(c *gin.Context) {
	h.transition(c, h.reservations.Complete)
}

// CancelReservation handles POST /api/reservations/:id/cancel. The body is optional.
func (h *Handler) CancelReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req cancelReservationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	r, err := h.reservations.Cancel(c.Request.Context(), id, req.CancellationReason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

type transitionFunc func(ctx context.Context, id int64) (*model.Reservation, error)

func (h *Handler) transition(c *gin.Context, op transitionFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := op(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

// GetReservationRoom handles GET /api/reservations/:id/room and returns the
// room registry's current view of the reserved room.
func (h *Handler) GetReservationRoom(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	_, lookup, err := h.reservations.RoomFor(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	switch lookup.Kind {
	case remote.Found:
		c.JSON(http.StatusOK, lookup.Room)
	case remote.NotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": lookup.Reason})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": lookup.Reason})
	}
}

// ListDiscrepancies handles GET /api/discrepancies?roomId=...
func (h *Handler) ListDiscrepancies(c *gin.Context) {
	var roomID int64
	if raw := c.Query("roomId"); raw != "" {
		id, err := parse.ID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
			return
		}
		roomID = id
	}
	ds, err := h.reservations.ListDiscrepancies(c.Request.Context(), roomID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := parse.ID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reservation.ErrInvalidReservationData), errors.Is(err, model.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrReservationNotFound), errors.Is(err, reservation.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrRoomNotAvailable), errors.Is(err, reservation.ErrReservationConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrInvalidReservationStatus):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
