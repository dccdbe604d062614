package remote

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/sony/gobreaker"

	"dorm-reservation-backend/config"
	"dorm-reservation-backend/internal/model"
)

// LookupKind tags the outcome of a remote lookup.
type LookupKind int

const (
	Found LookupKind = iota + 1
	NotFound
	Unavailable
)

func (k LookupKind) String() string {
	switch k {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// RoomSnapshot is the room registry's view of a room at the time of the call.
type RoomSnapshot struct {
	ID         int64            `json:"id"`
	RoomNumber string           `json:"roomNumber"`
	Type       model.RoomType   `json:"type"`
	Status     model.RoomStatus `json:"status"`
	Capacity   int              `json:"capacity"`
	Floor      int              `json:"floor"`
}

// RoomLookupResult is the outcome of GetRoom. Room is only meaningful when Kind is Found.
type RoomLookupResult struct {
	Kind   LookupKind
	Room   RoomSnapshot
	Reason string
}

// Availability is the room registry's answer to an availability check.
// Fallback is set when the answer was synthesized because the call failed.
type Availability struct {
	RoomID    int64  `json:"roomId"`
	Available bool   `json:"available"`
	Message   string `json:"message"`
	Fallback  bool   `json:"-"`
}

// RoomClient calls the room registry. Every operation has its own breaker.
type RoomClient struct {
	http           *httpClient
	getCB          *gobreaker.CircuitBreaker
	availabilityCB *gobreaker.CircuitBreaker
	reserveCB      *gobreaker.CircuitBreaker
	occupyCB       *gobreaker.CircuitBreaker
	releaseCB      *gobreaker.CircuitBreaker
}

// NewRoomClient creates a client for the room registry at cfg.BaseURL.
func NewRoomClient(cfg config.ServiceEndpoint) *RoomClient {
	return &RoomClient{
		http:           newHTTPClient(cfg),
		getCB:          newBreaker("room-get", cfg.Breaker),
		availabilityCB: newBreaker("room-availability", cfg.Breaker),
		reserveCB:      newBreaker("room-reserve", cfg.Breaker),
		occupyCB:       newBreaker("room-occupy", cfg.Breaker),
		releaseCB:      newBreaker("room-release", cfg.Breaker),
	}
}

// GetRoom fetches a room snapshot.
func (c *RoomClient) GetRoom(ctx context.Context, id int64) RoomLookupResult {
	out, err := execute(c.getCB, func() (any, error) {
		var snap RoomSnapshot
		if err := c.http.do(ctx, http.MethodGet, fmt.Sprintf("/rooms/%d", id), &snap); err != nil {
			return nil, err
		}
		return snap, nil
	})
	switch {
	case err == nil:
		return RoomLookupResult{Kind: Found, Room: out.(RoomSnapshot)}
	case IsStatus(err, http.StatusNotFound):
		return RoomLookupResult{Kind: NotFound, Reason: fmt.Sprintf("room %d not found", id)}
	default:
		log.Printf("CircuitBreaker: room service unavailable (room %d): %v", id, err)
		return RoomLookupResult{Kind: Unavailable, Reason: ErrServiceUnavailable.Error()}
	}
}

// CheckAvailability asks whether the room can be reserved right now. It never
// fails; a failed call yields an unavailable answer with Fallback set.
func (c *RoomClient) CheckAvailability(ctx context.Context, id int64) Availability {
	out, err := execute(c.availabilityCB, func() (any, error) {
		var a Availability
		if err := c.http.do(ctx, http.MethodGet, fmt.Sprintf("/rooms/%d/availability", id), &a); err != nil {
			return nil, err
		}
		return a, nil
	})
	switch {
	case err == nil:
		return out.(Availability)
	case IsStatus(err, http.StatusNotFound):
		return Availability{RoomID: id, Available: false, Message: fmt.Sprintf("room not found with id %d", id)}
	default:
		log.Printf("CircuitBreaker: room service unavailable (availability %d): %v", id, err)
		return Availability{RoomID: id, Available: false, Message: ErrServiceUnavailable.Error(), Fallback: true}
	}
}

// ReserveRoom marks the room RESERVED.
func (c *RoomClient) ReserveRoom(ctx context.Context, id int64) error {
	return c.transition(ctx, c.reserveCB, id, "reserve")
}

// OccupyRoom marks the room OCCUPIED.
func (c *RoomClient) OccupyRoom(ctx context.Context, id int64) error {
	return c.transition(ctx, c.occupyCB, id, "occupy")
}

// ReleaseRoom marks the room AVAILABLE.
func (c *RoomClient) ReleaseRoom(ctx context.Context, id int64) error {
	return c.transition(ctx, c.releaseCB, id, "release")
}

// transition has no silent fallback: callers always see a failure.
func (c *RoomClient) transition(ctx context.Context, cb *gobreaker.CircuitBreaker, id int64, op string) error {
	_, err := execute(cb, func() (any, error) {
		return nil, c.http.do(ctx, http.MethodPost, fmt.Sprintf("/rooms/%d/%s", id, op), nil)
	})
	if err == nil {
		return nil
	}
	if countsAsSuccess(err) {
		return fmt.Errorf("could not %s room %d: %w", op, id, err)
	}
	log.Printf("CircuitBreaker: room service unavailable (%s %d): %v", op, id, err)
	return fmt.Errorf("could not %s room %d: %w", op, id, asUnavailable(err))
}
