package remote

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/sony/gobreaker"

	"dorm-reservation-backend/config"
)

// Student is the student registry's record as seen by the orchestrator.
type Student struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	StudentCode string `json:"studentCode"`
	Active      bool   `json:"active"`
}

// StudentLookupResult is the outcome of GetStudent. Student is only
// meaningful when Kind is Found.
type StudentLookupResult struct {
	Kind    LookupKind
	Student Student
	Reason  string
}

// StudentClient calls the student registry.
type StudentClient struct {
	http  *httpClient
	getCB *gobreaker.CircuitBreaker
}

// NewStudentClient creates a client for the student registry at cfg.BaseURL.
func NewStudentClient(cfg config.ServiceEndpoint) *StudentClient {
	return &StudentClient{
		http:  newHTTPClient(cfg),
		getCB: newBreaker("student-get", cfg.Breaker),
	}
}

// GetStudent fetches a student by id.
func (c *StudentClient) GetStudent(ctx context.Context, id int64) StudentLookupResult {
	out, err := execute(c.getCB, func() (any, error) {
		var s Student
		if err := c.http.do(ctx, http.MethodGet, fmt.Sprintf("/students/%d", id), &s); err != nil {
			return nil, err
		}
		return s, nil
	})
	switch {
	case err == nil:
		return StudentLookupResult{Kind: Found, Student: out.(Student)}
	case IsStatus(err, http.StatusNotFound):
		return StudentLookupResult{Kind: NotFound, Reason: fmt.Sprintf("student not found with id %d", id)}
	default:
		log.Printf("CircuitBreaker: student service unavailable (student %d): %v", id, err)
		return StudentLookupResult{Kind: Unavailable, Reason: ErrServiceUnavailable.Error()}
	}
}
