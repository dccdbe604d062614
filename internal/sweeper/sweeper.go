package sweeper

import (
	"context"
	"log"
	"time"

	"dorm-reservation-backend/config"
	"dorm-reservation-backend/internal/model"
)

// Lifecycle is the part of the reservation orchestrator the sweeper drives.
type Lifecycle interface {
	ListDueForActivation(ctx context.Context) ([]model.Reservation, error)
	ListOverdue(ctx context.Context) ([]model.Reservation, error)
	Activate(ctx context.Context, id int64) (*model.Reservation, error)
	Complete(ctx context.Context, id int64) (*model.Reservation, error)
}

// Result summarizes one sweep.
type Result struct {
	Due       int
	Overdue   int
	Activated int
	Completed int
}

// Service periodically looks for reservations whose dates have caught up with them.
type Service struct {
	cfg       config.SweeperConfig
	lifecycle Lifecycle
}

// NewService creates a new sweeper.
func NewService(cfg config.SweeperConfig, lifecycle Lifecycle) *Service {
	return &Service{cfg: cfg, lifecycle: lifecycle}
}

// Run sweeps once immediately and then every configured interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Sweeper is disabled. Not starting.")
		return
	}
	log.Println("Starting reservation sweeper...")

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweeper shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SweepOnce lists due and overdue reservations and, when configured, moves
// them forward through the orchestrator. Failures are logged and skipped.
func (s *Service) SweepOnce(ctx context.Context) Result {
	log.Println("Executing sweep cycle...")
	var res Result

	due, err := s.lifecycle.ListDueForActivation(ctx)
	if err != nil {
		log.Printf("Error listing reservations due for activation: %v", err)
	}
	res.Due = len(due)
	for _, r := range due {
		if !s.cfg.AutoActivate {
			log.Printf("Reservation %d (room %d) is due for check-in since %s", r.ID, r.RoomID, r.CheckIn().Format("2006-01-02"))
			continue
		}
		if _, err := s.lifecycle.Activate(ctx, r.ID); err != nil {
			log.Printf("Error activating reservation %d: %v", r.ID, err)
			continue
		}
		res.Activated++
	}

	overdue, err := s.lifecycle.ListOverdue(ctx)
	if err != nil {
		log.Printf("Error listing overdue reservations: %v", err)
	}
	res.Overdue = len(overdue)
	for _, r := range overdue {
		if !s.cfg.AutoComplete {
			log.Printf("Reservation %d (room %d) is past its check-out of %s", r.ID, r.RoomID, r.CheckOut().Format("2006-01-02"))
			continue
		}
		if _, err := s.lifecycle.Complete(ctx, r.ID); err != nil {
			log.Printf("Error completing reservation %d: %v", r.ID, err)
			continue
		}
		res.Completed++
	}

	log.Printf("Sweep cycle finished: %d due, %d overdue, %d activated, %d completed.",
		res.Due, res.Overdue, res.Activated, res.Completed)
	return res
}
