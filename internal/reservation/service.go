package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"

	"dorm-reservation-backend/internal/model"
	"dorm-reservation-backend/internal/remote"
	"dorm-reservation-backend/internal/store"
)

// RoomService is the subset of the room registry the orchestrator drives.
type RoomService interface {
	GetRoom(ctx context.Context, id int64) remote.RoomLookupResult
	CheckAvailability(ctx context.Context, id int64) remote.Availability
	ReserveRoom(ctx context.Context, id int64) error
	OccupyRoom(ctx context.Context, id int64) error
	ReleaseRoom(ctx context.Context, id int64) error
}

// StudentDirectory resolves students by id.
type StudentDirectory interface {
	GetStudent(ctx context.Context, id int64) remote.StudentLookupResult
}

// Notifier receives an event after every committed lifecycle change.
// Notify must not block.
type Notifier interface {
	Notify(event model.ReservationEvent)
}

// CreateInput holds the fields needed to create a reservation.
// Dates are calendar days; only their year, month and day are used.
type CreateInput struct {
	StudentID int64
	RoomID    int64
	CheckIn   time.Time
	CheckOut  time.Time
	Notes     string
}

// UpdateInput is a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	Status   *model.ReservationStatus
	Notes    *string
}

// Service coordinates reservation state with the room and student registries.
type Service struct {
	store    store.Store
	rooms    RoomService
	students StudentDirectory
	notifier Notifier
	now      func() time.Time
	loc      *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone that decides which calendar day is today.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithNotifier registers a receiver for committed lifecycle events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService creates the reservation orchestrator.
func NewService(st store.Store, rooms RoomService, students StudentDirectory, opts ...Option) *Service {
	s := &Service{
		store:    st,
		rooms:    rooms,
		students: students,
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar day in the configured timezone.
func (s *Service) Today() time.Time {
	return Day(s.now(), s.loc)
}

// Create validates the request, reserves the room remotely and persists a
// PENDING reservation. No record is written unless the remote reserve succeeded.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Reservation, error) {
	if err := validateCreate(in, s.Today()); err != nil {
		return nil, err
	}
	checkIn, checkOut := Day(in.CheckIn, nil), Day(in.CheckOut, nil)

	if err := s.requireActiveStudent(ctx, in.StudentID); err != nil {
		return nil, err
	}

	availability := s.rooms.CheckAvailability(ctx, in.RoomID)
	if !availability.Available {
		return nil, fmt.Errorf("%w: room %d is not available: %s", ErrRoomNotAvailable, in.RoomID, availability.Message)
	}

	r := &model.Reservation{
		StudentID:    in.StudentID,
		RoomID:       in.RoomID,
		CheckInDate:  datatypes.Date(checkIn),
		CheckOutDate: datatypes.Date(checkOut),
		Status:       model.StatusPending,
		Notes:        in.Notes,
	}

	reserved := false
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		if err := s.checkConflicts(ctx, tx, in.RoomID, checkIn, checkOut, 0); err != nil {
			return err
		}

		if err := s.rooms.ReserveRoom(ctx, in.RoomID); err != nil {
			return fmt.Errorf("%w: failed to reserve room: %v", ErrRoomNotAvailable, err)
		}
		reserved = true

		r.CreatedAt = s.now()
		return tx.CreateReservation(ctx, r)
	})
	if err != nil {
		if reserved {
			s.recordDiscrepancy(ctx, r.RoomID, 0, "reserve",
				fmt.Sprintf("room reserved but reservation was not stored: %v", err))
		}
		return nil, err
	}

	s.notify(r)
	return r, nil
}

// Get returns the reservation with the given id.
func (s *Service) Get(ctx context.Context, id int64) (*model.Reservation, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, notFound(id, err)
	}
	return r, nil
}

// List returns the reservations matching filter, ordered by id.
func (s *Service) List(ctx context.Context, filter store.ReservationFilter) ([]model.Reservation, error) {
	return s.store.ListReservations(ctx, filter)
}

// ListByStudent returns every reservation held by a student.
func (s *Service) ListByStudent(ctx context.Context, studentID int64) ([]model.Reservation, error) {
	return s.List(ctx, store.ReservationFilter{StudentID: studentID})
}

// ListByRoom returns every reservation on a room.
func (s *Service) ListByRoom(ctx context.Context, roomID int64) ([]model.Reservation, error) {
	return s.List(ctx, store.ReservationFilter{RoomID: roomID})
}

// ListByStatus returns every reservation in the given status.
func (s *Service) ListByStatus(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error) {
	return s.List(ctx, store.ReservationFilter{Status: status})
}

// ListActive returns the reservations currently in ACTIVE.
func (s *Service) ListActive(ctx context.Context) ([]model.Reservation, error) {
	return s.ListByStatus(ctx, model.StatusActive)
}

// ListDueForActivation returns CONFIRMED reservations whose check-in day has arrived.
func (s *Service) ListDueForActivation(ctx context.Context) ([]model.Reservation, error) {
	return s.store.ListDueForActivation(ctx, s.Today())
}

// ListOverdue returns ACTIVE reservations whose check-out day has passed.
func (s *Service) ListOverdue(ctx context.Context) ([]model.Reservation, error) {
	return s.store.ListOverdueActive(ctx, s.Today())
}

// Update applies a partial change. New dates are revalidated against the
// room's other reservations. A status change goes through the generic guard
// and issues no remote call.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*model.Reservation, error) {
	var r *model.Reservation
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		r, err = tx.GetReservation(ctx, id)
		if err != nil {
			return notFound(id, err)
		}
		if err := guardMutable(r.Status); err != nil {
			return err
		}

		if in.CheckIn != nil || in.CheckOut != nil {
			checkIn, checkOut := r.CheckIn(), r.CheckOut()
			if in.CheckIn != nil {
				checkIn = Day(*in.CheckIn, nil)
			}
			if in.CheckOut != nil {
				checkOut = Day(*in.CheckOut, nil)
			}
			if err := validateDates(checkIn, checkOut, s.Today()); err != nil {
				return err
			}
			if err := s.checkConflicts(ctx, tx, r.RoomID, checkIn, checkOut, r.ID); err != nil {
				return err
			}
			r.CheckInDate = datatypes.Date(checkIn)
			r.CheckOutDate = datatypes.Date(checkOut)
		}

		if in.Status != nil {
			if err := guardStatusChange(r.Status, *in.Status); err != nil {
				return err
			}
			r.Status = *in.Status
		}

		if in.Notes != nil {
			r.Notes = *in.Notes
		}

		s.touch(r)
		return tx.SaveReservation(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		s.notify(r)
	}
	return r, nil
}

// Delete removes a reservation. ACTIVE reservations must be cancelled first.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(tx store.Store) error {
		r, err := tx.GetReservation(ctx, id)
		if err != nil {
			return notFound(id, err)
		}
		if err := guardDelete(r.Status); err != nil {
			return err
		}
		if err := tx.DeleteReservation(ctx, id); err != nil {
			return notFound(id, err)
		}
		return nil
	})
}

// Confirm moves a PENDING reservation to CONFIRMED.
func (s *Service) Confirm(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.transition(ctx, id, guardConfirm, model.StatusConfirmed, nil)
}

// Activate occupies the room and moves the reservation to ACTIVE.
func (s *Service) Activate(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.transition(ctx, id, guardActivate, model.StatusActive, func(r *model.Reservation) error {
		if err := s.rooms.OccupyRoom(ctx, r.RoomID); err != nil {
			return fmt.Errorf("%w: failed to occupy room: %v", ErrRoomNotAvailable, err)
		}
		return nil
	})
}

// Complete releases the room and moves the reservation to COMPLETED.
func (s *Service) Complete(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.transition(ctx, id, guardComplete, model.StatusCompleted, func(r *model.Reservation) error {
		if err := s.rooms.ReleaseRoom(ctx, r.RoomID); err != nil {
			return fmt.Errorf("%w: failed to release room: %v", ErrRoomNotAvailable, err)
		}
		return nil
	})
}

// Cancel moves the reservation to CANCELLED. Releasing the room is best
// effort: a failed release is logged and recorded but never blocks the cancellation.
// An empty reason is stored as no reason.
func (s *Service) Cancel(ctx context.Context, id int64, reason string) (*model.Reservation, error) {
	var releaseErr error
	r, err := s.transition(ctx, id, guardCancel, model.StatusCancelled, func(r *model.Reservation) error {
		if r.Status.Blocking() {
			if err := s.rooms.ReleaseRoom(ctx, r.RoomID); err != nil {
				log.Printf("Warning: failed to release room %d while cancelling reservation %d: %v", r.RoomID, r.ID, err)
				releaseErr = err
			}
		}
		cancelledAt := s.now()
		r.CancelledAt = &cancelledAt
		r.CancellationReason = nil
		if reason != "" {
			r.CancellationReason = &reason
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if releaseErr != nil {
		s.recordDiscrepancy(ctx, r.RoomID, r.ID, "release",
			fmt.Sprintf("reservation cancelled but room was not released: %v", releaseErr))
	}
	return r, nil
}

// transition loads the reservation, checks guard before any side effect, runs
// the optional remote step and then persists the new status.
func (s *Service) transition(
	ctx context.Context,
	id int64,
	guard func(model.ReservationStatus) error,
	next model.ReservationStatus,
	remoteStep func(r *model.Reservation) error,
) (*model.Reservation, error) {
	var r *model.Reservation
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		r, err = tx.GetReservation(ctx, id)
		if err != nil {
			return notFound(id, err)
		}
		if err := guard(r.Status); err != nil {
			return err
		}
		if remoteStep != nil {
			if err := remoteStep(r); err != nil {
				return err
			}
		}
		r.Status = next
		s.touch(r)
		return tx.SaveReservation(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	s.notify(r)
	return r, nil
}

func (s *Service) requireActiveStudent(ctx context.Context, studentID int64) error {
	res := s.students.GetStudent(ctx, studentID)
	switch res.Kind {
	case remote.Found:
		if !res.Student.Active {
			return fmt.Errorf("%w: student with id %d is not active", ErrStudentNotFound, studentID)
		}
		return nil
	case remote.NotFound:
		return fmt.Errorf("%w: student not found with id %d", ErrStudentNotFound, studentID)
	default:
		return fmt.Errorf("%w: student %d could not be verified: %s", ErrStudentNotFound, studentID, res.Reason)
	}
}

func (s *Service) checkConflicts(ctx context.Context, st store.Store, roomID int64, checkIn, checkOut time.Time, excludeID int64) error {
	existing, err := st.ListBlockingReservations(ctx, roomID)
	if err != nil {
		return err
	}
	if conflicts := FindConflicts(existing, checkIn, checkOut, excludeID); len(conflicts) > 0 {
		return conflictError(roomID, conflicts)
	}
	return nil
}

func (s *Service) touch(r *model.Reservation) {
	now := s.now()
	r.UpdatedAt = &now
}

func (s *Service) notify(r *model.Reservation) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(model.ReservationEvent{
		ReservationID: r.ID,
		StudentID:     r.StudentID,
		RoomID:        r.RoomID,
		Status:        r.Status,
		At:            s.now(),
	})
}

// recordDiscrepancy appends to the discrepancy log. Nothing acts on it.
func (s *Service) recordDiscrepancy(ctx context.Context, roomID, reservationID int64, op, reason string) {
	log.Printf("Discrepancy: room %d (%s): %s", roomID, op, reason)
	d := &model.RoomDiscrepancy{
		RoomID:        roomID,
		ReservationID: reservationID,
		Operation:     op,
		Reason:        reason,
		ObservedAt:    s.now(),
	}
	if err := s.store.RecordDiscrepancy(ctx, d); err != nil {
		log.Printf("Error recording discrepancy for room %d: %v", roomID, err)
	}
}

// RoomFor returns the reservation together with the room registry's current view of its room.
func (s *Service) RoomFor(ctx context.Context, id int64) (*model.Reservation, remote.RoomLookupResult, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, remote.RoomLookupResult{}, err
	}
	return r, s.rooms.GetRoom(ctx, r.RoomID), nil
}

// ListDiscrepancies returns the discrepancy log, newest first. roomID 0 lists all rooms.
func (s *Service) ListDiscrepancies(ctx context.Context, roomID int64) ([]model.RoomDiscrepancy, error) {
	return s.store.ListDiscrepancies(ctx, roomID)
}

func notFound(id int64, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: reservation not found with id %d", ErrReservationNotFound, id)
	}
	return err
}
