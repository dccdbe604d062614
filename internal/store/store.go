package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dorm-reservation-backend/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// ReservationFilter narrows ListReservations. Zero values match everything.
type ReservationFilter struct {
	StudentID int64
	RoomID    int64
	Status    model.ReservationStatus
}

// Store defines the interface for all orchestrator database operations.
type Store interface {
	DB() *gorm.DB
	// WithTx runs fn against a store bound to a single transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	CreateReservation(ctx context.Context, r *model.Reservation) error
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error)
	SaveReservation(ctx context.Context, r *model.Reservation) error
	DeleteReservation(ctx context.Context, id int64) error
	ListBlockingReservations(ctx context.Context, roomID int64) ([]model.Reservation, error)
	ListDueForActivation(ctx context.Context, day time.Time) ([]model.Reservation, error)
	ListOverdueActive(ctx context.Context, day time.Time) ([]model.Reservation, error)

	RecordDiscrepancy(ctx context.Context, d *model.RoomDiscrepancy) error
	ListDiscrepancies(ctx context.Context, roomID int64) ([]model.RoomDiscrepancy, error)

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptionsForStudent(ctx context.Context, studentID int64) ([]model.PushSubscription, error)
}

// Models lists every table owned by the orchestrator, for migrations.
func Models() []any {
	return []any{
		&model.Reservation{},
		&model.RoomDiscrepancy{},
		&model.PushSubscription{},
	}
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to create reservation for room %d: %w", r.RoomID, err)
	}
	return nil
}

func (s *gormStore) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	var r model.Reservation
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load reservation %d: %w", id, err)
	}
	return &r, nil
}

func (s *gormStore) ListReservations(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error) {
	q := s.db.WithContext(ctx).Model(&model.Reservation{})
	if filter.StudentID != 0 {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.RoomID != 0 {
		q = q.Where("room_id = ?", filter.RoomID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	reservations := []model.Reservation{}
	if err := q.Order("id").Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (s *gormStore) SaveReservation(ctx context.Context, r *model.Reservation) error {
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return fmt.Errorf("failed to save reservation %d: %w", r.ID, err)
	}
	return nil
}

func (s *gormStore) DeleteReservation(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Reservation{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete reservation %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListBlockingReservations returns every reservation on the room that still
// holds its dates, i.e. is neither cancelled nor completed.
func (s *gormStore) ListBlockingReservations(ctx context.Context, roomID int64) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND status NOT IN ?", roomID, []model.ReservationStatus{model.StatusCancelled, model.StatusCompleted}).
		Order("id").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations for room %d: %w", roomID, err)
	}
	return reservations, nil
}

// ListDueForActivation returns confirmed reservations whose check-in day is on or before day.
func (s *gormStore) ListDueForActivation(ctx context.Context, day time.Time) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := s.db.WithContext(ctx).
		Where("status = ? AND check_in_date <= ?", model.StatusConfirmed, datatypes.Date(day)).
		Order("check_in_date").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations due for activation: %w", err)
	}
	return reservations, nil
}

// ListOverdueActive returns active reservations whose check-out day is before day.
func (s *gormStore) ListOverdueActive(ctx context.Context, day time.Time) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := s.db.WithContext(ctx).
		Where("status = ? AND check_out_date < ?", model.StatusActive, datatypes.Date(day)).
		Order("check_out_date").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue reservations: %w", err)
	}
	return reservations, nil
}

func (s *gormStore) RecordDiscrepancy(ctx context.Context, d *model.RoomDiscrepancy) error {
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to record discrepancy for room %d: %w", d.RoomID, err)
	}
	return nil
}

func (s *gormStore) ListDiscrepancies(ctx context.Context, roomID int64) ([]model.RoomDiscrepancy, error) {
	q := s.db.WithContext(ctx).Model(&model.RoomDiscrepancy{})
	if roomID != 0 {
		q = q.Where("room_id = ?", roomID)
	}
	discrepancies := []model.RoomDiscrepancy{}
	if err := q.Order("observed_at DESC").Find(&discrepancies).Error; err != nil {
		return nil, fmt.Errorf("failed to list discrepancies: %w", err)
	}
	return discrepancies, nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"student_id", "p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subscription: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

func (s *gormStore) ListSubscriptionsForStudent(ctx context.Context, studentID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("student_id = ?", studentID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for student %d: %w", studentID, err)
	}
	return subs, nil
}
