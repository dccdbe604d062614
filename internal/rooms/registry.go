package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dorm-reservation-backend/internal/model"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrInvalidRoomData   = errors.New("invalid room data")
	ErrRoomNotAvailable  = errors.New("room not available")
)

// CreateInput holds the fields of a new room.
type CreateInput struct {
	RoomNumber         string         `json:"roomNumber"`
	Type               model.RoomType `json:"type"`
	Capacity           *int           `json:"capacity"`
	Floor              *int           `json:"floor"`
	PricePerMonth      *float64       `json:"pricePerMonth"`
	Description        string         `json:"description"`
	AdditionalServices []string       `json:"additionalServices"`
}

// UpdateInput is a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Type               *model.RoomType   `json:"type"`
	Status             *model.RoomStatus `json:"status"`
	Capacity           *int              `json:"capacity"`
	PricePerMonth      *float64          `json:"pricePerMonth"`
	Description        *string           `json:"description"`
	AdditionalServices []string          `json:"additionalServices"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Type   model.RoomType
	Status model.RoomStatus
}

// Availability answers whether a room can be reserved right now.
type Availability struct {
	RoomID    int64  `json:"roomId"`
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// Registry owns rooms and their status.
type Registry struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRegistry creates a room registry backed by db.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db, now: time.Now}
}

// Models lists the tables owned by the room registry.
func Models() []any {
	return []any{&model.Room{}}
}

// Create stores a new AVAILABLE room. Room numbers are unique.
func (r *Registry) Create(ctx context.Context, in CreateInput) (*model.Room, error) {
	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	room := &model.Room{
		RoomNumber:         in.RoomNumber,
		Type:               in.Type,
		Status:             model.RoomAvailable,
		Capacity:           *in.Capacity,
		Floor:              *in.Floor,
		PricePerMonth:      *in.PricePerMonth,
		Description:        in.Description,
		AdditionalServices: in.AdditionalServices,
		CreatedAt:          r.now(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Room{}).Where("room_number = ?", room.RoomNumber).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: room with number %s already exists", ErrRoomAlreadyExists, room.RoomNumber)
		}
		return tx.Create(room).Error
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// Get returns the room with the given id.
func (r *Registry) Get(ctx context.Context, id int64) (*model.Room, error) {
	return r.load(r.db.WithContext(ctx), id)
}

// GetByNumber returns the room with the given room number.
func (r *Registry) GetByNumber(ctx context.Context, number string) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).First(&room, "room_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: room not found with number %s", ErrRoomNotFound, number)
		}
		return nil, err
	}
	return &room, nil
}

// List returns the rooms matching filter, ordered by id.
func (r *Registry) List(ctx context.Context, filter Filter) ([]model.Room, error) {
	q := r.db.WithContext(ctx).Model(&model.Room{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	rooms := []model.Room{}
	if err := q.Order("id").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// ListAvailable returns the rooms currently AVAILABLE.
func (r *Registry) ListAvailable(ctx context.Context) ([]model.Room, error) {
	return r.List(ctx, Filter{Status: model.RoomAvailable})
}

// Update applies a partial change to a room.
func (r *Registry) Update(ctx context.Context, id int64, in UpdateInput) (*model.Room, error) {
	if in.Capacity != nil && *in.Capacity < 1 {
		return nil, fmt.Errorf("%w: valid capacity is required", ErrInvalidRoomData)
	}
	if in.PricePerMonth != nil && *in.PricePerMonth <= 0 {
		return nil, fmt.Errorf("%w: valid price per month is required", ErrInvalidRoomData)
	}
	if in.Type != nil {
		t, err := model.ParseRoomType(string(*in.Type))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRoomData, err)
		}
		in.Type = &t
	}
	if in.Status != nil {
		st, err := model.ParseRoomStatus(string(*in.Status))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRoomData, err)
		}
		in.Status = &st
	}

	var room *model.Room
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if room, err = r.lockForUpdate(tx, id); err != nil {
			return err
		}
		if in.Type != nil {
			room.Type = *in.Type
		}
		if in.Status != nil {
			room.Status = *in.Status
		}
		if in.Capacity != nil {
			room.Capacity = *in.Capacity
		}
		if in.PricePerMonth != nil {
			room.PricePerMonth = *in.PricePerMonth
		}
		if in.Description != nil {
			room.Description = *in.Description
		}
		if in.AdditionalServices != nil {
			room.AdditionalServices = in.AdditionalServices
		}
		room.UpdatedAt = r.now()
		return tx.Save(room).Error
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// Delete removes a room.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Room{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete room %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

// Availability reports whether the room is AVAILABLE.
func (r *Registry) Availability(ctx context.Context, id int64) (Availability, error) {
	room, err := r.Get(ctx, id)
	if err != nil {
		return Availability{}, err
	}
	if room.Status == model.RoomAvailable {
		return Availability{RoomID: id, Available: true, Message: "Room is available"}, nil
	}
	return Availability{
		RoomID:    id,
		Available: false,
		Message:   "Room is " + strings.ToLower(string(room.Status)),
	}, nil
}

// SetStatus forces the room into status, whatever its current state.
func (r *Registry) SetStatus(ctx context.Context, id int64, status model.RoomStatus) error {
	return r.transition(ctx, id, status, nil)
}

// Reserve moves an AVAILABLE room to RESERVED.
func (r *Registry) Reserve(ctx context.Context, id int64) error {
	return r.transition(ctx, id, model.RoomReserved, func(room *model.Room) error {
		if room.Status != model.RoomAvailable {
			return fmt.Errorf("%w: room %s is not available for reservation", ErrRoomNotAvailable, room.RoomNumber)
		}
		return nil
	})
}

// Occupy moves a RESERVED or AVAILABLE room to OCCUPIED.
func (r *Registry) Occupy(ctx context.Context, id int64) error {
	return r.transition(ctx, id, model.RoomOccupied, func(room *model.Room) error {
		if room.Status != model.RoomReserved && room.Status != model.RoomAvailable {
			return fmt.Errorf("%w: room %s cannot be occupied", ErrRoomNotAvailable, room.RoomNumber)
		}
		return nil
	})
}

// Release makes the room AVAILABLE from any state.
func (r *Registry) Release(ctx context.Context, id int64) error {
	return r.transition(ctx, id, model.RoomAvailable, nil)
}

// transition locks the row, runs guard and writes the new status in one transaction.
func (r *Registry) transition(ctx context.Context, id int64, next model.RoomStatus, guard func(*model.Room) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := r.lockForUpdate(tx, id)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(room); err != nil {
				return err
			}
		}
		return tx.Model(room).Updates(map[string]any{
			"status":     next,
			"updated_at": r.now(),
		}).Error
	})
}

func (r *Registry) lockForUpdate(tx *gorm.DB, id int64) (*model.Room, error) {
	return r.load(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *Registry) load(db *gorm.DB, id int64) (*model.Room, error) {
	var room model.Room
	if err := db.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to load room %d: %w", id, err)
	}
	return &room, nil
}

func notFound(id int64) error {
	return fmt.Errorf("%w: room not found with id %d", ErrRoomNotFound, id)
}

func validateCreate(in *CreateInput) error {
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	switch {
	case in.RoomNumber == "":
		return fmt.Errorf("%w: room number is required", ErrInvalidRoomData)
	case in.Type == "":
		return fmt.Errorf("%w: room type is required", ErrInvalidRoomData)
	case in.Capacity == nil || *in.Capacity < 1:
		return fmt.Errorf("%w: valid capacity is required", ErrInvalidRoomData)
	case in.Floor == nil:
		return fmt.Errorf("%w: floor is required", ErrInvalidRoomData)
	case in.PricePerMonth == nil || *in.PricePerMonth <= 0:
		return fmt.Errorf("%w: valid price per month is required", ErrInvalidRoomData)
	}
	t, err := model.ParseRoomType(string(in.Type))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRoomData, err)
	}
	in.Type = t
	return nil
}
