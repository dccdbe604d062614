package students

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"

	"dorm-reservation-backend/internal/model"
)

var (
	ErrStudentNotFound      = errors.New("student not found")
	ErrStudentAlreadyExists = errors.New("student already exists")
	ErrInvalidStudentData   = errors.New("invalid student data")
)

// CreateInput holds the fields of a new student.
type CreateInput struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Career        string `json:"career"`
	AcademicCycle *int   `json:"academicCycle"`
	StudentCode   string `json:"studentCode"`
}

// UpdateInput is a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Career        *string `json:"career"`
	AcademicCycle *int    `json:"academicCycle"`
	Active        *bool   `json:"active"`
}

// Registry owns student records and their active flag.
type Registry struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRegistry creates a student registry backed by db.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db, now: time.Now}
}

// Models lists the tables owned by the student registry.
func Models() []any {
	return []any{&model.Student{}}
}

// Create stores a new active student. Email and student code are unique.
func (r *Registry) Create(ctx context.Context, in CreateInput) (*model.Student, error) {
	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	student := &model.Student{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Phone:         in.Phone,
		Career:        in.Career,
		AcademicCycle: *in.AcademicCycle,
		StudentCode:   in.StudentCode,
		Active:        true,
		CreatedAt:     r.now(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, "email", student.Email, 0); err != nil {
			return err
		}
		if err := ensureUnique(tx, "student_code", student.StudentCode, 0); err != nil {
			return err
		}
		return tx.Create(student).Error
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

// Get returns the student with the given id.
func (r *Registry) Get(ctx context.Context, id int64) (*model.Student, error) {
	return load(r.db.WithContext(ctx), id)
}

// GetByCode returns the student with the given student code.
func (r *Registry) GetByCode(ctx context.Context, code string) (*model.Student, error) {
	var s model.Student
	if err := r.db.WithContext(ctx).First(&s, "student_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: student not found with code %s", ErrStudentNotFound, code)
		}
		return nil, err
	}
	return &s, nil
}

// List returns every student, or only the active ones, ordered by id.
func (r *Registry) List(ctx context.Context, activeOnly bool) ([]model.Student, error) {
	q := r.db.WithContext(ctx).Model(&model.Student{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	students := []model.Student{}
	if err := q.Order("id").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// Update applies a partial change. A changed email must stay unique.
func (r *Registry) Update(ctx context.Context, id int64, in UpdateInput) (*model.Student, error) {
	if in.AcademicCycle != nil && *in.AcademicCycle < 1 {
		return nil, fmt.Errorf("%w: valid academic cycle is required", ErrInvalidStudentData)
	}
	if in.Email != nil && !validEmail(*in.Email) {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidStudentData)
	}

	var s *model.Student
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if s, err = load(tx, id); err != nil {
			return err
		}
		if in.Email != nil && *in.Email != s.Email {
			if err := ensureUnique(tx, "email", *in.Email, id); err != nil {
				return err
			}
			s.Email = *in.Email
		}
		if in.FirstName != nil {
			s.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			s.LastName = *in.LastName
		}
		if in.Phone != nil {
			s.Phone = *in.Phone
		}
		if in.Career != nil {
			s.Career = *in.Career
		}
		if in.AcademicCycle != nil {
			s.AcademicCycle = *in.AcademicCycle
		}
		if in.Active != nil {
			s.Active = *in.Active
		}
		s.UpdatedAt = r.now()
		return tx.Save(s).Error
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes a student.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Student{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete student %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

// AddRoomToHistory appends roomID to the student's room history once.
func (r *Registry) AddRoomToHistory(ctx context.Context, id, roomID int64) (*model.Student, error) {
	var s *model.Student
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if s, err = load(tx, id); err != nil {
			return err
		}
		if slices.Contains(s.RoomHistory, roomID) {
			return nil
		}
		s.RoomHistory = append(s.RoomHistory, roomID)
		return tx.Model(s).Update("room_history", s.RoomHistory).Error
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func load(db *gorm.DB, id int64) (*model.Student, error) {
	var s model.Student
	if err := db.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to load student %d: %w", id, err)
	}
	return &s, nil
}

func ensureUnique(tx *gorm.DB, column, value string, exceptID int64) error {
	var count int64
	q := tx.Model(&model.Student{}).Where(column+" = ?", value)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		label := "email"
		if column == "student_code" {
			label = "code"
		}
		return fmt.Errorf("%w: student with %s %s already exists", ErrStudentAlreadyExists, label, value)
	}
	return nil
}

func notFound(id int64) error {
	return fmt.Errorf("%w: student not found with id %d", ErrStudentNotFound, id)
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validateCreate(in *CreateInput) error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.StudentCode = strings.TrimSpace(in.StudentCode)
	switch {
	case in.FirstName == "":
		return fmt.Errorf("%w: first name is required", ErrInvalidStudentData)
	case in.LastName == "":
		return fmt.Errorf("%w: last name is required", ErrInvalidStudentData)
	case !validEmail(in.Email):
		return fmt.Errorf("%w: valid email is required", ErrInvalidStudentData)
	case in.StudentCode == "":
		return fmt.Errorf("%w: student code is required", ErrInvalidStudentData)
	case in.AcademicCycle == nil || *in.AcademicCycle < 1:
		return fmt.Errorf("%w: valid academic cycle is required", ErrInvalidStudentData)
	}
	return nil
}
