package students

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(Models()...))
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})
	return NewRegistry(gormDB)
}

func ptr[T any](v T) *T { return &v }

func validStudent(code, email string) CreateInput {
	return CreateInput{
		FirstName:     "Ana",
		LastName:      "Quispe",
		Email:         email,
		Career:        "Systems Engineering",
		AcademicCycle: ptr(3),
		StudentCode:   code,
	}
}

func TestRegistry_Create(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	s, err := reg.Create(ctx, validStudent("U2024001", "ana@uni.edu"))
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.True(t, s.Active)

	_, err = reg.Create(ctx, validStudent("U2024002", "ana@uni.edu"))
	assert.ErrorIs(t, err, ErrStudentAlreadyExists)
	assert.Contains(t, err.Error(), "email")

	_, err = reg.Create(ctx, validStudent("U2024001", "other@uni.edu"))
	assert.ErrorIs(t, err, ErrStudentAlreadyExists)
	assert.Contains(t, err.Error(), "code")

	byCode, err := reg.GetByCode(ctx, "U2024001")
	require.NoError(t, err)
	assert.Equal(t, s.ID, byCode.ID)

	_, err = reg.GetByCode(ctx, "missing")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestRegistry_CreateValidation(t *testing.T) {
	reg := newTestRegistry(t)

	invalid := map[string]func(in *CreateInput){
		"missing first name": func(in *CreateInput) { in.FirstName = " " },
		"missing last name":  func(in *CreateInput) { in.LastName = "" },
		"bad email":          func(in *CreateInput) { in.Email = "not-an-email" },
		"missing code":       func(in *CreateInput) { in.StudentCode = "" },
		"zero cycle":         func(in *CreateInput) { in.AcademicCycle = ptr(0) },
		"missing cycle":      func(in *CreateInput) { in.AcademicCycle = nil },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			in := validStudent("X1", "x1@uni.edu")
			mutate(&in)
			_, err := reg.Create(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidStudentData)
		})
	}
}

func TestRegistry_UpdateAndList(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	a, err := reg.Create(ctx, validStudent("A1", "a@uni.edu"))
	require.NoError(t, err)
	b, err := reg.Create(ctx, validStudent("B1", "b@uni.edu"))
	require.NoError(t, err)

	_, err = reg.Update(ctx, b.ID, UpdateInput{Email: ptr("a@uni.edu")})
	assert.ErrorIs(t, err, ErrStudentAlreadyExists)

	// Keeping the same email is not a conflict.
	updated, err := reg.Update(ctx, a.ID, UpdateInput{Email: ptr("a@uni.edu"), Active: ptr(false), AcademicCycle: ptr(4)})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, 4, updated.AcademicCycle)

	active, err := reg.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)

	all, err := reg.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = reg.Update(ctx, a.ID, UpdateInput{AcademicCycle: ptr(0)})
	assert.ErrorIs(t, err, ErrInvalidStudentData)
	_, err = reg.Update(ctx, 999, UpdateInput{Phone: ptr("999")})
	assert.ErrorIs(t, err, ErrStudentNotFound)

	require.NoError(t, reg.Delete(ctx, a.ID))
	assert.ErrorIs(t, reg.Delete(ctx, a.ID), ErrStudentNotFound)
	_, err = reg.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestRegistry_AddRoomToHistory(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	s, err := reg.Create(ctx, validStudent("H1", "h@uni.edu"))
	require.NoError(t, err)

	_, err = reg.AddRoomToHistory(ctx, s.ID, 10)
	require.NoError(t, err)
	_, err = reg.AddRoomToHistory(ctx, s.ID, 12)
	require.NoError(t, err)
	_, err = reg.AddRoomToHistory(ctx, s.ID, 10)
	require.NoError(t, err)

	stored, err := reg.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 12}, []int64(stored.RoomHistory))

	_, err = reg.AddRoomToHistory(ctx, 999, 10)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}
