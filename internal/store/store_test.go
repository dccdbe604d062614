package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dorm-reservation-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(Models()...))
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})
	return NewGormStore(gormDB)
}

func day(s string) datatypes.Date {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return datatypes.Date(d)
}

func TestGormStore_GetReservation(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE "reservations"."id" = \$1 ORDER BY "reservations"."id" LIMIT \$[0-9]+`).
			WithArgs(7, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "room_id", "status"}).
				AddRow(7, 1, 10, "CONFIRMED"))

		r, err := s.GetReservation(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(10), r.RoomID)
		assert.Equal(t, model.StatusConfirmed, r.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE "reservations"."id" = \$1`).
			WithArgs(8, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := s.GetReservation(context.Background(), 8)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStore_ListBlockingReservations(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE room_id = \$1 AND status NOT IN \(\$2,\$3\) ORDER BY id`).
		WithArgs(10, "CANCELLED", "COMPLETED").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "status"}).
			AddRow(1, 10, "PENDING").
			AddRow(2, 10, "ACTIVE"))

	got, err := s.ListBlockingReservations(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteReservation_NoRows(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "reservations" WHERE "reservations"."id" = $1`)).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.DeleteReservation(context.Background(), 42)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_RecordDiscrepancy(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "room_discrepancies"`)).
		WithArgs(10, 3, "release", "room service down", Any{}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := s.RecordDiscrepancy(context.Background(), &model.RoomDiscrepancy{
		RoomID:        10,
		ReservationID: 3,
		Operation:     "release",
		Reason:        "room service down",
		ObservedAt:    time.Now(),
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_LifecycleQueries(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	fixtures := []model.Reservation{
		{StudentID: 1, RoomID: 10, CheckInDate: day("2024-06-01"), CheckOutDate: day("2024-06-10"), Status: model.StatusConfirmed, CreatedAt: now},
		{StudentID: 2, RoomID: 10, CheckInDate: day("2024-06-20"), CheckOutDate: day("2024-06-25"), Status: model.StatusConfirmed, CreatedAt: now},
		{StudentID: 3, RoomID: 11, CheckInDate: day("2024-05-01"), CheckOutDate: day("2024-05-30"), Status: model.StatusActive, CreatedAt: now},
		{StudentID: 4, RoomID: 12, CheckInDate: day("2024-05-01"), CheckOutDate: day("2024-06-05"), Status: model.StatusActive, CreatedAt: now},
		{StudentID: 1, RoomID: 10, CheckInDate: day("2024-06-03"), CheckOutDate: day("2024-06-04"), Status: model.StatusCancelled, CreatedAt: now},
	}
	for i := range fixtures {
		require.NoError(t, s.CreateReservation(ctx, &fixtures[i]))
	}

	today := time.Time(day("2024-06-01"))

	due, err := s.ListDueForActivation(ctx, today)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, fixtures[0].ID, due[0].ID)

	overdue, err := s.ListOverdueActive(ctx, today)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, fixtures[2].ID, overdue[0].ID)

	blocking, err := s.ListBlockingReservations(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, blocking, 2)

	byStudent, err := s.ListReservations(ctx, ReservationFilter{StudentID: 1})
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	cancelled, err := s.ListReservations(ctx, ReservationFilter{Status: model.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "2024-06-03", cancelled[0].CheckIn().Format("2006-01-02"))
}

func TestGormStore_WithTxRollsBack(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx Store) error {
		r := &model.Reservation{StudentID: 1, RoomID: 10, CheckInDate: day("2024-06-01"), CheckOutDate: day("2024-06-02"), Status: model.StatusPending, CreatedAt: time.Now()}
		if err := tx.CreateReservation(ctx, r); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := s.ListReservations(ctx, ReservationFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGormStore_Subscriptions(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	sub := &model.PushSubscription{Endpoint: "https://push.example/1", StudentID: 5, P256DH: "k1", Auth: "a1"}
	require.NoError(t, s.UpsertSubscription(ctx, sub))

	sub.P256DH = "k2"
	require.NoError(t, s.UpsertSubscription(ctx, sub))

	got, err := s.GetSubscription(ctx, "https://push.example/1")
	require.NoError(t, err)
	assert.Equal(t, "k2", got.P256DH)

	subs, err := s.ListSubscriptionsForStudent(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	require.NoError(t, s.DeleteSubscription(ctx, "https://push.example/1"))
	_, err = s.GetSubscription(ctx, "https://push.example/1")
	assert.ErrorIs(t, err, ErrNotFound)
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
