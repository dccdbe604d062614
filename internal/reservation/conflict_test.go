package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"dorm-reservation-backend/internal/model"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                 string
		aIn, aOut, bIn, bOut string
		want                 bool
	}{
		{"disjoint before", "2024-06-01", "2024-06-10", "2024-06-11", "2024-06-20", false},
		{"disjoint after", "2024-06-11", "2024-06-20", "2024-06-01", "2024-06-10", false},
		{"shared boundary day", "2024-06-01", "2024-06-10", "2024-06-10", "2024-06-15", true},
		{"partial overlap", "2024-06-01", "2024-06-10", "2024-06-05", "2024-06-15", true},
		{"contained", "2024-06-01", "2024-06-30", "2024-06-05", "2024-06-06", true},
		{"identical", "2024-06-01", "2024-06-10", "2024-06-01", "2024-06-10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(date(tt.aIn), date(tt.aOut), date(tt.bIn), date(tt.bOut))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Overlaps(date(tt.bIn), date(tt.bOut), date(tt.aIn), date(tt.aOut)))
		})
	}
}

func TestFindConflicts(t *testing.T) {
	res := func(id int64, status model.ReservationStatus, in, out string) model.Reservation {
		return model.Reservation{
			ID:           id,
			RoomID:       10,
			Status:       status,
			CheckInDate:  datatypes.Date(date(in)),
			CheckOutDate: datatypes.Date(date(out)),
		}
	}
	existing := []model.Reservation{
		res(1, model.StatusConfirmed, "2024-06-01", "2024-06-10"),
		res(2, model.StatusCancelled, "2024-06-05", "2024-06-15"),
		res(3, model.StatusCompleted, "2024-06-05", "2024-06-15"),
		res(4, model.StatusPending, "2024-06-20", "2024-06-25"),
	}

	conflicts := FindConflicts(existing, date("2024-06-05"), date("2024-06-15"), 0)
	if assert.Len(t, conflicts, 1) {
		assert.Equal(t, int64(1), conflicts[0].ID)
	}

	assert.Empty(t, FindConflicts(existing, date("2024-06-05"), date("2024-06-15"), 1))
	assert.Empty(t, FindConflicts(existing, date("2024-06-11"), date("2024-06-19"), 0))
	assert.Len(t, FindConflicts(existing, date("2024-06-01"), date("2024-06-30"), 0), 2)
}

func TestDay(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	if err != nil {
		t.Skip("timezone data not available")
	}
	instant := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)

	assert.Equal(t, date("2024-06-01"), Day(instant, time.UTC))
	assert.Equal(t, date("2024-05-31"), Day(instant, lima))
}
