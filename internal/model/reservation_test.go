package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReservationStatus(t *testing.T) {
	testCases := []struct {
		raw       string
		expected  ReservationStatus
		expectErr bool
	}{
		{raw: "PENDING", expected: StatusPending},
		{raw: "confirmed", expected: StatusConfirmed},
		{raw: "Active", expected: StatusActive},
		{raw: " completed ", expected: StatusCompleted},
		{raw: "cancelled", expected: StatusCancelled},
		{raw: "canceled", expectErr: true},
		{raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseReservationStatus(tc.raw)
			if tc.expectErr {
				assert.True(t, errors.Is(err, ErrUnknownStatus))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestReservationStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.False(t, StatusActive.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusActive.Blocking())
}

func TestParseRoomStatusAndType(t *testing.T) {
	st, err := ParseRoomStatus("maintenance")
	assert.NoError(t, err)
	assert.Equal(t, RoomMaintenance, st)

	_, err = ParseRoomStatus("broken")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	typ, err := ParseRoomType("suite")
	assert.NoError(t, err)
	assert.Equal(t, RoomSuite, typ)
}
