package reservation

import (
	"fmt"
	"time"

	"dorm-reservation-backend/internal/model"
)

// Overlaps reports whether the closed day ranges [aIn, aOut] and [bIn, bOut] intersect.
// Sharing a single boundary day counts as an overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return !aIn.After(bOut) && !aOut.Before(bIn)
}

// FindConflicts returns the reservations in existing that still block their
// room and overlap [checkIn, checkOut]. excludeID is skipped so a reservation
// never conflicts with itself; pass 0 to exclude nothing.
func FindConflicts(existing []model.Reservation, checkIn, checkOut time.Time, excludeID int64) []model.Reservation {
	var conflicts []model.Reservation
	for _, r := range existing {
		if !r.Status.Blocking() {
			continue
		}
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if Overlaps(r.CheckIn(), r.CheckOut(), checkIn, checkOut) {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts
}

func conflictError(roomID int64, conflicts []model.Reservation) error {
	ids := make([]int64, len(conflicts))
	for i, c := range conflicts {
		ids[i] = c.ID
	}
	return fmt.Errorf("%w: room %d is already reserved for the selected dates (conflicting reservations %v)",
		ErrReservationConflict, roomID, ids)
}
