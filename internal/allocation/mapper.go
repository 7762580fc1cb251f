// Package allocation maps global seat sequence numbers onto physical
// coach/berth positions. Resolution is pure: the same class and sequence
// number always yield the same assignment, so seat identity is never
// stored, only recomputed.
package allocation

import (
	"errors"
	"fmt"

	"github.com/railserve/reservation-backend/internal/layout"
	"github.com/railserve/reservation-backend/internal/models"
)

// ErrOutOfRange is returned when a sequence number falls outside the
// class's physical capacity.
var ErrOutOfRange = errors.New("seat sequence out of range")

// SeatAssignment is the physical position derived from a sequence number.
type SeatAssignment struct {
	CoachInstance int              `json:"coach_instance"`
	SeatInCoach   int              `json:"seat_in_coach"`
	BerthType     models.BerthType `json:"berth_type"`
}

// ResolveSeat maps a 1-based global sequence number to its coach instance,
// seat within the coach and berth type for the given class.
func ResolveSeat(class models.CoachClass, seq int) (SeatAssignment, error) {
	l, err := layout.Get(class)
	if err != nil {
		return SeatAssignment{}, err
	}
	return resolve(l, seq)
}

// ResolveSeatWithQuota resolves a seat honoring a berth quota. A lower-berth
// quota searches forward within the same pattern-length group for the
// nearest lower berth and substitutes it; when the group has none ahead,
// the originally resolved seat stands.
func ResolveSeatWithQuota(class models.CoachClass, seq int, quota models.BerthQuota) (SeatAssignment, error) {
	l, err := layout.Get(class)
	if err != nil {
		return SeatAssignment{}, err
	}
	assigned, err := resolve(l, seq)
	if err != nil {
		return SeatAssignment{}, err
	}
	if quota != models.QuotaLowerBerth || assigned.BerthType == models.BerthLower {
		return assigned, nil
	}

	plen := len(l.BerthPattern)
	groupStart := ((assigned.SeatInCoach-1)/plen)*plen + 1
	groupEnd := groupStart + plen - 1
	if groupEnd > l.SeatsPerCoach {
		groupEnd = l.SeatsPerCoach
	}
	for seat := assigned.SeatInCoach + 1; seat <= groupEnd; seat++ {
		if l.BerthAt(seat) == models.BerthLower {
			assigned.SeatInCoach = seat
			assigned.BerthType = models.BerthLower
			return assigned, nil
		}
	}
	return assigned, nil
}

// SequenceOf returns the global sequence number a physical assignment
// occupies in the given class. It is the inverse of ResolveSeat.
func SequenceOf(class models.CoachClass, a SeatAssignment) (int, error) {
	l, err := layout.Get(class)
	if err != nil {
		return 0, err
	}
	return (a.CoachInstance-1)*l.SeatsPerCoach + a.SeatInCoach, nil
}

func resolve(l *layout.CoachClassLayout, seq int) (SeatAssignment, error) {
	if seq < 1 {
		return SeatAssignment{}, fmt.Errorf("%w: sequence %d", ErrOutOfRange, seq)
	}
	if l.MaxCoaches > 0 && seq > l.MaxCoaches*l.SeatsPerCoach {
		return SeatAssignment{}, fmt.Errorf("%w: sequence %d exceeds %d seats of class %s",
			ErrOutOfRange, seq, l.MaxCoaches*l.SeatsPerCoach, l.Class)
	}

	coach := (seq-1)/l.SeatsPerCoach + 1
	seatInCoach := (seq-1)%l.SeatsPerCoach + 1
	return SeatAssignment{
		CoachInstance: coach,
		SeatInCoach:   seatInCoach,
		BerthType:     l.BerthAt(seatInCoach),
	}, nil
}
