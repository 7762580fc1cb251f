// Package layout holds the static per-class coach layout definitions.
// The original allocator had one near-duplicated switch per coach class;
// here every class is a row in a single data-driven table consumed by the
// seat allocation mapper.
package layout

import (
	"errors"
	"fmt"

	"github.com/railserve/reservation-backend/internal/models"
)

// ErrUnknownClass is returned when a coach class has no registered layout.
var ErrUnknownClass = errors.New("unknown coach class")

// CoachClassLayout describes the physical arrangement of one coach class.
// BerthPattern is cyclic: seat-in-coach n has berth pattern[(n-1) mod len].
// The pattern length does not have to divide SeatsPerCoach; trailing seats
// wrap into a partial cycle.
type CoachClassLayout struct {
	Class         models.CoachClass
	SeatsPerCoach int
	BerthPattern  []models.BerthType
	// MaxCoaches caps the rake size for classes that never run more than a
	// fixed number of coaches. Zero means the per-train configuration decides.
	MaxCoaches int
	// RACSlots and WTLSlots are the per-partition queue capacities.
	RACSlots int
	WTLSlots int
}

var sleeperPattern = []models.BerthType{
	models.BerthLower, models.BerthMiddle, models.BerthUpper,
	models.BerthLower, models.BerthMiddle, models.BerthUpper,
	models.BerthSideLower, models.BerthSideUpper,
}

var twoTierPattern = []models.BerthType{
	models.BerthLower, models.BerthUpper,
	models.BerthLower, models.BerthUpper,
	models.BerthSideLower, models.BerthSideUpper,
}

var coupePattern = []models.BerthType{
	models.BerthLower, models.BerthUpper,
}

var chairRowPattern = []models.BerthType{
	models.BerthWindowSeat, models.BerthMiddleSeat, models.BerthAisleSeat,
	models.BerthWindowSeat, models.BerthAisleSeat,
}

var execRowPattern = []models.BerthType{
	models.BerthWindowSeat, models.BerthAisleSeat,
	models.BerthWindowSeat, models.BerthAisleSeat,
}

var registry = map[models.CoachClass]*CoachClassLayout{
	models.ClassSleeper: {
		Class:         models.ClassSleeper,
		SeatsPerCoach: 72,
		BerthPattern:  sleeperPattern,
		RACSlots:      20,
		WTLSlots:      100,
	},
	models.Class3AC: {
		Class:         models.Class3AC,
		SeatsPerCoach: 64,
		BerthPattern:  sleeperPattern,
		RACSlots:      16,
		WTLSlots:      80,
	},
	models.Class3ACEconomy: {
		Class:         models.Class3ACEconomy,
		SeatsPerCoach: 80,
		BerthPattern:  sleeperPattern,
		MaxCoaches:    2,
		RACSlots:      8,
		WTLSlots:      40,
	},
	models.Class2AC: {
		Class:         models.Class2AC,
		SeatsPerCoach: 48,
		BerthPattern:  twoTierPattern,
		RACSlots:      10,
		WTLSlots:      50,
	},
	models.Class1AC: {
		Class:         models.Class1AC,
		SeatsPerCoach: 24,
		BerthPattern:  coupePattern,
		WTLSlots:      20,
	},
	models.ClassFirstClass: {
		Class:         models.ClassFirstClass,
		SeatsPerCoach: 26,
		BerthPattern:  coupePattern,
		MaxCoaches:    1,
		WTLSlots:      10,
	},
	models.ClassChairCar: {
		Class:         models.ClassChairCar,
		SeatsPerCoach: 78,
		BerthPattern:  chairRowPattern,
		WTLSlots:      50,
	},
	models.ClassSecondSeat: {
		Class:         models.ClassSecondSeat,
		SeatsPerCoach: 108,
		BerthPattern:  chairRowPattern,
		WTLSlots:      120,
	},
	models.ClassExecChair: {
		Class:         models.ClassExecChair,
		SeatsPerCoach: 56,
		BerthPattern:  execRowPattern,
		WTLSlots:      25,
	},
	models.ClassExecAnubhuti: {
		Class:         models.ClassExecAnubhuti,
		SeatsPerCoach: 56,
		BerthPattern:  execRowPattern,
		MaxCoaches:    1,
		WTLSlots:      20,
	},
}

// Get returns the layout for a coach class.
func Get(class models.CoachClass) (*CoachClassLayout, error) {
	l, ok := registry[class]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	return l, nil
}

// Classes lists every registered coach class.
func Classes() []models.CoachClass {
	classes := make([]models.CoachClass, 0, len(registry))
	for class := range registry {
		classes = append(classes, class)
	}
	return classes
}

// BerthAt returns the berth type of a 1-based seat number within a coach.
func (l *CoachClassLayout) BerthAt(seatInCoach int) models.BerthType {
	return l.BerthPattern[(seatInCoach-1)%len(l.BerthPattern)]
}

// CapacityFor returns the confirmed-seat budget for a rake of the given
// coach count, clamped to MaxCoaches where the class fixes its rake size.
func (l *CoachClassLayout) CapacityFor(coaches int) int {
	if l.MaxCoaches > 0 && (coaches == 0 || coaches > l.MaxCoaches) {
		coaches = l.MaxCoaches
	}
	return coaches * l.SeatsPerCoach
}

// Validate checks the table invariants: non-empty pattern, positive seat
// count. Called from tests; the table is static so a passing test pins it.
func (l *CoachClassLayout) Validate() error {
	if l.SeatsPerCoach <= 0 {
		return fmt.Errorf("layout %s: seats per coach must be positive", l.Class)
	}
	if len(l.BerthPattern) == 0 {
		return fmt.Errorf("layout %s: berth pattern must not be empty", l.Class)
	}
	return nil
}
