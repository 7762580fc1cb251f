package fare

import (
	"github.com/railserve/reservation-backend/internal/models"
)

// CancellationPolicy holds the retained-charge fraction per
// hours-before-departure bucket. Buckets are half-open intervals:
// [0,4) under4, [4,8) under8, [8,12) under12, [12,inf) atLeast12.
type CancellationPolicy struct {
	Under4Hours    float64 `json:"under_4_hours"`
	Under8Hours    float64 `json:"under_8_hours"`
	Under12Hours   float64 `json:"under_12_hours"`
	AtLeast12Hours float64 `json:"at_least_12_hours"`
}

// DefaultCancellationPolicy returns the standard refund tiers.
func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{
		Under4Hours:    1.00,
		Under8Hours:    0.50,
		Under12Hours:   0.25,
		AtLeast12Hours: 0.10,
	}
}

// RetainedPercent selects the tier for an hours-to-departure value.
// Negative values (departure already passed) fall into the under-4 tier.
func (p CancellationPolicy) RetainedPercent(hoursToDeparture float64) float64 {
	switch {
	case hoursToDeparture < 4:
		return p.Under4Hours
	case hoursToDeparture < 8:
		return p.Under8Hours
	case hoursToDeparture < 12:
		return p.Under12Hours
	default:
		return p.AtLeast12Hours
	}
}

// ComputeCancellationCharge returns the charge retained when a ticket is
// cancelled. Tatkal-window tickets (TTL/PTL) forfeit the full individual
// base fare; waitlisted tickets are refunded in full; everything else pays
// the tier fraction of its base fare.
func ComputeCancellationCharge(ticket *models.PassengerTicket, booking *models.Booking, hoursToDeparture float64, policy CancellationPolicy) float64 {
	switch booking.ReservationType {
	case models.ReservationTatkalTicket, models.ReservationPremiumTicket:
		return ticket.BaseFare
	}
	if ticket.SeatStatus == models.StatusWaitlisted {
		return 0
	}
	return ticket.BaseFare * policy.RetainedPercent(hoursToDeparture)
}
