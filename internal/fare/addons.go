package fare

import "github.com/railserve/reservation-backend/internal/models"

// Flat per-passenger addons by reservation type. Tatkal quotas carry a
// premium over the general reservation charge.
const (
	generalAddon       = 20.0
	tatkalAddon        = 100.0
	premiumTatkalAddon = 300.0
)

// AddonFor returns the flat per-passenger addon for a reservation type.
// Unknown types fall back to the general charge.
func AddonFor(rt models.ReservationType) float64 {
	switch rt {
	case models.ReservationTatkalTicket, models.ReservationTatkal:
		return tatkalAddon
	case models.ReservationPremiumTicket, models.ReservationPremiumTatkal:
		return premiumTatkalAddon
	default:
		return generalAddon
	}
}
