package fare

import (
	"testing"

	"github.com/railserve/reservation-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRetainedPercentTiers(t *testing.T) {
	p := DefaultCancellationPolicy()

	tests := []struct {
		hours float64
		want  float64
	}{
		{-1, p.Under4Hours}, // already departed
		{0, p.Under4Hours},
		{3.99, p.Under4Hours},
		{4, p.Under8Hours}, // boundaries are half-open: 4 belongs to [4,8)
		{7.99, p.Under8Hours},
		{8, p.Under12Hours},
		{11.99, p.Under12Hours},
		{12, p.AtLeast12Hours},
		{48, p.AtLeast12Hours},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, p.RetainedPercent(tc.hours), "hours %v", tc.hours)
	}
}

func TestComputeCancellationChargeTatkalForfeitsAll(t *testing.T) {
	policy := DefaultCancellationPolicy()
	ticket := &models.PassengerTicket{BaseFare: 500, SeatStatus: models.StatusConfirmed}

	for _, rt := range []models.ReservationType{models.ReservationTatkalTicket, models.ReservationPremiumTicket} {
		booking := &models.Booking{ReservationType: rt}
		assert.Equal(t, 500.0, ComputeCancellationCharge(ticket, booking, 100, policy), "type %s", rt)
	}

	// Even a waitlisted TTL ticket forfeits everything.
	wtl := &models.PassengerTicket{BaseFare: 500, SeatStatus: models.StatusWaitlisted}
	booking := &models.Booking{ReservationType: models.ReservationTatkalTicket}
	assert.Equal(t, 500.0, ComputeCancellationCharge(wtl, booking, 100, policy))
}

func TestComputeCancellationChargeWaitlistedFullRefund(t *testing.T) {
	policy := DefaultCancellationPolicy()
	ticket := &models.PassengerTicket{BaseFare: 750, SeatStatus: models.StatusWaitlisted}
	booking := &models.Booking{ReservationType: models.ReservationGeneral}

	for _, hours := range []float64{0, 2, 6, 10, 24} {
		assert.Zero(t, ComputeCancellationCharge(ticket, booking, hours, policy), "hours %v", hours)
	}
}

func TestComputeCancellationChargeConfirmedByTier(t *testing.T) {
	policy := DefaultCancellationPolicy()
	ticket := &models.PassengerTicket{BaseFare: 400, SeatStatus: models.StatusConfirmed}
	booking := &models.Booking{ReservationType: models.ReservationGeneral}

	assert.Equal(t, 400.0, ComputeCancellationCharge(ticket, booking, 2, policy))
	assert.Equal(t, 200.0, ComputeCancellationCharge(ticket, booking, 5, policy))
	assert.Equal(t, 100.0, ComputeCancellationCharge(ticket, booking, 9, policy))
	assert.InDelta(t, 40.0, ComputeCancellationCharge(ticket, booking, 20, policy), 1e-9)
}

func TestComputeCancellationChargeFromUndiscountedBase(t *testing.T) {
	policy := DefaultCancellationPolicy()
	booking := &models.Booking{ReservationType: models.ReservationGeneral}

	// An under-5 travels on a zero base fare; cancelling costs nothing
	// even inside the four-hour window, regardless of the addon paid.
	b, err := ComputeFare(100, Rule{FarePerKm: 1, FlatAddon: 20}, []models.PassengerRequest{
		{Name: "Ravi", Age: 3, Gender: "M"},
	})
	assert.NoError(t, err)
	child := &models.PassengerTicket{
		BaseFare:   b.Passengers[0].BaseFare,
		NetFare:    b.Passengers[0].NetFare,
		SeatStatus: models.StatusConfirmed,
	}
	assert.Zero(t, ComputeCancellationCharge(child, booking, 1, policy))

	// A senior's charge tiers off the full base fare, not the
	// concession-discounted net fare.
	senior := &models.PassengerTicket{BaseFare: 100, NetFare: 80, SeatStatus: models.StatusConfirmed}
	assert.Equal(t, 100.0, ComputeCancellationCharge(senior, booking, 1, policy))
}

func TestComputeCancellationChargeRACUsesTiers(t *testing.T) {
	policy := DefaultCancellationPolicy()
	ticket := &models.PassengerTicket{BaseFare: 300, SeatStatus: models.StatusRAC}
	booking := &models.Booking{ReservationType: models.ReservationGeneral}

	assert.Equal(t, 150.0, ComputeCancellationCharge(ticket, booking, 6, policy))
}
