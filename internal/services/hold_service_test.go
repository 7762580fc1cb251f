package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railserve/reservation-backend/internal/models"
)

func testHold() *SeatHold {
	return &SeatHold{
		Token:          "deadbeef",
		TrainNumber:    "12301",
		DateOfJourney:  "2026-10-20",
		CoachClass:     models.ClassSleeper,
		PassengerCount: 4,
	}
}

func testHoldBooking() *models.Booking {
	return &models.Booking{
		TrainNumber:   "12301",
		DateOfJourney: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		CoachClass:    models.ClassSleeper,
	}
}

func TestHoldMatches(t *testing.T) {
	assert.True(t, holdMatches(testHold(), testHoldBooking(), 4))

	// A hold may cover more passengers than the booking uses.
	assert.True(t, holdMatches(testHold(), testHoldBooking(), 2))
	assert.False(t, holdMatches(testHold(), testHoldBooking(), 5))
}

func TestHoldMatchesRejectsDifferentPartition(t *testing.T) {
	other := testHoldBooking()
	other.TrainNumber = "12302"
	assert.False(t, holdMatches(testHold(), other, 1))

	other = testHoldBooking()
	other.DateOfJourney = other.DateOfJourney.AddDate(0, 0, 1)
	assert.False(t, holdMatches(testHold(), other, 1))

	other = testHoldBooking()
	other.CoachClass = models.Class3AC
	assert.False(t, holdMatches(testHold(), other, 1))
}

func TestGenerateHoldToken(t *testing.T) {
	a, err := generateHoldToken()
	require.NoError(t, err)
	b, err := generateHoldToken()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "hold:"+a, holdKey(a))
}
