package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railserve/reservation-backend/internal/inventory"
	"github.com/railserve/reservation-backend/internal/lifecycle"
	"github.com/railserve/reservation-backend/internal/models"
)

func storeBooking() *models.Booking {
	return &models.Booking{
		ID:              uuid.New(),
		PNR:             "PNR424242",
		TrainNumber:     "12301",
		SourceStation:   "HWH",
		DestStation:     "NDLS",
		BoardingStation: "HWH",
		DateOfJourney:   time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		AdultCount:      1,
		ReservationType: models.ReservationGeneral,
		CoachClass:      models.ClassSleeper,
		MobileNumber:    "9876543210",
		TotalFare:       472.0,
	}
}

func TestCreateBookingCommitsBookingAndTickets(t *testing.T) {
	mockDB, mock := newMockDB(t)
	store := NewTicketStore(mockDB)

	booking := storeBooking()
	seat := 7
	tickets := []models.PassengerTicket{{
		ID:           uuid.New(),
		BookingID:    booking.ID,
		Name:         "Asha",
		Age:          34,
		Gender:       "F",
		SeatStatus:   models.StatusConfirmed,
		SeatSequence: &seat,
		BaseFare:     400,
		NetFare:      420,
	}}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO passenger_tickets`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.CreateBooking(context.Background(), booking, tickets)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRollsBackOnTicketFailure(t *testing.T) {
	mockDB, mock := newMockDB(t)
	store := NewTicketStore(mockDB)

	booking := storeBooking()
	tickets := []models.PassengerTicket{{
		ID: uuid.New(), BookingID: booking.ID, Name: "Asha", Age: 34, Gender: "F",
		SeatStatus: models.StatusWaitlisted, BaseFare: 400,
	}}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO passenger_tickets`).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	err := store.CreateBooking(context.Background(), booking, tickets)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert ticket")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyCancellationCommitsChangeSetAndRecord(t *testing.T) {
	mockDB, mock := newMockDB(t)
	store := NewTicketStore(mockDB)

	cancelledID, promotedID := uuid.New(), uuid.New()
	seat := 12
	changes := []lifecycle.TicketChange{
		{TicketID: cancelledID, Status: models.StatusCancelled},
		{TicketID: promotedID, Status: models.StatusConfirmed, SeatSequence: &seat},
	}
	record := &models.CancellationRecord{
		ID:           uuid.New(),
		TicketID:     cancelledID,
		Charge:       40,
		RefundAmount: 360,
		CancelledAt:  time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE passenger_tickets`).
		WithArgs(cancelledID, models.StatusCancelled, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE passenger_tickets`).
		WithArgs(promotedID, models.StatusConfirmed, &seat, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO cancellation_records`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.ApplyCancellation(context.Background(), changes, record)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyCancellationRollsBackOnMissingTicket(t *testing.T) {
	mockDB, mock := newMockDB(t)
	store := NewTicketStore(mockDB)

	changes := []lifecycle.TicketChange{
		{TicketID: uuid.New(), Status: models.StatusCancelled},
	}
	record := &models.CancellationRecord{ID: uuid.New(), TicketID: changes[0].TicketID}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE passenger_tickets`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.ApplyCancellation(context.Background(), changes, record)
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPartitionTickets(t *testing.T) {
	mockDB, mock := newMockDB(t)
	store := NewTicketStore(mockDB)

	key := inventory.PartitionKey{
		TrainNumber: "12301", Date: "2026-10-20", CoachClass: models.ClassSleeper,
	}
	ticketID, bookingID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM passenger_tickets t\s+JOIN bookings b`).
		WithArgs("12301", "2026-10-20", models.ClassSleeper).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "name", "age", "gender", "is_senior",
			"is_handicapped", "is_child", "preferred_berth", "seat_status",
			"seat_sequence", "queue_position", "base_fare", "net_fare",
			"created_at", "updated_at",
		}).AddRow(
			ticketID, bookingID, "Asha", 34, "F", false,
			false, false, nil, "RAC",
			nil, 2, 400.0, 420.0, now, now,
		))

	tickets, err := store.PartitionTickets(context.Background(), key)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, models.StatusRAC, tickets[0].SeatStatus)
	assert.Nil(t, tickets[0].SeatSequence)
	require.NotNil(t, tickets[0].QueuePosition)
	assert.Equal(t, 2, *tickets[0].QueuePosition)
	assert.Equal(t, "", string(tickets[0].PreferredBerth))
	assert.Equal(t, 400.0, tickets[0].BaseFare)
	assert.Equal(t, 420.0, tickets[0].NetFare)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketWithBookingMissingTicket(t *testing.T) {
	mockDB, mock := newMockDB(t)
	store := NewTicketStore(mockDB)

	ticketID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM passenger_tickets`).
		WithArgs(ticketID).
		WillReturnError(sql.ErrNoRows)

	// An unknown id surfaces as a triple nil, not an error; the
	// coordinator turns that into its own not-found error.
	ticket, booking, err := store.TicketWithBooking(context.Background(), ticketID)
	require.NoError(t, err)
	assert.Nil(t, ticket)
	assert.Nil(t, booking)

	assert.NoError(t, mock.ExpectationsWereMet())
}
