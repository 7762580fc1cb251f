package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/railserve/reservation-backend/internal/inventory"
	"github.com/railserve/reservation-backend/internal/lifecycle"
	"github.com/railserve/reservation-backend/internal/models"
)

// TicketStore is the transactional persistence behind the inventory
// coordinator. Booking creation and cancellation cascades each commit in
// a single transaction, so a partition is never half-updated.
type TicketStore struct {
	db DB
}

// NewTicketStore creates a new TicketStore
func NewTicketStore(db DB) *TicketStore {
	return &TicketStore{db: db}
}

// PartitionTickets returns every ticket of one (train, date, class)
// partition, cancelled tickets included.
func (s *TicketStore) PartitionTickets(ctx context.Context, key inventory.PartitionKey) ([]models.PassengerTicket, error) {
	query := `
		SELECT t.` + ticketColumnsQualified + `
		FROM passenger_tickets t
		JOIN bookings b ON b.id = t.booking_id
		WHERE b.train_number = $1
		  AND b.date_of_journey = $2
		  AND b.coach_class = $3
		ORDER BY t.created_at
	`

	rows, err := s.db.Query(query, key.TrainNumber, key.Date, key.CoachClass)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch partition tickets: %w", err)
	}
	defer rows.Close()

	tickets := []models.PassengerTicket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}

	return tickets, rows.Err()
}

// TicketWithBooking loads a ticket and its owning booking. A missing
// ticket returns (nil, nil, nil).
func (s *TicketStore) TicketWithBooking(ctx context.Context, ticketID uuid.UUID) (*models.PassengerTicket, *models.Booking, error) {
	ticket, err := NewTicketRepository(s.db).GetByID(ticketID)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	booking, err := NewBookingRepository(s.db).GetByID(ticket.BookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch owning booking: %w", err)
	}

	return ticket, booking, nil
}

// CreateBooking persists a booking and its tickets in one transaction
func (s *TicketStore) CreateBooking(ctx context.Context, booking *models.Booking, tickets []models.PassengerTicket) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (
			id, pnr, train_number, source_station, dest_station,
			boarding_station, date_of_journey, adult_count, child_count,
			reservation_type, coach_class, mobile_number, total_fare
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		booking.ID, booking.PNR, booking.TrainNumber,
		booking.SourceStation, booking.DestStation, booking.BoardingStation,
		booking.DateOfJourney, booking.AdultCount, booking.ChildCount,
		booking.ReservationType, booking.CoachClass, booking.MobileNumber,
		booking.TotalFare,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	for i := range tickets {
		t := &tickets[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO passenger_tickets (
				id, booking_id, name, age, gender, is_senior,
				is_handicapped, is_child, preferred_berth, seat_status,
				seat_sequence, queue_position, base_fare, net_fare
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`,
			t.ID, t.BookingID, t.Name, t.Age, t.Gender, t.IsSenior,
			t.IsHandicapped, t.IsChild, nullableBerth(t.PreferredBerth),
			t.SeatStatus, t.SeatSequence, t.QueuePosition, t.BaseFare, t.NetFare,
		)
		if err != nil {
			return fmt.Errorf("failed to insert ticket for %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

// ApplyCancellation persists a cascade change-set plus the cancellation
// record in one transaction
func (s *TicketStore) ApplyCancellation(ctx context.Context, changes []lifecycle.TicketChange, record *models.CancellationRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ch := range changes {
		result, err := tx.ExecContext(ctx, `
			UPDATE passenger_tickets
			SET seat_status = $2, seat_sequence = $3, queue_position = $4,
				updated_at = NOW()
			WHERE id = $1
		`, ch.TicketID, ch.Status, ch.SeatSequence, ch.QueuePosition)
		if err != nil {
			return fmt.Errorf("failed to update ticket %s: %w", ch.TicketID, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("ticket %s vanished during cascade: %w", ch.TicketID, ErrTicketNotFound)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cancellation_records (id, ticket_id, charge, refund_amount, cancelled_at)
		VALUES ($1, $2, $3, $4, $5)
	`, record.ID, record.TicketID, record.Charge, record.RefundAmount, record.CancelledAt)
	if err != nil {
		return fmt.Errorf("failed to insert cancellation record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cancellation: %w", err)
	}
	return nil
}

const ticketColumnsQualified = `id, t.booking_id, t.name, t.age, t.gender, t.is_senior,
		   t.is_handicapped, t.is_child, t.preferred_berth, t.seat_status,
		   t.seat_sequence, t.queue_position, t.base_fare, t.net_fare,
		   t.created_at, t.updated_at`

// nullableBerth stores an absent berth preference as NULL rather than ''.
func nullableBerth(b models.BerthType) interface{} {
	if b == "" {
		return nil
	}
	return string(b)
}
