package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/railserve/reservation-backend/internal/models"
)

// ErrTicketNotFound is returned when a ticket id is unknown.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepository handles database operations for passenger tickets
type TicketRepository struct {
	db DB
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, booking_id, name, age, gender, is_senior,
		   is_handicapped, is_child, preferred_berth, seat_status,
		   seat_sequence, queue_position, base_fare, net_fare,
		   created_at, updated_at`

// GetByID retrieves a ticket by ID
func (r *TicketRepository) GetByID(ticketID uuid.UUID) (*models.PassengerTicket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM passenger_tickets
		WHERE id = $1
	`

	ticket, err := scanTicket(r.db.QueryRow(query, ticketID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to fetch ticket: %w", err)
	}

	return ticket, nil
}

// GetByBookingID retrieves all tickets of a booking in creation order
func (r *TicketRepository) GetByBookingID(bookingID uuid.UUID) ([]models.PassengerTicket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM passenger_tickets
		WHERE booking_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets: %w", err)
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

func scanTicket(row scanner) (*models.PassengerTicket, error) {
	ticket := &models.PassengerTicket{}
	var preferredBerth sql.NullString
	var seatSequence sql.NullInt64
	var queuePosition sql.NullInt64

	err := row.Scan(
		&ticket.ID, &ticket.BookingID, &ticket.Name, &ticket.Age, &ticket.Gender,
		&ticket.IsSenior, &ticket.IsHandicapped, &ticket.IsChild,
		&preferredBerth, &ticket.SeatStatus,
		&seatSequence, &queuePosition, &ticket.BaseFare, &ticket.NetFare,
		&ticket.CreatedAt, &ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if preferredBerth.Valid {
		ticket.PreferredBerth = models.BerthType(preferredBerth.String)
	}
	if seatSequence.Valid {
		seq := int(seatSequence.Int64)
		ticket.SeatSequence = &seq
	}
	if queuePosition.Valid {
		pos := int(queuePosition.Int64)
		ticket.QueuePosition = &pos
	}

	return ticket, nil
}
