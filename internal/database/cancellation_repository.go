package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/railserve/reservation-backend/internal/models"
)

// ErrCancellationNotFound is returned when a ticket has no cancellation record.
var ErrCancellationNotFound = errors.New("cancellation record not found")

// CancellationRepository reads the immutable cancellation ledger. Records
// are only ever written through the ticket store's cancellation
// transaction.
type CancellationRepository struct {
	db DB
}

// NewCancellationRepository creates a new CancellationRepository
func NewCancellationRepository(db DB) *CancellationRepository {
	return &CancellationRepository{db: db}
}

// GetByTicketID retrieves the cancellation record of a ticket
func (r *CancellationRepository) GetByTicketID(ticketID uuid.UUID) (*models.CancellationRecord, error) {
	query := `
		SELECT id, ticket_id, charge, refund_amount, cancelled_at
		FROM cancellation_records
		WHERE ticket_id = $1
	`

	record := &models.CancellationRecord{}
	err := r.db.QueryRow(query, ticketID).Scan(
		&record.ID, &record.TicketID, &record.Charge,
		&record.RefundAmount, &record.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCancellationNotFound
		}
		return nil, fmt.Errorf("failed to fetch cancellation record: %w", err)
	}

	return record, nil
}
