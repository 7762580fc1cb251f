package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/railserve/reservation-backend/internal/models"
)

// ErrBookingNotFound is returned when a booking id or PNR is unknown.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepository handles database operations for bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, pnr, train_number, source_station, dest_station,
		   boarding_station, date_of_journey, adult_count, child_count,
		   reservation_type, coach_class, mobile_number, total_fare, created_at`

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`

	booking, err := scanBooking(r.db.QueryRow(query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}

	return booking, nil
}

// GetByPNR retrieves a booking by its PNR
func (r *BookingRepository) GetByPNR(pnr string) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE pnr = $1
	`

	booking, err := scanBooking(r.db.QueryRow(query, pnr))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking by pnr: %w", err)
	}

	return booking, nil
}

// PNRExists reports whether a PNR is already taken
func (r *BookingRepository) PNRExists(pnr string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM bookings WHERE pnr = $1)`, pnr).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pnr: %w", err)
	}
	return exists, nil
}

// GetByMobileNumber retrieves all bookings made from a mobile number
func (r *BookingRepository) GetByMobileNumber(mobile string) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE mobile_number = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, mobile)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

// PurgeJourneysBefore removes bookings whose journey date is older than
// the cutoff. Tickets and cancellation records follow through ON DELETE
// CASCADE.
func (r *BookingRepository) PurgeJourneysBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM bookings WHERE date_of_journey < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge old bookings: %w", err)
	}
	return result.RowsAffected()
}

func scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}
	err := row.Scan(
		&booking.ID, &booking.PNR, &booking.TrainNumber,
		&booking.SourceStation, &booking.DestStation, &booking.BoardingStation,
		&booking.DateOfJourney, &booking.AdultCount, &booking.ChildCount,
		&booking.ReservationType, &booking.CoachClass, &booking.MobileNumber,
		&booking.TotalFare, &booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return booking, nil
}
