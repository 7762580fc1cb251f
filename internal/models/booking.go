package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationType distinguishes the quota a purchase was made under.
type ReservationType string

const (
	ReservationGeneral       ReservationType = "GEN"
	ReservationTatkalTicket  ReservationType = "TTL"
	ReservationPremiumTicket ReservationType = "PTL"
	ReservationTatkal        ReservationType = "TATKAL"
	ReservationPremiumTatkal ReservationType = "PREMIUM_TATKAL"
)

// Booking is a single purchase covering one or more passenger tickets.
// It is created atomically with its tickets and is immutable afterwards
// except through ticket-level cancellations.
type Booking struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	PNR             string          `json:"pnr" db:"pnr"`
	TrainNumber     string          `json:"train_number" db:"train_number"`
	SourceStation   string          `json:"source_station" db:"source_station"`
	DestStation     string          `json:"dest_station" db:"dest_station"`
	BoardingStation string          `json:"boarding_station" db:"boarding_station"`
	DateOfJourney   time.Time       `json:"date_of_journey" db:"date_of_journey"`
	AdultCount      int             `json:"adult_count" db:"adult_count"`
	ChildCount      int             `json:"child_count" db:"child_count"`
	ReservationType ReservationType `json:"reservation_type" db:"reservation_type"`
	CoachClass      CoachClass      `json:"coach_class" db:"coach_class"`
	MobileNumber    string          `json:"mobile_number" db:"mobile_number"`
	TotalFare       float64         `json:"total_fare" db:"total_fare"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// PassengerRequest is one passenger in a booking request.
type PassengerRequest struct {
	Name           string    `json:"name" binding:"required"`
	Age            int       `json:"age" binding:"required,min=1,max=120"`
	Gender         string    `json:"gender" binding:"required,oneof=M F O"`
	IsHandicapped  bool      `json:"is_handicapped"`
	PreferredBerth BerthType `json:"preferred_berth"`
}

// CreateBookingRequest is the booking API payload.
type CreateBookingRequest struct {
	TrainNumber     string             `json:"train_number" binding:"required"`
	SourceStation   string             `json:"source_station" binding:"required"`
	DestStation     string             `json:"dest_station" binding:"required"`
	BoardingStation string             `json:"boarding_station"`
	DateOfJourney   string             `json:"date_of_journey" binding:"required"` // YYYY-MM-DD
	CoachClass      CoachClass         `json:"coach_class" binding:"required"`
	ReservationType ReservationType    `json:"reservation_type"`
	MobileNumber    string             `json:"mobile_number" binding:"required"`
	Passengers      []PassengerRequest `json:"passengers" binding:"required,min=1,dive"`
	HoldToken       *string            `json:"hold_token,omitempty"`
}

// TicketResult describes the outcome for a single passenger after booking.
// Seat fields are set for CNF tickets, QueuePosition for RAC/WTL.
type TicketResult struct {
	TicketID      uuid.UUID  `json:"ticket_id"`
	PassengerName string     `json:"passenger_name"`
	Status        SeatStatus `json:"status"`
	CoachInstance int        `json:"coach_instance,omitempty"`
	SeatInCoach   int        `json:"seat_in_coach,omitempty"`
	BerthType     BerthType  `json:"berth_type,omitempty"`
	QueuePosition int        `json:"queue_position,omitempty"`
}

// BookingResponse is returned from the booking endpoint.
type BookingResponse struct {
	BookingID uuid.UUID      `json:"booking_id"`
	PNR       string         `json:"pnr"`
	Tickets   []TicketResult `json:"tickets"`
	Fare      FareSummary    `json:"fare"`
	CreatedAt time.Time      `json:"created_at"`
}

// FareSummary is the rounded, caller-facing view of a fare breakdown.
type FareSummary struct {
	TotalBase     float64 `json:"total_base"`
	TotalDiscount float64 `json:"total_discount"`
	ServiceCharge float64 `json:"service_charge"`
	GST           float64 `json:"gst"`
	TotalFare     float64 `json:"total_fare"`
}
