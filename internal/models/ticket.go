package models

import (
	"time"

	"github.com/google/uuid"
)

// CoachClass identifies a reservable coach class on a train.
type CoachClass string

const (
	ClassSleeper      CoachClass = "SL"
	Class3AC          CoachClass = "3A"
	Class2AC          CoachClass = "2A"
	Class1AC          CoachClass = "1A"
	ClassChairCar     CoachClass = "CC"
	ClassSecondSeat   CoachClass = "2S"
	ClassExecChair    CoachClass = "EC"
	ClassFirstClass   CoachClass = "FC"
	Class3ACEconomy   CoachClass = "E3"
	ClassExecAnubhuti CoachClass = "EA"
)

// BerthType is a physical sleeping/seating position within a coach bay.
type BerthType string

const (
	BerthLower      BerthType = "LB"
	BerthMiddle     BerthType = "MB"
	BerthUpper      BerthType = "UB"
	BerthSideLower  BerthType = "SL"
	BerthSideUpper  BerthType = "SU"
	BerthWindowSeat BerthType = "WS"
	BerthMiddleSeat BerthType = "MS"
	BerthAisleSeat  BerthType = "AS"
)

// SeatStatus is the confirmation state of a passenger ticket.
type SeatStatus string

const (
	StatusConfirmed  SeatStatus = "CNF"
	StatusRAC        SeatStatus = "RAC"
	StatusWaitlisted SeatStatus = "WTL"
	StatusCancelled  SeatStatus = "CAN"
)

// BerthQuota requests preferential berth placement at allocation time.
type BerthQuota string

const (
	QuotaNone       BerthQuota = ""
	QuotaLowerBerth BerthQuota = "LOWER"
)

// PassengerTicket is one passenger's ticket within a booking. Cancelled
// tickets are never deleted; they keep status CAN and a linked
// cancellation record.
type PassengerTicket struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	BookingID      uuid.UUID  `json:"booking_id" db:"booking_id"`
	Name           string     `json:"name" db:"name"`
	Age            int        `json:"age" db:"age"`
	Gender         string     `json:"gender" db:"gender"`
	IsSenior       bool       `json:"is_senior" db:"is_senior"`
	IsHandicapped  bool       `json:"is_handicapped" db:"is_handicapped"`
	IsChild        bool       `json:"is_child" db:"is_child"`
	PreferredBerth BerthType  `json:"preferred_berth,omitempty" db:"preferred_berth"`
	SeatStatus     SeatStatus `json:"seat_status" db:"seat_status"`
	// SeatSequence is the global seat sequence number for CNF tickets; the
	// physical coach/berth is always recomputed from it, never stored.
	SeatSequence *int `json:"seat_sequence,omitempty" db:"seat_sequence"`
	// QueuePosition is the 1-based rank within the RAC or WTL sub-queue of
	// this ticket's partition. Nil for CNF and CAN tickets.
	QueuePosition *int `json:"queue_position,omitempty" db:"queue_position"`
	// BaseFare is the undiscounted distance fare (zero for under-5s).
	// Cancellation charges are computed from it.
	BaseFare float64 `json:"base_fare" db:"base_fare"`
	// NetFare is what the passenger paid before GST: base fare minus
	// concession plus the reservation addon.
	NetFare   float64   `json:"net_fare" db:"net_fare"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TicketStatus is the PNR-enquiry view of one ticket: live status plus
// the resolved physical seat for confirmed tickets and the cancellation
// record for cancelled ones.
type TicketStatus struct {
	TicketID      uuid.UUID           `json:"ticket_id"`
	PNR           string              `json:"pnr"`
	TrainNumber   string              `json:"train_number"`
	DateOfJourney time.Time           `json:"date_of_journey"`
	CoachClass    CoachClass          `json:"coach_class"`
	PassengerName string              `json:"passenger_name"`
	Status        SeatStatus          `json:"status"`
	CoachInstance int                 `json:"coach_instance,omitempty"`
	SeatInCoach   int                 `json:"seat_in_coach,omitempty"`
	BerthType     BerthType           `json:"berth_type,omitempty"`
	QueuePosition int                 `json:"queue_position,omitempty"`
	Cancellation  *CancellationRecord `json:"cancellation,omitempty"`
}

// CancellationRecord is created exactly once per cancelled ticket.
type CancellationRecord struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TicketID     uuid.UUID `json:"ticket_id" db:"ticket_id"`
	Charge       float64   `json:"charge" db:"charge"`
	RefundAmount float64   `json:"refund_amount" db:"refund_amount"`
	CancelledAt  time.Time `json:"cancelled_at" db:"cancelled_at"`
}
