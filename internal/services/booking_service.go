package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/railserve/reservation-backend/internal/allocation"
	"github.com/railserve/reservation-backend/internal/fare"
	"github.com/railserve/reservation-backend/internal/layout"
	"github.com/railserve/reservation-backend/internal/models"
	"github.com/railserve/reservation-backend/pkg/validator"
)

var (
	// ErrInvalidJourneyDate indicates an unparseable date of journey
	ErrInvalidJourneyDate = errors.New("invalid date of journey")

	// ErrOutsideAdvancePeriod indicates a journey date in the past or
	// beyond the advance reservation period
	ErrOutsideAdvancePeriod = errors.New("journey date outside the advance reservation period")

	// ErrTatkalClosed indicates a tatkal booking before the quota opened
	ErrTatkalClosed = errors.New("tatkal quota not yet open for this journey")

	// ErrPNRExhausted indicates PNR generation kept colliding
	ErrPNRExhausted = errors.New("could not allocate a unique pnr")
)

// routeScheduler answers route time and distance questions.
type routeScheduler interface {
	DistanceBetween(trainNumber, fromStation, toStation string) (float64, error)
	WithinAdvancePeriod(dateOfJourney time.Time) bool
	IsTatkalOpen(class models.CoachClass, dateOfJourney time.Time) (bool, error)
}

// seatBooker is the inventory coordinator surface the service drives.
type seatBooker interface {
	Book(ctx context.Context, booking *models.Booking, tickets []models.PassengerTicket) ([]models.TicketResult, error)
	Cancel(ctx context.Context, ticketID uuid.UUID) (*models.CancellationRecord, error)
	Availability(ctx context.Context, trainNumber, date string, class models.CoachClass) (*models.ClassAvailability, error)
}

// holdRedeemer consumes seat hold tokens.
type holdRedeemer interface {
	Redeem(ctx context.Context, token string, booking *models.Booking, passengers int) error
}

// trainReader is the train metadata surface the service reads.
type trainReader interface {
	GetByNumber(trainNumber string) (*models.Train, error)
	ClassConfig(ctx context.Context, trainNumber string, class models.CoachClass) (*models.TrainClassConfig, error)
	ClassConfigs(trainNumber string) ([]models.TrainClassConfig, error)
}

// bookingReader reads persisted bookings.
type bookingReader interface {
	GetByID(bookingID uuid.UUID) (*models.Booking, error)
	GetByPNR(pnr string) (*models.Booking, error)
	GetByMobileNumber(mobile string) ([]models.Booking, error)
	PNRExists(pnr string) (bool, error)
}

// ticketReader reads persisted tickets.
type ticketReader interface {
	GetByID(ticketID uuid.UUID) (*models.PassengerTicket, error)
	GetByBookingID(bookingID uuid.UUID) ([]models.PassengerTicket, error)
}

// cancellationReader reads the cancellation ledger.
type cancellationReader interface {
	GetByTicketID(ticketID uuid.UUID) (*models.CancellationRecord, error)
}

// BookingService orchestrates a reservation end to end: route and quota
// validation, fare computation, hold redemption, seat placement through
// the coordinator and PNR allocation.
type BookingService struct {
	trains        trainReader
	bookings      bookingReader
	tickets       ticketReader
	cancellations cancellationReader
	schedule      routeScheduler
	inventory     seatBooker
	holds         holdRedeemer
	phones        *validator.PhoneValidator
	logger        *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	trains trainReader,
	bookings bookingReader,
	tickets ticketReader,
	cancellations cancellationReader,
	schedule routeScheduler,
	inventory seatBooker,
	holds holdRedeemer,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		trains:        trains,
		bookings:      bookings,
		tickets:       tickets,
		cancellations: cancellations,
		schedule:      schedule,
		inventory:     inventory,
		holds:         holds,
		phones:        validator.NewPhoneValidator(),
		logger:        logger,
	}
}

// CreateBooking validates a booking request, prices it and places every
// passenger through the inventory coordinator.
func (s *BookingService) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.BookingResponse, error) {
	mobile, err := s.phones.Validate(req.MobileNumber)
	if err != nil {
		return nil, fmt.Errorf("invalid mobile number: %w", err)
	}

	dateOfJourney, err := time.Parse("2006-01-02", req.DateOfJourney)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidJourneyDate, req.DateOfJourney)
	}
	if !s.schedule.WithinAdvancePeriod(dateOfJourney) {
		return nil, ErrOutsideAdvancePeriod
	}

	if _, err := layout.Get(req.CoachClass); err != nil {
		return nil, err
	}

	reservationType := req.ReservationType
	if reservationType == "" {
		reservationType = models.ReservationGeneral
	}
	if isTatkalType(reservationType) {
		open, err := s.schedule.IsTatkalOpen(req.CoachClass, dateOfJourney)
		if err != nil {
			return nil, err
		}
		if !open {
			return nil, ErrTatkalClosed
		}
	}

	boarding := req.BoardingStation
	if boarding == "" {
		boarding = req.SourceStation
	}

	breakdown, err := s.price(ctx, req.TrainNumber, req.SourceStation, req.DestStation,
		req.CoachClass, reservationType, req.Passengers)
	if err != nil {
		return nil, err
	}

	pnr, err := s.allocatePNR()
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:              uuid.New(),
		PNR:             pnr,
		TrainNumber:     req.TrainNumber,
		SourceStation:   req.SourceStation,
		DestStation:     req.DestStation,
		BoardingStation: boarding,
		DateOfJourney:   dateOfJourney,
		ReservationType: reservationType,
		CoachClass:      req.CoachClass,
		MobileNumber:    mobile,
		TotalFare:       fare.Round2(breakdown.TotalFare),
		CreatedAt:       time.Now().UTC(),
	}

	tickets := make([]models.PassengerTicket, 0, len(req.Passengers))
	for i, p := range req.Passengers {
		if p.Age < 5 {
			booking.ChildCount++
		} else {
			booking.AdultCount++
		}
		tickets = append(tickets, models.PassengerTicket{
			ID:             uuid.New(),
			BookingID:      booking.ID,
			Name:           p.Name,
			Age:            p.Age,
			Gender:         p.Gender,
			IsSenior:       p.Age >= 60,
			IsHandicapped:  p.IsHandicapped,
			IsChild:        p.Age < 5,
			PreferredBerth: p.PreferredBerth,
			BaseFare:       breakdown.Passengers[i].BaseFare,
			NetFare:        breakdown.Passengers[i].NetFare,
			CreatedAt:      booking.CreatedAt,
			UpdatedAt:      booking.CreatedAt,
		})
	}

	if req.HoldToken != nil {
		if err := s.holds.Redeem(ctx, *req.HoldToken, booking, len(tickets)); err != nil {
			return nil, err
		}
	}

	results, err := s.inventory.Book(ctx, booking, tickets)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"pnr":        booking.PNR,
		"train":      booking.TrainNumber,
		"class":      booking.CoachClass,
		"type":       booking.ReservationType,
		"passengers": len(tickets),
		"total_fare": booking.TotalFare,
	}).Info("Booking created")

	return &models.BookingResponse{
		BookingID: booking.ID,
		PNR:       booking.PNR,
		Tickets:   results,
		Fare:      breakdown.Summary(),
		CreatedAt: booking.CreatedAt,
	}, nil
}

// QuoteFare prices a prospective booking without placing it
func (s *BookingService) QuoteFare(ctx context.Context, req *models.CreateBookingRequest) (*models.FareSummary, error) {
	reservationType := req.ReservationType
	if reservationType == "" {
		reservationType = models.ReservationGeneral
	}

	breakdown, err := s.price(ctx, req.TrainNumber, req.SourceStation, req.DestStation,
		req.CoachClass, reservationType, req.Passengers)
	if err != nil {
		return nil, err
	}

	summary := breakdown.Summary()
	return &summary, nil
}

// CancelTicket cancels one passenger ticket and returns its record
func (s *BookingService) CancelTicket(ctx context.Context, ticketID uuid.UUID) (*models.CancellationRecord, error) {
	return s.inventory.Cancel(ctx, ticketID)
}

// TicketStatus resolves a ticket's live status, physical seat and, for
// cancelled tickets, the cancellation record.
func (s *BookingService) TicketStatus(ctx context.Context, ticketID uuid.UUID) (*models.TicketStatus, error) {
	ticket, err := s.tickets.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetByID(ticket.BookingID)
	if err != nil {
		return nil, err
	}

	return s.ticketStatusView(ticket, booking)
}

// PNRStatus resolves every ticket on a booking by its PNR
func (s *BookingService) PNRStatus(ctx context.Context, pnr string) (*models.Booking, []models.TicketStatus, error) {
	booking, err := s.bookings.GetByPNR(pnr)
	if err != nil {
		return nil, nil, err
	}

	tickets, err := s.tickets.GetByBookingID(booking.ID)
	if err != nil {
		return nil, nil, err
	}

	statuses := make([]models.TicketStatus, 0, len(tickets))
	for i := range tickets {
		status, err := s.ticketStatusView(&tickets[i], booking)
		if err != nil {
			return nil, nil, err
		}
		statuses = append(statuses, *status)
	}

	return booking, statuses, nil
}

// BookingsByMobile lists every booking made from a mobile number
func (s *BookingService) BookingsByMobile(ctx context.Context, mobile string) ([]models.Booking, error) {
	normalized, err := s.phones.Validate(mobile)
	if err != nil {
		return nil, fmt.Errorf("invalid mobile number: %w", err)
	}
	return s.bookings.GetByMobileNumber(normalized)
}

// ticketStatusView assembles the caller-facing view of one ticket.
func (s *BookingService) ticketStatusView(ticket *models.PassengerTicket, booking *models.Booking) (*models.TicketStatus, error) {
	status := &models.TicketStatus{
		TicketID:      ticket.ID,
		PNR:           booking.PNR,
		TrainNumber:   booking.TrainNumber,
		DateOfJourney: booking.DateOfJourney,
		CoachClass:    booking.CoachClass,
		PassengerName: ticket.Name,
		Status:        ticket.SeatStatus,
	}

	if ticket.SeatStatus == models.StatusConfirmed && ticket.SeatSequence != nil {
		assigned, err := allocation.ResolveSeat(booking.CoachClass, *ticket.SeatSequence)
		if err != nil {
			return nil, fmt.Errorf("resolve seat %d: %w", *ticket.SeatSequence, err)
		}
		status.CoachInstance = assigned.CoachInstance
		status.SeatInCoach = assigned.SeatInCoach
		status.BerthType = assigned.BerthType
	}
	if ticket.QueuePosition != nil {
		status.QueuePosition = *ticket.QueuePosition
	}
	if ticket.SeatStatus == models.StatusCancelled {
		record, err := s.cancellations.GetByTicketID(ticket.ID)
		if err != nil {
			return nil, err
		}
		status.Cancellation = record
	}

	return status, nil
}

// Availability reports occupancy for every class a train runs on a date
func (s *BookingService) Availability(ctx context.Context, trainNumber, date string) ([]models.ClassAvailability, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidJourneyDate, date)
	}
	if _, err := s.trains.GetByNumber(trainNumber); err != nil {
		return nil, err
	}

	configs, err := s.trains.ClassConfigs(trainNumber)
	if err != nil {
		return nil, err
	}

	out := make([]models.ClassAvailability, 0, len(configs))
	for _, cfg := range configs {
		avail, err := s.inventory.Availability(ctx, trainNumber, date, cfg.CoachClass)
		if err != nil {
			return nil, err
		}
		out = append(out, *avail)
	}
	return out, nil
}

// price resolves distance and fare rule, then computes the breakdown.
func (s *BookingService) price(ctx context.Context, trainNumber, source, dest string,
	class models.CoachClass, reservationType models.ReservationType,
	passengers []models.PassengerRequest) (*fare.Breakdown, error) {

	distance, err := s.schedule.DistanceBetween(trainNumber, source, dest)
	if err != nil {
		return nil, err
	}

	cfg, err := s.trains.ClassConfig(ctx, trainNumber, class)
	if err != nil {
		return nil, err
	}

	rule := fare.Rule{
		FarePerKm: cfg.FarePerKm,
		FlatAddon: fare.AddonFor(reservationType),
	}
	return fare.ComputeFare(distance, rule, passengers)
}

// allocatePNR draws random 10-digit PNRs until one is free.
func (s *BookingService) allocatePNR() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		pnr, err := generatePNR()
		if err != nil {
			return "", err
		}
		taken, err := s.bookings.PNRExists(pnr)
		if err != nil {
			return "", err
		}
		if !taken {
			return pnr, nil
		}
	}
	return "", ErrPNRExhausted
}

func generatePNR() (string, error) {
	max := big.NewInt(1_000_000_000) // 9 random digits after the leading 4
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate pnr: %w", err)
	}
	return fmt.Sprintf("4%09d", n), nil
}

func isTatkalType(rt models.ReservationType) bool {
	switch rt {
	case models.ReservationTatkalTicket, models.ReservationPremiumTicket,
		models.ReservationTatkal, models.ReservationPremiumTatkal:
		return true
	}
	return false
}
