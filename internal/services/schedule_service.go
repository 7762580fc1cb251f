package services

import (
	"context"
	"fmt"
	"time"

	"github.com/railserve/reservation-backend/internal/config"
	"github.com/railserve/reservation-backend/internal/database"
	"github.com/railserve/reservation-backend/internal/models"
)

var (
	// ErrStationNotOnRoute indicates a station pair not served by the train
	ErrStationNotOnRoute = fmt.Errorf("station is not on the train's route")

	// ErrWrongDirection indicates destination comes before source on the route
	ErrWrongDirection = fmt.Errorf("destination precedes source on this route")
)

// ScheduleService answers time and distance questions about train routes:
// hours until departure, journey distance and tatkal window openings. All
// departure arithmetic happens in the configured operating timezone.
type ScheduleService struct {
	trains   *database.TrainRepository
	location *time.Location
	booking  config.BookingConfig

	// now is swappable for tests
	now func() time.Time
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(trains *database.TrainRepository, cfg config.BookingConfig) (*ScheduleService, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid booking timezone %q: %w", cfg.Timezone, err)
	}

	return &ScheduleService{
		trains:   trains,
		location: loc,
		booking:  cfg,
		now:      time.Now,
	}, nil
}

// HoursToDeparture returns the hours remaining until the train departs the
// booking's boarding station on the date of journey. Negative values mean
// the train has already left.
func (s *ScheduleService) HoursToDeparture(ctx context.Context, booking *models.Booking) (float64, error) {
	stop, err := s.trains.StopAt(booking.TrainNumber, booking.BoardingStation)
	if err != nil {
		return 0, err
	}

	departure, err := s.departureTime(stop, booking.DateOfJourney)
	if err != nil {
		return 0, err
	}

	return departure.Sub(s.now()).Hours(), nil
}

// DistanceBetween returns the journey distance in km between two stations
// on a train's route
func (s *ScheduleService) DistanceBetween(trainNumber, fromStation, toStation string) (float64, error) {
	stops, err := s.trains.Stops(trainNumber)
	if err != nil {
		return 0, err
	}

	var from, to *models.TrainStop
	for i := range stops {
		switch stops[i].StationCode {
		case fromStation:
			from = &stops[i]
		case toStation:
			to = &stops[i]
		}
	}
	if from == nil || to == nil {
		return 0, fmt.Errorf("%w: %s-%s on train %s", ErrStationNotOnRoute, fromStation, toStation, trainNumber)
	}
	if to.StopOrder <= from.StopOrder {
		return 0, fmt.Errorf("%w: %s-%s on train %s", ErrWrongDirection, fromStation, toStation, trainNumber)
	}

	return to.DistanceKm - from.DistanceKm, nil
}

// TatkalOpensAt returns the moment the tatkal quota opens for a class and
// journey date: the day before the journey, at the AC or non-AC opening
// time.
func (s *ScheduleService) TatkalOpensAt(class models.CoachClass, dateOfJourney time.Time) (time.Time, error) {
	open := s.booking.TatkalOpenNonAC
	if isAirConditioned(class) {
		open = s.booking.TatkalOpenAC
	}

	openClock, err := time.Parse("15:04", open)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid tatkal open time %q: %w", open, err)
	}

	openDay := dateOfJourney.AddDate(0, 0, -1)
	return time.Date(openDay.Year(), openDay.Month(), openDay.Day(),
		openClock.Hour(), openClock.Minute(), 0, 0, s.location), nil
}

// IsTatkalOpen reports whether tatkal bookings are currently accepted for
// a class and journey date
func (s *ScheduleService) IsTatkalOpen(class models.CoachClass, dateOfJourney time.Time) (bool, error) {
	opensAt, err := s.TatkalOpensAt(class, dateOfJourney)
	if err != nil {
		return false, err
	}
	return !s.now().Before(opensAt), nil
}

// WithinAdvancePeriod reports whether a journey date is bookable: not in
// the past and no further ahead than the advance reservation period.
func (s *ScheduleService) WithinAdvancePeriod(dateOfJourney time.Time) bool {
	now := s.now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	journey := time.Date(dateOfJourney.Year(), dateOfJourney.Month(), dateOfJourney.Day(), 0, 0, 0, 0, s.location)

	if journey.Before(today) {
		return false
	}
	return !journey.After(today.AddDate(0, 0, s.booking.AdvancePeriodDays))
}

// departureTime anchors a stop's HH:MM departure on the journey date.
func (s *ScheduleService) departureTime(stop *models.TrainStop, dateOfJourney time.Time) (time.Time, error) {
	clock, err := time.Parse("15:04", stop.DepartureTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed departure time %q for %s: %w", stop.DepartureTime, stop.StationCode, err)
	}

	return time.Date(dateOfJourney.Year(), dateOfJourney.Month(), dateOfJourney.Day(),
		clock.Hour(), clock.Minute(), 0, 0, s.location), nil
}

// isAirConditioned reports whether a class belongs to the AC tatkal pool
func isAirConditioned(class models.CoachClass) bool {
	switch class {
	case models.Class3AC, models.Class2AC, models.Class1AC, models.Class3ACEconomy,
		models.ClassChairCar, models.ClassExecChair, models.ClassExecAnubhuti:
		return true
	}
	return false
}
