// Package inventory serializes all booking and cancellation traffic
// against a (train, date, class) partition. The partition is the unit of
// mutual exclusion: one mutex per key, taken for the whole
// load-decide-commit cycle, while different partitions proceed
// independently. Fare math and seat resolution stay pure and lock-free.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/railserve/reservation-backend/internal/allocation"
	"github.com/railserve/reservation-backend/internal/fare"
	"github.com/railserve/reservation-backend/internal/layout"
	"github.com/railserve/reservation-backend/internal/lifecycle"
	"github.com/railserve/reservation-backend/internal/models"
)

// ErrNotFound is returned when a ticket id does not exist.
var ErrNotFound = errors.New("ticket not found")

// PartitionKey scopes one independent seat inventory.
type PartitionKey struct {
	TrainNumber string
	Date        string // YYYY-MM-DD
	CoachClass  models.CoachClass
}

// KeyFor derives the partition key of a booking.
func KeyFor(b *models.Booking) PartitionKey {
	return PartitionKey{
		TrainNumber: b.TrainNumber,
		Date:        b.DateOfJourney.Format("2006-01-02"),
		CoachClass:  b.CoachClass,
	}
}

// Store is the transactional persistence consumed by the coordinator.
// Implementations must apply each call atomically: a cascade change-set
// either commits whole or not at all.
type Store interface {
	// PartitionTickets returns every ticket of a partition, cancelled
	// ones included.
	PartitionTickets(ctx context.Context, key PartitionKey) ([]models.PassengerTicket, error)
	// TicketWithBooking loads a ticket and its owning booking.
	TicketWithBooking(ctx context.Context, ticketID uuid.UUID) (*models.PassengerTicket, *models.Booking, error)
	// CreateBooking persists a booking and its tickets in one transaction.
	CreateBooking(ctx context.Context, booking *models.Booking, tickets []models.PassengerTicket) error
	// ApplyCancellation persists a cascade change-set plus the
	// cancellation record in one transaction.
	ApplyCancellation(ctx context.Context, changes []lifecycle.TicketChange, record *models.CancellationRecord) error
}

// ClassConfigSource resolves how many coaches of a class a train runs.
type ClassConfigSource interface {
	ClassConfig(ctx context.Context, trainNumber string, class models.CoachClass) (*models.TrainClassConfig, error)
}

// DepartureClock reports the hours remaining until a booking's departure
// from its boarding station, in the train's operating timezone.
type DepartureClock interface {
	HoursToDeparture(ctx context.Context, booking *models.Booking) (float64, error)
}

// Coordinator owns the per-partition locks and drives the lifecycle state
// machine against the store.
type Coordinator struct {
	store   Store
	configs ClassConfigSource
	clock   DepartureClock
	policy  fare.CancellationPolicy
	logger  *logrus.Logger

	mu    sync.Mutex
	locks map[PartitionKey]*sync.Mutex
}

// NewCoordinator creates a coordinator over the given store.
func NewCoordinator(store Store, configs ClassConfigSource, clock DepartureClock, policy fare.CancellationPolicy, logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		store:   store,
		configs: configs,
		clock:   clock,
		policy:  policy,
		logger:  logger,
		locks:   make(map[PartitionKey]*sync.Mutex),
	}
}

// partitionLock returns the mutex for a key, creating it on first use.
func (c *Coordinator) partitionLock(key PartitionKey) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

// Book places every ticket of a booking into the partition and persists
// the booking atomically. Placement is all-or-nothing: if any passenger
// cannot be admitted the whole booking fails with lifecycle.ErrSoldOut.
// Tickets are mutated in place with their status, seat sequence or queue
// position.
func (c *Coordinator) Book(ctx context.Context, booking *models.Booking, tickets []models.PassengerTicket) ([]models.TicketResult, error) {
	key := KeyFor(booking)
	lock := c.partitionLock(key)
	lock.Lock()
	defer lock.Unlock()

	q, err := c.loadQueue(ctx, key)
	if err != nil {
		return nil, err
	}

	results := make([]models.TicketResult, 0, len(tickets))
	for i := range tickets {
		adm, err := q.Admit(tickets[i].ID)
		if err != nil {
			return nil, fmt.Errorf("admit passenger %q: %w", tickets[i].Name, err)
		}
		tickets[i].SeatStatus = adm.Status
		tickets[i].SeatSequence = adm.SeatSequence
		tickets[i].QueuePosition = adm.QueuePosition

		result := models.TicketResult{
			TicketID:      tickets[i].ID,
			PassengerName: tickets[i].Name,
			Status:        adm.Status,
		}
		if adm.SeatSequence != nil {
			assigned, err := allocation.ResolveSeatWithQuota(key.CoachClass, *adm.SeatSequence, quotaFor(&tickets[i]))
			if err != nil {
				return nil, fmt.Errorf("resolve seat %d: %w", *adm.SeatSequence, err)
			}
			subSeq, err := allocation.SequenceOf(key.CoachClass, assigned)
			if err != nil {
				return nil, err
			}
			if subSeq != *adm.SeatSequence {
				// The quota substituted a different physical seat. Persist
				// the substitution so later status lookups resolve the seat
				// the passenger was told; if that seat is already occupied,
				// the originally admitted one stands.
				if q.ReassignSeat(tickets[i].ID, subSeq) {
					tickets[i].SeatSequence = &subSeq
				} else {
					assigned, err = allocation.ResolveSeat(key.CoachClass, *adm.SeatSequence)
					if err != nil {
						return nil, fmt.Errorf("resolve seat %d: %w", *adm.SeatSequence, err)
					}
				}
			}
			result.CoachInstance = assigned.CoachInstance
			result.SeatInCoach = assigned.SeatInCoach
			result.BerthType = assigned.BerthType
		}
		if adm.QueuePosition != nil {
			result.QueuePosition = *adm.QueuePosition
		}
		results = append(results, result)
	}

	if err := c.store.CreateBooking(ctx, booking, tickets); err != nil {
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"pnr":        booking.PNR,
		"train":      key.TrainNumber,
		"date":       key.Date,
		"class":      key.CoachClass,
		"passengers": len(tickets),
	}).Info("Booking recorded")
	return results, nil
}

// Cancel cancels one ticket, cascades promotions within its partition and
// writes the cancellation record. The cascade commits atomically; on a
// store failure nothing is applied.
func (c *Coordinator) Cancel(ctx context.Context, ticketID uuid.UUID) (*models.CancellationRecord, error) {
	ticket, booking, err := c.store.TicketWithBooking(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrNotFound
	}
	if ticket.SeatStatus == models.StatusCancelled {
		return nil, lifecycle.ErrAlreadyCancelled
	}

	key := KeyFor(booking)
	lock := c.partitionLock(key)
	lock.Lock()
	defer lock.Unlock()

	q, err := c.loadQueue(ctx, key)
	if err != nil {
		return nil, err
	}

	outcome, err := q.Cancel(ticketID)
	if err != nil {
		return nil, err
	}

	hours, err := c.clock.HoursToDeparture(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("departure lookup: %w", err)
	}
	charge := fare.ComputeCancellationCharge(ticket, booking, hours, c.policy)
	// The charge comes off the base fare and can exceed a concession
	// ticket's net fare; the refund floors at zero.
	refund := ticket.NetFare - charge
	if refund < 0 {
		refund = 0
	}
	record := &models.CancellationRecord{
		ID:           uuid.New(),
		TicketID:     ticketID,
		Charge:       fare.Round2(charge),
		RefundAmount: fare.Round2(refund),
		CancelledAt:  time.Now().UTC(),
	}

	if err := c.store.ApplyCancellation(ctx, outcome.Changes, record); err != nil {
		return nil, fmt.Errorf("persist cancellation: %w", err)
	}

	entry := c.logger.WithFields(logrus.Fields{
		"ticket_id": ticketID,
		"train":     key.TrainNumber,
		"date":      key.Date,
		"class":     key.CoachClass,
		"charge":    record.Charge,
	})
	if outcome.RACEmptySkipped {
		entry.Warn("Confirmed ticket cancelled with empty RAC; waitlist left unpromoted")
	} else {
		entry.Info("Ticket cancelled")
	}
	return record, nil
}

// Availability reports the partition's occupancy counters.
func (c *Coordinator) Availability(ctx context.Context, trainNumber, date string, class models.CoachClass) (*models.ClassAvailability, error) {
	key := PartitionKey{TrainNumber: trainNumber, Date: date, CoachClass: class}
	lock := c.partitionLock(key)
	lock.Lock()
	defer lock.Unlock()

	q, err := c.loadQueue(ctx, key)
	if err != nil {
		return nil, err
	}
	return &models.ClassAvailability{
		CoachClass:     class,
		TotalSeats:     q.Capacity,
		ConfirmedCount: q.ConfirmedCount(),
		RACCount:       q.RACCount(),
		RACCapacity:    q.RACCapacity,
		WTLCount:       q.WTLCount(),
		WTLCapacity:    q.WTLCapacity,
	}, nil
}

// loadQueue rebuilds the partition's queue snapshot from the store.
// Callers must hold the partition lock.
func (c *Coordinator) loadQueue(ctx context.Context, key PartitionKey) (*lifecycle.QueueState, error) {
	l, err := layout.Get(key.CoachClass)
	if err != nil {
		return nil, err
	}
	cfg, err := c.configs.ClassConfig(ctx, key.TrainNumber, key.CoachClass)
	if err != nil {
		return nil, fmt.Errorf("class config for %s/%s: %w", key.TrainNumber, key.CoachClass, err)
	}
	tickets, err := c.store.PartitionTickets(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load partition %v: %w", key, err)
	}
	return lifecycle.NewQueueState(l.CapacityFor(cfg.Coaches), l.RACSlots, l.WTLSlots, tickets)
}

func quotaFor(t *models.PassengerTicket) models.BerthQuota {
	if t.PreferredBerth == models.BerthLower {
		return models.QuotaLowerBerth
	}
	return models.QuotaNone
}
