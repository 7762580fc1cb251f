package inventory

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railserve/reservation-backend/internal/fare"
	"github.com/railserve/reservation-backend/internal/lifecycle"
	"github.com/railserve/reservation-backend/internal/models"
)

// memStore is an in-memory Store with the same atomicity contract as the
// SQL-backed one: every call mutates under one lock.
type memStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking
	tickets  map[uuid.UUID]*models.PassengerTicket
	records  map[uuid.UUID]*models.CancellationRecord
}

func newMemStore() *memStore {
	return &memStore{
		bookings: make(map[uuid.UUID]*models.Booking),
		tickets:  make(map[uuid.UUID]*models.PassengerTicket),
		records:  make(map[uuid.UUID]*models.CancellationRecord),
	}
}

func (s *memStore) PartitionTickets(_ context.Context, key PartitionKey) ([]models.PassengerTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PassengerTicket
	for _, t := range s.tickets {
		b := s.bookings[t.BookingID]
		if KeyFor(b) == key {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memStore) TicketWithBooking(_ context.Context, ticketID uuid.UUID) (*models.PassengerTicket, *models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, nil, nil
	}
	ticket := *t
	booking := *s.bookings[t.BookingID]
	return &ticket, &booking, nil
}

func (s *memStore) CreateBooking(_ context.Context, booking *models.Booking, tickets []models.PassengerTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[booking.ID] = booking
	for i := range tickets {
		t := tickets[i]
		s.tickets[t.ID] = &t
	}
	return nil
}

func (s *memStore) ApplyCancellation(_ context.Context, changes []lifecycle.TicketChange, record *models.CancellationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range changes {
		t := s.tickets[ch.TicketID]
		t.SeatStatus = ch.Status
		t.SeatSequence = ch.SeatSequence
		t.QueuePosition = ch.QueuePosition
	}
	s.records[record.TicketID] = record
	return nil
}

type fixedConfigs struct{ coaches int }

func (f fixedConfigs) ClassConfig(_ context.Context, trainNumber string, class models.CoachClass) (*models.TrainClassConfig, error) {
	return &models.TrainClassConfig{TrainNumber: trainNumber, CoachClass: class, Coaches: f.coaches, FarePerKm: 1}, nil
}

type fixedClock struct{ hours float64 }

func (f fixedClock) HoursToDeparture(context.Context, *models.Booking) (float64, error) {
	return f.hours, nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testBooking(class models.CoachClass, rt models.ReservationType) *models.Booking {
	return &models.Booking{
		ID:              uuid.New(),
		PNR:             "PNR0001",
		TrainNumber:     "12301",
		SourceStation:   "HWH",
		DestStation:     "NDLS",
		BoardingStation: "HWH",
		DateOfJourney:   time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		ReservationType: rt,
		CoachClass:      class,
	}
}

func passengerTickets(bookingID uuid.UUID, n int, baseFare float64) []models.PassengerTicket {
	tickets := make([]models.PassengerTicket, n)
	for i := range tickets {
		tickets[i] = models.PassengerTicket{
			ID:        uuid.New(),
			BookingID: bookingID,
			Name:      "Passenger",
			Age:       30,
			Gender:    "M",
			BaseFare:  baseFare,
			NetFare:   baseFare,
		}
	}
	return tickets
}

// bookN books n single-passenger bookings into the same partition and
// returns the tickets in admission order.
func bookN(t *testing.T, c *Coordinator, store *memStore, class models.CoachClass, n int) []models.PassengerTicket {
	t.Helper()
	var all []models.PassengerTicket
	for i := 0; i < n; i++ {
		booking := testBooking(class, models.ReservationGeneral)
		tickets := passengerTickets(booking.ID, 1, 100)
		_, err := c.Book(context.Background(), booking, tickets)
		require.NoError(t, err)
		all = append(all, tickets...)
	}
	return all
}

func newTestCoordinator(store *memStore, coaches int) *Coordinator {
	return NewCoordinator(store, fixedConfigs{coaches: coaches}, fixedClock{hours: 24},
		fare.DefaultCancellationPolicy(), testLogger())
}

func TestBookFillsSeatsThenQueues(t *testing.T) {
	store := newMemStore()
	// FC: single coach, 26 seats, no RAC, 10 WTL slots.
	c := newTestCoordinator(store, 1)

	booking := testBooking(models.ClassFirstClass, models.ReservationGeneral)
	tickets := passengerTickets(booking.ID, 2, 100)
	results, err := c.Book(context.Background(), booking, tickets)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, models.StatusConfirmed, results[0].Status)
	assert.Equal(t, 1, results[0].CoachInstance)
	assert.Equal(t, 1, results[0].SeatInCoach)
	assert.Equal(t, models.BerthLower, results[0].BerthType)
	assert.Equal(t, models.BerthUpper, results[1].BerthType)

	// Fill the remaining 24 seats, then the 10 waitlist slots.
	bookN(t, c, store, models.ClassFirstClass, 24)
	wtl := bookN(t, c, store, models.ClassFirstClass, 10)
	assert.Equal(t, models.StatusWaitlisted, store.tickets[wtl[9].ID].SeatStatus)
	assert.Equal(t, 10, *store.tickets[wtl[9].ID].QueuePosition)

	// Seat 27 does not exist.
	booking = testBooking(models.ClassFirstClass, models.ReservationGeneral)
	_, err = c.Book(context.Background(), booking, passengerTickets(booking.ID, 1, 100))
	assert.ErrorIs(t, err, lifecycle.ErrSoldOut)
}

func TestBookPersistsLowerBerthSubstitution(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, 1)

	// Seat 1 (LB) goes first, so the next admission lands on seat 2 (MB).
	bookN(t, c, store, models.ClassSleeper, 1)

	booking := testBooking(models.ClassSleeper, models.ReservationGeneral)
	tickets := passengerTickets(booking.ID, 1, 100)
	tickets[0].PreferredBerth = models.BerthLower
	results, err := c.Book(context.Background(), booking, tickets)
	require.NoError(t, err)

	// The quota substitutes seat 4 (the bay's second lower berth) and the
	// stored sequence matches the seat the passenger was told.
	assert.Equal(t, 4, results[0].SeatInCoach)
	assert.Equal(t, models.BerthLower, results[0].BerthType)
	require.NotNil(t, store.tickets[tickets[0].ID].SeatSequence)
	assert.Equal(t, 4, *store.tickets[tickets[0].ID].SeatSequence)

	// The freed seat 2 goes to the next passenger, reported consistently.
	next := bookN(t, c, store, models.ClassSleeper, 1)
	assert.Equal(t, 2, *store.tickets[next[0].ID].SeatSequence)

	// Another lower-berth preference lands on seat 3; its substitution
	// target (seat 4) is taken, so the admitted seat stands.
	booking = testBooking(models.ClassSleeper, models.ReservationGeneral)
	tickets = passengerTickets(booking.ID, 1, 100)
	tickets[0].PreferredBerth = models.BerthLower
	results, err = c.Book(context.Background(), booking, tickets)
	require.NoError(t, err)
	assert.Equal(t, 3, results[0].SeatInCoach)
	assert.Equal(t, models.BerthUpper, results[0].BerthType)
	assert.Equal(t, 3, *store.tickets[tickets[0].ID].SeatSequence)
}

func TestBookAllOrNothing(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, 1)

	// Fill FC completely except one waitlist slot.
	bookN(t, c, store, models.ClassFirstClass, 26)
	bookN(t, c, store, models.ClassFirstClass, 9)

	// A two-passenger booking needs two slots; only one remains, so the
	// entire booking must be rejected and nothing persisted.
	booking := testBooking(models.ClassFirstClass, models.ReservationGeneral)
	tickets := passengerTickets(booking.ID, 2, 100)
	_, err := c.Book(context.Background(), booking, tickets)
	assert.ErrorIs(t, err, lifecycle.ErrSoldOut)
	_, ok := store.bookings[booking.ID]
	assert.False(t, ok)
}

func TestCancelConfirmedCascadesThroughStore(t *testing.T) {
	store := newMemStore()
	// SL with one coach: 72 seats, RAC 20, WTL 100.
	c := newTestCoordinator(store, 1)

	cnf := bookN(t, c, store, models.ClassSleeper, 72)
	rac := bookN(t, c, store, models.ClassSleeper, 3)
	wtl := bookN(t, c, store, models.ClassSleeper, 2)

	record, err := c.Cancel(context.Background(), cnf[9].ID)
	require.NoError(t, err)
	require.NotNil(t, record)

	// RAC head took the freed seat.
	promoted := store.tickets[rac[0].ID]
	assert.Equal(t, models.StatusConfirmed, promoted.SeatStatus)
	require.NotNil(t, promoted.SeatSequence)
	assert.Equal(t, 10, *promoted.SeatSequence)
	assert.Nil(t, promoted.QueuePosition)

	// Remaining RAC members moved up; WTL head joined at the tail.
	assert.Equal(t, 1, *store.tickets[rac[1].ID].QueuePosition)
	assert.Equal(t, 2, *store.tickets[rac[2].ID].QueuePosition)
	joined := store.tickets[wtl[0].ID]
	assert.Equal(t, models.StatusRAC, joined.SeatStatus)
	assert.Equal(t, 3, *joined.QueuePosition)
	assert.Equal(t, 1, *store.tickets[wtl[1].ID].QueuePosition)

	// GEN confirmed ticket 24h out retains 10% of a 100 base fare.
	assert.Equal(t, 10.0, record.Charge)
	assert.Equal(t, 90.0, record.RefundAmount)
}

func TestCancelChargesBaseFareRefundsNetFare(t *testing.T) {
	store := newMemStore()
	// One hour to departure: the full base fare is retained.
	c := NewCoordinator(store, fixedConfigs{coaches: 1}, fixedClock{hours: 1},
		fare.DefaultCancellationPolicy(), testLogger())

	// A free child ticket pays only the addon; cancelling charges nothing
	// and refunds the addon.
	booking := testBooking(models.ClassSleeper, models.ReservationGeneral)
	child := passengerTickets(booking.ID, 1, 0)
	child[0].Age = 3
	child[0].IsChild = true
	child[0].NetFare = 20
	_, err := c.Book(context.Background(), booking, child)
	require.NoError(t, err)

	record, err := c.Cancel(context.Background(), child[0].ID)
	require.NoError(t, err)
	assert.Zero(t, record.Charge)
	assert.Equal(t, 20.0, record.RefundAmount)

	// A senior forfeits the full base fare; the refund floors at zero
	// rather than going negative against the discounted net fare.
	booking = testBooking(models.ClassSleeper, models.ReservationGeneral)
	senior := passengerTickets(booking.ID, 1, 100)
	senior[0].Age = 70
	senior[0].IsSenior = true
	senior[0].NetFare = 80
	_, err = c.Book(context.Background(), booking, senior)
	require.NoError(t, err)

	record, err = c.Cancel(context.Background(), senior[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, record.Charge)
	assert.Zero(t, record.RefundAmount)
}

func TestCancelWaitlistedFullRefund(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, 1)

	bookN(t, c, store, models.ClassFirstClass, 26)
	wtl := bookN(t, c, store, models.ClassFirstClass, 2)

	record, err := c.Cancel(context.Background(), wtl[0].ID)
	require.NoError(t, err)
	assert.Zero(t, record.Charge)
	assert.Equal(t, 100.0, record.RefundAmount)
	assert.Equal(t, 1, *store.tickets[wtl[1].ID].QueuePosition)
}

func TestCancelTwice(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, 1)

	tickets := bookN(t, c, store, models.ClassSleeper, 1)
	_, err := c.Cancel(context.Background(), tickets[0].ID)
	require.NoError(t, err)
	_, err = c.Cancel(context.Background(), tickets[0].ID)
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyCancelled)
}

func TestCancelUnknownTicket(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, 1)
	_, err := c.Cancel(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentCancellationsKeepQueueContiguous(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, 1)

	bookN(t, c, store, models.ClassSleeper, 72)
	rac := bookN(t, c, store, models.ClassSleeper, 10)

	// Two distinct RAC cancellations racing on the same partition must
	// serialize; positions stay unique and gap-free.
	var wg sync.WaitGroup
	for _, id := range []uuid.UUID{rac[2].ID, rac[7].ID} {
		wg.Add(1)
		go func(ticketID uuid.UUID) {
			defer wg.Done()
			_, err := c.Cancel(context.Background(), ticketID)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	positions := make(map[int]uuid.UUID)
	count := 0
	for id, ticket := range store.tickets {
		if ticket.SeatStatus != models.StatusRAC {
			continue
		}
		require.NotNil(t, ticket.QueuePosition)
		_, dup := positions[*ticket.QueuePosition]
		assert.False(t, dup, "duplicate queue position %d", *ticket.QueuePosition)
		positions[*ticket.QueuePosition] = id
		count++
	}
	assert.Equal(t, 8, count)
	for pos := 1; pos <= count; pos++ {
		_, ok := positions[pos]
		assert.True(t, ok, "missing queue position %d", pos)
	}
}

func TestAvailability(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, 1)

	bookN(t, c, store, models.ClassSleeper, 73) // 72 CNF + 1 RAC

	avail, err := c.Availability(context.Background(), "12301", "2026-10-20", models.ClassSleeper)
	require.NoError(t, err)
	assert.Equal(t, 72, avail.TotalSeats)
	assert.Equal(t, 72, avail.ConfirmedCount)
	assert.Equal(t, 1, avail.RACCount)
	assert.Equal(t, 20, avail.RACCapacity)
	assert.Equal(t, 0, avail.WTLCount)
}
