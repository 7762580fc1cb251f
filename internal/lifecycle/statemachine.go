// Package lifecycle owns the ticket state machine for one seat inventory
// partition: admission into CNF/RAC/WTL and the promotion cascade that a
// cancellation triggers. All operations work on an in-memory queue
// snapshot and emit an explicit change-set; persisting the change-set
// atomically is the caller's job, so a failed commit never leaves a
// half-applied cascade.
package lifecycle

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/railserve/reservation-backend/internal/models"
)

var (
	// ErrSoldOut means no CNF, RAC or WTL capacity remains.
	ErrSoldOut = errors.New("no seats, rac or waitlist capacity left")
	// ErrAlreadyCancelled rejects cancelling a ticket twice.
	ErrAlreadyCancelled = errors.New("ticket already cancelled")
	// ErrNotInPartition means the ticket does not belong to this snapshot.
	ErrNotInPartition = errors.New("ticket not present in partition")
)

// QueueState is the in-memory snapshot of one (train, date, class)
// partition. RAC and WTL are ordered; a member's queue position is its
// index plus one, which keeps positions unique, contiguous and gap-free
// by construction.
type QueueState struct {
	Capacity    int // confirmed-seat budget (coaches × seats per coach)
	RACCapacity int
	WTLCapacity int

	seatByTicket map[uuid.UUID]int
	ticketBySeat map[int]uuid.UUID
	rac          []uuid.UUID
	wtl          []uuid.UUID
	cancelled    map[uuid.UUID]bool
}

// TicketChange is one persisted consequence of an admission or cascade.
type TicketChange struct {
	TicketID      uuid.UUID
	Status        models.SeatStatus
	SeatSequence  *int
	QueuePosition *int
}

// CancelOutcome is the full change-set of one cancellation cascade.
type CancelOutcome struct {
	Changes       []TicketChange
	PromotedToCNF *uuid.UUID
	PromotedToRAC *uuid.UUID
	// RACEmptySkipped is set when a confirmed ticket was cancelled while
	// the RAC queue was empty but the waitlist was not: no promotion
	// happens, matching the original engine's behavior.
	RACEmptySkipped bool
}

// Admission is the placement decision for one newly booked passenger.
type Admission struct {
	Status        models.SeatStatus
	SeatSequence  *int
	QueuePosition *int
}

// NewQueueState rebuilds a snapshot from the partition's live tickets.
// RAC and WTL members are ordered by their stored queue positions.
func NewQueueState(capacity, racCapacity, wtlCapacity int, tickets []models.PassengerTicket) (*QueueState, error) {
	q := &QueueState{
		Capacity:     capacity,
		RACCapacity:  racCapacity,
		WTLCapacity:  wtlCapacity,
		seatByTicket: make(map[uuid.UUID]int),
		ticketBySeat: make(map[int]uuid.UUID),
		cancelled:    make(map[uuid.UUID]bool),
	}

	type queued struct {
		id  uuid.UUID
		pos int
	}
	var rac, wtl []queued

	for _, t := range tickets {
		switch t.SeatStatus {
		case models.StatusConfirmed:
			if t.SeatSequence == nil {
				return nil, fmt.Errorf("confirmed ticket %s has no seat sequence", t.ID)
			}
			q.seatByTicket[t.ID] = *t.SeatSequence
			q.ticketBySeat[*t.SeatSequence] = t.ID
		case models.StatusRAC:
			if t.QueuePosition == nil {
				return nil, fmt.Errorf("rac ticket %s has no queue position", t.ID)
			}
			rac = append(rac, queued{t.ID, *t.QueuePosition})
		case models.StatusWaitlisted:
			if t.QueuePosition == nil {
				return nil, fmt.Errorf("waitlisted ticket %s has no queue position", t.ID)
			}
			wtl = append(wtl, queued{t.ID, *t.QueuePosition})
		case models.StatusCancelled:
			q.cancelled[t.ID] = true
		}
	}

	sort.Slice(rac, func(i, j int) bool { return rac[i].pos < rac[j].pos })
	sort.Slice(wtl, func(i, j int) bool { return wtl[i].pos < wtl[j].pos })
	for i, m := range rac {
		if m.pos != i+1 {
			return nil, fmt.Errorf("rac queue has a gap at position %d", i+1)
		}
		q.rac = append(q.rac, m.id)
	}
	for i, m := range wtl {
		if m.pos != i+1 {
			return nil, fmt.Errorf("waitlist queue has a gap at position %d", i+1)
		}
		q.wtl = append(q.wtl, m.id)
	}
	return q, nil
}

// ConfirmedCount returns the number of live confirmed tickets.
func (q *QueueState) ConfirmedCount() int { return len(q.seatByTicket) }

// RACCount returns the RAC queue length.
func (q *QueueState) RACCount() int { return len(q.rac) }

// WTLCount returns the waitlist length.
func (q *QueueState) WTLCount() int { return len(q.wtl) }

// Admit places a new ticket: lowest free physical slot first, then the
// RAC tail, then the waitlist tail, and ErrSoldOut beyond that.
func (q *QueueState) Admit(ticketID uuid.UUID) (Admission, error) {
	if len(q.seatByTicket) < q.Capacity {
		seq := q.lowestFreeSeat()
		q.seatByTicket[ticketID] = seq
		q.ticketBySeat[seq] = ticketID
		return Admission{Status: models.StatusConfirmed, SeatSequence: &seq}, nil
	}
	if len(q.rac) < q.RACCapacity {
		q.rac = append(q.rac, ticketID)
		pos := len(q.rac)
		return Admission{Status: models.StatusRAC, QueuePosition: &pos}, nil
	}
	if len(q.wtl) < q.WTLCapacity {
		q.wtl = append(q.wtl, ticketID)
		pos := len(q.wtl)
		return Admission{Status: models.StatusWaitlisted, QueuePosition: &pos}, nil
	}
	return Admission{}, ErrSoldOut
}

// ReassignSeat moves a confirmed ticket onto a different seat of the same
// partition. It reports false and leaves the state untouched when the
// ticket is not confirmed here, the target is out of range or the target
// seat is already taken.
func (q *QueueState) ReassignSeat(ticketID uuid.UUID, newSeq int) bool {
	cur, ok := q.seatByTicket[ticketID]
	if !ok || newSeq < 1 || newSeq > q.Capacity {
		return false
	}
	if newSeq == cur {
		return true
	}
	if _, taken := q.ticketBySeat[newSeq]; taken {
		return false
	}
	delete(q.ticketBySeat, cur)
	q.seatByTicket[ticketID] = newSeq
	q.ticketBySeat[newSeq] = ticketID
	return true
}

// Cancel removes a ticket and cascades promotions per its status. The
// returned change-set covers the cancelled ticket and every promotion and
// renumbering it caused; callers must commit it atomically.
func (q *QueueState) Cancel(ticketID uuid.UUID) (*CancelOutcome, error) {
	if q.cancelled[ticketID] {
		return nil, ErrAlreadyCancelled
	}
	if seat, ok := q.seatByTicket[ticketID]; ok {
		return q.cancelConfirmed(ticketID, seat), nil
	}
	if idx := indexOf(q.rac, ticketID); idx >= 0 {
		return q.cancelRAC(ticketID, idx), nil
	}
	if idx := indexOf(q.wtl, ticketID); idx >= 0 {
		return q.cancelWaitlisted(ticketID, idx), nil
	}
	return nil, ErrNotInPartition
}

func (q *QueueState) cancelConfirmed(ticketID uuid.UUID, seat int) *CancelOutcome {
	out := &CancelOutcome{}
	delete(q.seatByTicket, ticketID)
	delete(q.ticketBySeat, seat)
	q.cancelled[ticketID] = true
	out.Changes = append(out.Changes, TicketChange{TicketID: ticketID, Status: models.StatusCancelled})

	if len(q.rac) == 0 {
		// The original engine performs no promotion here even when the
		// waitlist is non-empty; the freed seat goes back to open sale.
		out.RACEmptySkipped = len(q.wtl) > 0
		return out
	}

	// RAC head takes over the freed physical slot.
	promoted := q.rac[0]
	q.rac = q.rac[1:]
	q.seatByTicket[promoted] = seat
	q.ticketBySeat[seat] = promoted
	seatCopy := seat
	out.PromotedToCNF = &promoted
	out.Changes = append(out.Changes, TicketChange{
		TicketID:     promoted,
		Status:       models.StatusConfirmed,
		SeatSequence: &seatCopy,
	})

	// Everyone left in RAC moves up one.
	out.Changes = append(out.Changes, renumber(q.rac, models.StatusRAC, 0)...)

	// Waitlist head backfills the RAC tail.
	if len(q.wtl) > 0 {
		joining := q.wtl[0]
		q.wtl = q.wtl[1:]
		q.rac = append(q.rac, joining)
		pos := len(q.rac)
		out.PromotedToRAC = &joining
		out.Changes = append(out.Changes, TicketChange{
			TicketID:      joining,
			Status:        models.StatusRAC,
			QueuePosition: &pos,
		})
		out.Changes = append(out.Changes, renumber(q.wtl, models.StatusWaitlisted, 0)...)
	}
	return out
}

func (q *QueueState) cancelRAC(ticketID uuid.UUID, idx int) *CancelOutcome {
	out := &CancelOutcome{}
	q.rac = append(q.rac[:idx], q.rac[idx+1:]...)
	q.cancelled[ticketID] = true
	out.Changes = append(out.Changes, TicketChange{TicketID: ticketID, Status: models.StatusCancelled})

	// Members behind the hole move up one.
	out.Changes = append(out.Changes, renumber(q.rac[idx:], models.StatusRAC, idx)...)

	// Waitlist head backfills the RAC tail.
	if len(q.wtl) > 0 {
		joining := q.wtl[0]
		q.wtl = q.wtl[1:]
		q.rac = append(q.rac, joining)
		pos := len(q.rac)
		out.PromotedToRAC = &joining
		out.Changes = append(out.Changes, TicketChange{
			TicketID:      joining,
			Status:        models.StatusRAC,
			QueuePosition: &pos,
		})
		out.Changes = append(out.Changes, renumber(q.wtl, models.StatusWaitlisted, 0)...)
	}
	return out
}

func (q *QueueState) cancelWaitlisted(ticketID uuid.UUID, idx int) *CancelOutcome {
	out := &CancelOutcome{}
	q.wtl = append(q.wtl[:idx], q.wtl[idx+1:]...)
	q.cancelled[ticketID] = true
	out.Changes = append(out.Changes, TicketChange{TicketID: ticketID, Status: models.StatusCancelled})
	out.Changes = append(out.Changes, renumber(q.wtl[idx:], models.StatusWaitlisted, idx)...)
	return out
}

// renumber emits position updates for queue members whose index changed.
// offset is the index of the first affected member within the full queue.
func renumber(members []uuid.UUID, status models.SeatStatus, offset int) []TicketChange {
	changes := make([]TicketChange, 0, len(members))
	for i, id := range members {
		pos := offset + i + 1
		changes = append(changes, TicketChange{
			TicketID:      id,
			Status:        status,
			QueuePosition: &pos,
		})
	}
	return changes
}

func (q *QueueState) lowestFreeSeat() int {
	for seq := 1; seq <= q.Capacity; seq++ {
		if _, taken := q.ticketBySeat[seq]; !taken {
			return seq
		}
	}
	// Unreachable: callers check the confirmed count against capacity.
	return q.Capacity + 1
}

func indexOf(queue []uuid.UUID, id uuid.UUID) int {
	for i, member := range queue {
		if member == id {
			return i
		}
	}
	return -1
}

// RACPositions returns the live RAC queue in order; used by availability
// reporting and tests.
func (q *QueueState) RACPositions() []uuid.UUID { return append([]uuid.UUID(nil), q.rac...) }

// WTLPositions returns the live waitlist in order.
func (q *QueueState) WTLPositions() []uuid.UUID { return append([]uuid.UUID(nil), q.wtl...) }
