package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"labbooking/internal/domain"
	"labbooking/internal/normalize"
)

// approvalPageSize is the page size used to collect an event's pending bookings.
const approvalPageSize = 100

// Decision is a reviewer's verdict on one booking.
type Decision int

const (
	DecisionApprove Decision = iota
	DecisionReject
)

func (d Decision) status() domain.BookingStatus {
	if d == DecisionApprove {
		return domain.BookingStatusApproved
	}
	return domain.BookingStatusRejected
}

// RoomGroup is the pending bookings of one room.
type RoomGroup struct {
	RoomID   string
	RoomName string
	Bookings []domain.Booking
}

// ApprovalQueue holds the pending bookings of one event for a lecturer or admin to review.
type ApprovalQueue struct {
	o     *Orchestrator
	event domain.Event

	mu      sync.Mutex
	pending []domain.Booking
}

// BookingDecision is a prepared approve/reject awaiting the reviewer's confirmation.
// Nothing is sent until it is committed.
type BookingDecision struct {
	Booking  domain.Booking
	Decision Decision
	Note     string

	queue *ApprovalQueue
	done  bool
}

// OpenApprovals loads every pending booking of event.
func (o *Orchestrator) OpenApprovals(ctx context.Context, event domain.Event) (*ApprovalQueue, error) {
	if !o.viewer.Role.CanReviewBookings() {
		return nil, domain.ErrAccessDenied
	}

	pendingStatus := domain.BookingStatusPending
	var pending []domain.Booking
	for page := 1; ; page++ {
		raw, err := o.bookings.ListBookings(ctx, domain.BookingFilter{
			EventID:    event.ID,
			Status:     &pendingStatus,
			Pagination: domain.PaginationParams{Page: page, PageSize: approvalPageSize},
		})
		if err != nil {
			return nil, fmt.Errorf("list pending bookings: %w", err)
		}
		for _, b := range normalize.NormalizeBookings(raw.Items) {
			// The backend has been seen to ignore the status filter.
			if b.Status != domain.BookingStatusPending {
				continue
			}
			if b.EventID != "" && !strings.EqualFold(b.EventID, event.ID) {
				continue
			}
			pending = append(pending, b)
		}
		if len(raw.Items) < approvalPageSize || page >= maxTrackerPages {
			break
		}
		if raw.TotalCount != nil && page*approvalPageSize >= *raw.TotalCount {
			break
		}
	}
	return &ApprovalQueue{o: o, event: event, pending: pending}, nil
}

// Event returns the event under review.
func (q *ApprovalQueue) Event() domain.Event { return q.event }

// Pending returns the bookings still awaiting a decision.
func (q *ApprovalQueue) Pending() []domain.Booking {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.Booking(nil), q.pending...)
}

// Groups returns the pending bookings grouped by room, rooms in order of first appearance.
func (q *ApprovalQueue) Groups() []RoomGroup {
	q.mu.Lock()
	defer q.mu.Unlock()

	var groups []RoomGroup
	index := map[string]int{}
	for _, b := range q.pending {
		key := strings.ToLower(b.RoomID)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, RoomGroup{RoomID: b.RoomID, RoomName: q.roomName(b)})
		}
		groups[i].Bookings = append(groups[i].Bookings, b)
	}
	return groups
}

func (q *ApprovalQueue) roomName(b domain.Booking) string {
	if b.RoomName != "" {
		return b.RoomName
	}
	if room, ok := findRoom(q.event.RoomSlots, b.RoomID); ok {
		return room.RoomName
	}
	return b.RoomID
}

// RoomCount returns the number of distinct rooms among pending bookings.
func (q *ApprovalQueue) RoomCount() int {
	return len(q.Groups())
}

// ShowRoomBanner reports whether the "N rooms" banner applies: only with more than one room.
func (q *ApprovalQueue) ShowRoomBanner() bool {
	return q.RoomCount() > 1
}

// Prepare stages a decision on a pending booking. The UI shows it for confirmation
// and then calls Commit or Discard.
func (q *ApprovalQueue) Prepare(bookingID string, decision Decision, note string) (*BookingDecision, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := q.indexLocked(bookingID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	return &BookingDecision{
		Booking:  q.pending[i],
		Decision: decision,
		Note:     strings.TrimSpace(note),
		queue:    q,
	}, nil
}

// Discard drops a prepared decision without side effects.
func (q *ApprovalQueue) Discard(d *BookingDecision) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if d.queue == q {
		d.done = true
	}
}

// Commit sends a confirmed decision. On success the booking leaves the pending list;
// on failure it stays and the error is returned.
func (q *ApprovalQueue) Commit(ctx context.Context, d *BookingDecision) error {
	q.mu.Lock()
	if d.queue != q || d.done {
		q.mu.Unlock()
		return domain.ErrInvalidState
	}
	if q.indexLocked(d.Booking.ID) < 0 {
		q.mu.Unlock()
		return domain.ErrNotFound
	}
	d.done = true
	q.mu.Unlock()

	var (
		removed domain.Booking
		at      = -1
	)
	req := domain.UpdateBookingStatusRequest{Status: d.Decision.status(), Note: d.Note}
	err := WithOptimisticUpdate(ctx,
		func() { removed, at = q.remove(d.Booking.ID) },
		func() { q.insert(at, removed) },
		func(ctx context.Context) error {
			return q.o.bookings.UpdateBookingStatus(ctx, d.Booking.ID, req)
		},
	)
	if err != nil {
		q.mu.Lock()
		d.done = false
		q.mu.Unlock()
		q.o.logger.Warn("booking decision failed", "booking_id", d.Booking.ID, "status", req.Status.String(), "error", err)
		return err
	}
	q.o.logger.Info("booking decided", "booking_id", d.Booking.ID, "event_id", q.event.ID, "status", req.Status.String())
	return nil
}

func (q *ApprovalQueue) indexLocked(bookingID string) int {
	for i, b := range q.pending {
		if strings.EqualFold(b.ID, bookingID) {
			return i
		}
	}
	return -1
}

func (q *ApprovalQueue) remove(bookingID string) (domain.Booking, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := q.indexLocked(bookingID)
	if i < 0 {
		return domain.Booking{}, -1
	}
	b := q.pending[i]
	q.pending = append(q.pending[:i:i], q.pending[i+1:]...)
	return b, i
}

func (q *ApprovalQueue) insert(i int, b domain.Booking) {
	if i < 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if i > len(q.pending) {
		i = len(q.pending)
	}
	q.pending = append(q.pending[:i:i], append([]domain.Booking{b}, q.pending[i:]...)...)
}
