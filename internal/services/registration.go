package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"labbooking/internal/domain"
	"labbooking/internal/normalize"
)

// RegistrationState is the state of one registration attempt.
// Loading the event detail happens inside BeginRegistration, which only hands out
// attempts that reached ConfirmPending. A Failed attempt may be confirmed again or cancelled;
// Success is final.
type RegistrationState int

const (
	StateIdle RegistrationState = iota
	StateConfirmPending
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s RegistrationState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConfirmPending:
		return "ConfirmPending"
	case StateSubmitting:
		return "Submitting"
	case StateSuccess:
		return "Success"
	case StateFailed:
		return "Failed"
	}
	return "Unknown"
}

// Orchestrator drives student registration, booking review, and event-level approval
// against the backend, keeping the event list and tracker in step with each outcome.
type Orchestrator struct {
	events   domain.EventAPI
	bookings domain.BookingAPI
	list     *EventList
	tracker  *Tracker
	viewer   domain.Viewer
	logger   *slog.Logger
}

// NewOrchestrator wires the orchestrator to the list view it acts on and that view's tracker.
func NewOrchestrator(events domain.EventAPI, bookings domain.BookingAPI, list *EventList, tracker *Tracker, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		events:   events,
		bookings: bookings,
		list:     list,
		tracker:  tracker,
		viewer:   list.Viewer(),
		logger:   logger,
	}
}

// RegistrationAttempt is one pass through the confirm dialog for one event.
type RegistrationAttempt struct {
	mu      sync.Mutex
	state   RegistrationState
	event   domain.Event
	target  RegistrationTarget
	roomID  string
	booking *domain.Booking
	lastErr error
}

// State returns the current state.
func (a *RegistrationAttempt) State() RegistrationState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Event returns the event detail the attempt was resolved against.
func (a *RegistrationAttempt) Event() domain.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.event
}

// Rooms returns the rooms the user may choose from.
func (a *RegistrationAttempt) Rooms() []domain.RoomSlot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.RoomSlot(nil), a.target.Rooms...)
}

// RequiresSelection reports whether the user must pick a room.
func (a *RegistrationAttempt) RequiresSelection() bool {
	return a.target.RequiresSelection()
}

// SelectedRoom returns the chosen room ID, or "" if none is chosen yet.
func (a *RegistrationAttempt) SelectedRoom() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.roomID
}

// SelectRoom chooses the room the booking binds to. It must be one of Rooms().
func (a *RegistrationAttempt) SelectRoom(roomID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.awaitingConfirmLocked() {
		return domain.ErrInvalidState
	}
	room, ok := findRoom(a.target.Rooms, roomID)
	if !ok {
		return domain.ErrUnknownRoom
	}
	a.roomID = room.RoomID
	return nil
}

// Booking returns the booking created by a successful submission.
func (a *RegistrationAttempt) Booking() *domain.Booking {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.booking
}

// Err returns the error of the last failed submission.
func (a *RegistrationAttempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *RegistrationAttempt) awaitingConfirmLocked() bool {
	return a.state == StateConfirmPending || a.state == StateFailed
}

// checkOpen blocks registration for events that are not Active or already full.
func checkOpen(e domain.Event) error {
	if e.Status != domain.EventStatusActive {
		return &domain.NotActiveError{Status: e.Status}
	}
	if e.IsFull() {
		return domain.ErrCapacityExceeded
	}
	return nil
}

// BeginRegistration starts a registration for eventID. Guards that can be decided from local
// state fail before any network call; otherwise the event detail is fetched for its
// authoritative room slots and the attempt is returned in ConfirmPending.
func (o *Orchestrator) BeginRegistration(ctx context.Context, eventID string) (*RegistrationAttempt, error) {
	if o.viewer.Role != domain.RoleStudent {
		return nil, domain.ErrAccessDenied
	}
	if o.tracker.IsRegistered(eventID) {
		return nil, domain.ErrAlreadyRegistered
	}
	known, inList := o.list.Event(eventID)
	if inList {
		if err := checkOpen(known); err != nil {
			return nil, err
		}
	}

	raw, err := o.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event details: %w", err)
	}
	detail := normalize.NormalizeEvent(raw)
	if detail.ID == "" {
		detail.ID = eventID
	}
	// Counts only grow on this side; keep the larger one if the detail lags the list.
	if inList && known.BookingCount > detail.BookingCount {
		detail.BookingCount = known.BookingCount
	}
	o.list.Update(eventID, func(e *domain.Event) { e.RoomSlots = detail.RoomSlots })

	target := ResolveRegistrationTarget(detail)
	if !target.Allowed {
		return nil, target.Reason
	}
	if err := checkOpen(detail); err != nil {
		return nil, err
	}

	return &RegistrationAttempt{
		state:  StateConfirmPending,
		event:  detail,
		target: target,
		roomID: target.Selected,
	}, nil
}

// Confirm submits the booking for a ConfirmPending or Failed attempt. On success the tracker marks
// the event registered, its local booking count is one higher and the attempt is Success; on
// failure nothing changes and the attempt is Failed so the user can retry or cancel.
func (o *Orchestrator) Confirm(ctx context.Context, a *RegistrationAttempt) (*domain.Booking, error) {
	a.mu.Lock()
	if !a.awaitingConfirmLocked() {
		a.mu.Unlock()
		return nil, domain.ErrInvalidState
	}
	event := a.event
	if current, ok := o.list.Event(event.ID); ok && current.BookingCount > event.BookingCount {
		event.BookingCount = current.BookingCount
	}
	if err := o.confirmGuards(event, a.roomID); err != nil {
		a.mu.Unlock()
		return nil, err
	}
	req := domain.NewCreateBookingRequest(&event, a.roomID)
	a.state = StateSubmitting
	a.mu.Unlock()

	var (
		booking domain.Booking
		shown   uint64
	)
	increment := func(e *domain.Event) { e.BookingCount++ }
	decrement := func(e *domain.Event) { e.BookingCount-- }
	err := WithOptimisticUpdate(ctx,
		func() {
			shown = o.list.Version()
			o.list.Update(event.ID, increment)
		},
		// A load that landed meanwhile already shows the server's count.
		func() { o.list.UpdateIfVersion(shown, event.ID, decrement) },
		func(ctx context.Context) error {
			raw, err := o.bookings.CreateBooking(ctx, req)
			if err != nil {
				return err
			}
			booking = normalize.NormalizeBooking(raw)
			return nil
		},
	)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		o.logger.Warn("registration failed", "event_id", event.ID, "room_id", req.RoomID, "error", err)
		a.lastErr = err
		a.state = StateFailed
		return nil, err
	}

	o.tracker.MarkRegistered(event.ID)
	a.event.BookingCount = event.BookingCount + 1
	if booking.EventID == "" {
		booking.EventID = event.ID
	}
	if booking.RoomID == "" {
		booking.RoomID = req.RoomID
	}
	a.booking = &booking
	a.lastErr = nil
	o.logger.Info("registered for event", "event_id", event.ID, "room_id", req.RoomID, "booking_id", booking.ID)
	a.state = StateSuccess
	return &booking, nil
}

func (o *Orchestrator) confirmGuards(event domain.Event, roomID string) error {
	if err := checkOpen(event); err != nil {
		return err
	}
	if o.tracker.IsRegistered(event.ID) {
		return domain.ErrAlreadyRegistered
	}
	if roomID == "" {
		return domain.ErrRoomSelectionRequired
	}
	if !event.HasValidSchedule() {
		return fmt.Errorf("%w: event end must be after its start", domain.ErrInvalidInput)
	}
	return nil
}

// Cancel abandons an attempt awaiting confirmation without side effects. Submitting cannot be cancelled.
func (o *Orchestrator) Cancel(a *RegistrationAttempt) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.awaitingConfirmLocked() {
		return domain.ErrInvalidState
	}
	a.state = StateIdle
	return nil
}
