package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"labbooking/internal/domain"
	"labbooking/internal/normalize"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(n int) *int { return &n }

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// testEvent returns an Active single-room event with a valid schedule.
func testEvent(id string) domain.Event {
	return domain.Event{
		ID:         id,
		Title:      "Event " + id,
		Location:   "Lab A",
		StartDate:  baseTime,
		EndDate:    baseTime.Add(2 * time.Hour),
		Status:     domain.EventStatusActive,
		Visibility: true,
		RoomSlots:  []domain.RoomSlot{{RoomID: "R1", RoomName: "Lab A"}},
	}
}

func rawEvents(events ...domain.Event) []map[string]any {
	out := make([]map[string]any, 0, len(events))
	for _, e := range events {
		out = append(out, normalize.EventToRaw(e))
	}
	return out
}

func rawBooking(id, eventID, roomID, userID, status string) map[string]any {
	return map[string]any{
		"id":      id,
		"eventId": eventID,
		"roomId":  roomID,
		"userId":  userID,
		"status":  status,
	}
}

// fakeEventAPI is an in-memory EventAPI for tests.
type fakeEventAPI struct {
	mu sync.Mutex

	// list serves ListEvents when set; otherwise page is returned.
	list   func(ctx context.Context, q domain.EventQuery) (domain.RawPage, error)
	page   domain.RawPage
	detail map[string]map[string]any
	mine   []map[string]any

	getErr     error
	mineErr    error
	approveErr error
	rejectErr  error
	deleteErr  error

	queries      []domain.EventQuery
	getCalls     int
	mineCalls    int
	approveCalls int
	rejectCalls  int
	deleteCalls  int
	lastReason   string
}

func newFakeEventAPI() *fakeEventAPI {
	return &fakeEventAPI{detail: make(map[string]map[string]any)}
}

func (f *fakeEventAPI) ListEvents(ctx context.Context, q domain.EventQuery) (domain.RawPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	list, page := f.list, f.page
	f.mu.Unlock()
	if list != nil {
		return list(ctx, q)
	}
	return page, nil
}

func (f *fakeEventAPI) GetEvent(ctx context.Context, id string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	raw, ok := f.detail[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return raw, nil
}

func (f *fakeEventAPI) ListMyEvents(ctx context.Context) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mineCalls++
	if f.mineErr != nil {
		return nil, f.mineErr
	}
	return f.mine, nil
}

func (f *fakeEventAPI) ApproveEvent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approveCalls++
	return f.approveErr
}

func (f *fakeEventAPI) RejectEvent(ctx context.Context, id, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectCalls++
	f.lastReason = reason
	return f.rejectErr
}

func (f *fakeEventAPI) DeleteEvent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return f.deleteErr
}

type statusUpdate struct {
	id  string
	req domain.UpdateBookingStatusRequest
}

// fakeBookingAPI is an in-memory BookingAPI. Like the real backend it does not
// honour the status filter.
type fakeBookingAPI struct {
	mu sync.Mutex

	// list serves ListBookings when set; otherwise bookings are filtered and paged.
	list     func(ctx context.Context, f domain.BookingFilter) (domain.RawPage, error)
	bookings []map[string]any

	listErr   error
	createErr error
	updateErr error

	// onCreate runs inside CreateBooking before it answers, without the fake's lock held.
	onCreate func()

	listCalls int
	created   []domain.CreateBookingRequest
	updates   []statusUpdate
}

func (f *fakeBookingAPI) ListBookings(ctx context.Context, filter domain.BookingFilter) (domain.RawPage, error) {
	f.mu.Lock()
	f.listCalls++
	list, err := f.list, f.listErr
	var matched []map[string]any
	for _, b := range f.bookings {
		if filter.EventID != "" && !strings.EqualFold(b["eventId"].(string), filter.EventID) {
			continue
		}
		if filter.UserID != "" && b["userId"] != filter.UserID {
			continue
		}
		matched = append(matched, b)
	}
	f.mu.Unlock()

	if list != nil {
		return list(ctx, filter)
	}
	if err != nil {
		return domain.RawPage{}, err
	}
	p := filter.Pagination.Normalize(10)
	start := p.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + p.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return domain.RawPage{Items: matched[start:end], TotalCount: intPtr(len(matched))}, nil
}

func (f *fakeBookingAPI) CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (map[string]any, error) {
	f.mu.Lock()
	f.created = append(f.created, req)
	hook, err := f.onCreate, f.createErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return rawBooking("B-new", req.EventID, req.RoomID, "u-1", "Pending"), nil
}

func (f *fakeBookingAPI) UpdateBookingStatus(ctx context.Context, id string, req domain.UpdateBookingStatusRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, statusUpdate{id: id, req: req})
	return f.updateErr
}

type fixture struct {
	events   *fakeEventAPI
	bookings *fakeBookingAPI
	tracker  *Tracker
	list     *EventList
	orch     *Orchestrator
}

func newFixture(role domain.Role) *fixture {
	events := newFakeEventAPI()
	bookings := &fakeBookingAPI{}
	logger := discardLogger()
	tracker := NewTracker(bookings, logger)
	viewer := domain.Viewer{UserID: "u-1", Name: "Test User", Role: role}
	list := NewEventList(events, tracker, viewer, 10, logger)
	return &fixture{
		events:   events,
		bookings: bookings,
		tracker:  tracker,
		list:     list,
		orch:     NewOrchestrator(events, bookings, list, tracker, logger),
	}
}

// show loads events as the first page of the list, with details available for each.
func (fx *fixture) show(ctx context.Context, events ...domain.Event) error {
	fx.events.page = domain.RawPage{Items: rawEvents(events...), TotalCount: intPtr(len(events))}
	fx.events.mine = rawEvents(events...)
	for _, e := range events {
		fx.events.detail[e.ID] = normalize.EventToRaw(e)
	}
	_, err := fx.list.Load(ctx, domain.EventFilter{}, domain.PaginationParams{Page: 1})
	return err
}
