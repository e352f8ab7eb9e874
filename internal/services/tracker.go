package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"labbooking/internal/domain"
	"labbooking/internal/normalize"
)

// trackerPageSize is the page size used to walk all of a user's bookings.
const trackerPageSize = 100

// maxTrackerPages bounds the walk in case the backend ignores paging parameters.
const maxTrackerPages = 50

// Tracker holds the set of event IDs the signed-in student has registered for.
// IDs are compared lowercased; the backend returns them with inconsistent casing.
//
// Every Refresh and MarkRegistered takes a version from one counter. A refresh only
// applies if no newer refresh started meanwhile, and marks newer than the refresh
// survive its snapshot.
type Tracker struct {
	bookings domain.BookingAPI
	logger   *slog.Logger

	mu            sync.RWMutex
	version       uint64
	latestRefresh uint64
	registered    map[string]struct{}
	marks         map[string]uint64
}

// NewTracker returns an empty Tracker that refreshes from bookings.
func NewTracker(bookings domain.BookingAPI, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		bookings:   bookings,
		logger:     logger,
		registered: make(map[string]struct{}),
		marks:      make(map[string]uint64),
	}
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Refresh rebuilds the set from all of userID's bookings that reference an event.
// It returns domain.ErrSuperseded when a newer Refresh started before this one finished.
func (t *Tracker) Refresh(ctx context.Context, userID string) error {
	t.mu.Lock()
	t.version++
	v := t.version
	t.latestRefresh = v
	t.mu.Unlock()

	ids, err := t.fetchEventIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("refresh registrations: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latestRefresh != v {
		t.logger.Debug("discarding superseded registration refresh", "version", v, "latest", t.latestRefresh)
		return domain.ErrSuperseded
	}
	next := make(map[string]struct{}, len(ids)+len(t.marks))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	for id, markedAt := range t.marks {
		if markedAt > v {
			next[id] = struct{}{}
		} else {
			// The snapshot already reflects this mark, one way or the other.
			delete(t.marks, id)
		}
	}
	t.registered = next
	return nil
}

func (t *Tracker) fetchEventIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	for page := 1; page <= maxTrackerPages; page++ {
		raw, err := t.bookings.ListBookings(ctx, domain.BookingFilter{
			UserID:     userID,
			Pagination: domain.PaginationParams{Page: page, PageSize: trackerPageSize},
		})
		if err != nil {
			return nil, err
		}
		for _, b := range normalize.NormalizeBookings(raw.Items) {
			if id := normalizeID(b.EventID); id != "" {
				ids = append(ids, id)
			}
		}
		if len(raw.Items) < trackerPageSize {
			break
		}
		if raw.TotalCount != nil && page*trackerPageSize >= *raw.TotalCount {
			break
		}
	}
	return ids, nil
}

// MarkRegistered records a registration optimistically, before any re-fetch.
func (t *Tracker) MarkRegistered(eventID string) {
	id := normalizeID(eventID)
	if id == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.version++
	t.marks[id] = t.version
	t.registered[id] = struct{}{}
}

// Forget removes eventID, undoing an optimistic mark whose submission failed.
func (t *Tracker) Forget(eventID string) {
	id := normalizeID(eventID)
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.marks, id)
	delete(t.registered, id)
}

// IsRegistered reports whether the user holds a registration for eventID.
func (t *Tracker) IsRegistered(eventID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.registered[normalizeID(eventID)]
	return ok
}

// Count returns the number of registered events.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.registered)
}
