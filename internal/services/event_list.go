package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"labbooking/internal/domain"
	"labbooking/internal/normalize"
)

// EventRow is one displayed event annotated for the current viewer.
type EventRow struct {
	Event      domain.Event
	Registered bool
	Deletable  bool
}

// EventList owns the events shown for one viewer and the registration tracker for that view.
// Loads follow "latest request wins": a load that finishes after a newer one was issued is discarded.
type EventList struct {
	api        domain.EventAPI
	tracker    *Tracker
	reconciler *Reconciler
	viewer     domain.Viewer
	pageSize   int
	logger     *slog.Logger

	mu          sync.RWMutex
	generation  uint64
	applied     uint64
	events      []domain.Event
	result      domain.PageResult
	lecturerAll []domain.Event
	lecturerOK  bool
}

// NewEventList creates the list view-model for viewer. pageSize is the default page size.
func NewEventList(api domain.EventAPI, tracker *Tracker, viewer domain.Viewer, pageSize int, logger *slog.Logger) *EventList {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventList{
		api:        api,
		tracker:    tracker,
		reconciler: NewReconciler(),
		viewer:     viewer,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// Viewer returns the user this list is shown to.
func (l *EventList) Viewer() domain.Viewer { return l.viewer }

// Tracker returns the registration tracker owned by this view.
func (l *EventList) Tracker() *Tracker { return l.tracker }

// Load fetches and displays one page. It returns domain.ErrSuperseded if a newer Load was issued
// before this one completed; the displayed state is then left to the newer load.
func (l *EventList) Load(ctx context.Context, filters domain.EventFilter, params domain.PaginationParams) (domain.PageResult, error) {
	params = params.Normalize(l.pageSize)

	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.mu.Unlock()

	page, err := l.fetch(ctx, filters, params)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		l.logger.Debug("discarding superseded event load", "generation", gen, "latest", l.generation)
		return domain.PageResult{}, domain.ErrSuperseded
	}
	if err != nil {
		return domain.PageResult{}, err
	}
	result := l.reconciler.ResolvePage(l.viewer.Role, filters, page)
	l.events = result.Records
	l.result = result
	l.applied++
	return l.snapshotLocked(), nil
}

func (l *EventList) fetch(ctx context.Context, filters domain.EventFilter, params domain.PaginationParams) (domain.ServerPage, error) {
	switch l.viewer.Role {
	case domain.RoleLecturer:
		all, err := l.lecturerEvents(ctx)
		if err != nil {
			return domain.ServerPage{}, err
		}
		return domain.ServerPage{Records: all, Page: params.Page, PageSize: params.PageSize}, nil

	case domain.RoleStudent:
		var page domain.ServerPage
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			page, err = l.fetchPage(gctx, EffectiveFilters(domain.RoleStudent, filters), params)
			return err
		})
		g.Go(func() error {
			err := l.tracker.Refresh(gctx, l.viewer.UserID)
			if err != nil && !errors.Is(err, domain.ErrSuperseded) && !errors.Is(err, context.Canceled) {
				// The list is still usable; the backend rejects duplicate registrations anyway.
				l.logger.Warn("registration refresh failed", "user_id", l.viewer.UserID, "error", err)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return domain.ServerPage{}, err
		}
		return page, nil

	default:
		return l.fetchPage(ctx, filters, params)
	}
}

func (l *EventList) fetchPage(ctx context.Context, filters domain.EventFilter, params domain.PaginationParams) (domain.ServerPage, error) {
	raw, err := l.api.ListEvents(ctx, domain.EventQuery{Filter: filters, Pagination: params})
	if err != nil {
		return domain.ServerPage{}, fmt.Errorf("list events: %w", err)
	}
	return domain.ServerPage{
		Records:    normalize.NormalizeEvents(raw.Items),
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: raw.TotalCount,
	}, nil
}

// lecturerEvents fetches the lecturer's own events once; later pages and filters are served from memory.
func (l *EventList) lecturerEvents(ctx context.Context) ([]domain.Event, error) {
	l.mu.RLock()
	if l.lecturerOK {
		all := l.lecturerAll
		l.mu.RUnlock()
		return all, nil
	}
	l.mu.RUnlock()

	raws, err := l.api.ListMyEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list my events: %w", err)
	}
	all := normalize.NormalizeEvents(raws)

	l.mu.Lock()
	l.lecturerAll, l.lecturerOK = all, true
	l.mu.Unlock()
	return all, nil
}

// Invalidate drops cached data so the next Load goes back to the server for everything.
func (l *EventList) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lecturerAll, l.lecturerOK = nil, false
	l.reconciler.Reset()
}

// Page returns the currently displayed page.
func (l *EventList) Page() domain.PageResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *EventList) snapshotLocked() domain.PageResult {
	r := l.result
	r.Records = append([]domain.Event(nil), l.events...)
	return r
}

// Rows returns the displayed events annotated with the viewer's registration status.
func (l *EventList) Rows() []EventRow {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rows := make([]EventRow, 0, len(l.events))
	for _, e := range l.events {
		rows = append(rows, EventRow{
			Event:      e,
			Registered: l.tracker.IsRegistered(e.ID),
			Deletable:  CanDeleteEvent(e) == nil,
		})
	}
	return rows
}

// Event returns the displayed event with the given ID.
func (l *EventList) Event(id string) (domain.Event, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := indexOf(l.events, id); i >= 0 {
		return l.events[i], true
	}
	return domain.Event{}, false
}

// Update applies fn to the displayed copy of event id (and the lecturer cache). It reports whether the event was found.
func (l *EventList) Update(id string, fn func(*domain.Event)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.updateLocked(id, fn)
}

func (l *EventList) updateLocked(id string, fn func(*domain.Event)) bool {
	found := false
	if i := indexOf(l.events, id); i >= 0 {
		fn(&l.events[i])
		found = true
	}
	if i := indexOf(l.lecturerAll, id); i >= 0 {
		fn(&l.lecturerAll[i])
		found = true
	}
	return found
}

// Version counts the loads applied to the displayed page. Local edits do not change it.
func (l *EventList) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.applied
}

// UpdateIfVersion is Update that does nothing once a load newer than version has been applied,
// so an undo never lands on data it did not change.
func (l *EventList) UpdateIfVersion(version uint64, id string, fn func(*domain.Event)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.applied != version {
		return false
	}
	return l.updateLocked(id, fn)
}

// Put replaces the displayed copy of e (matched by ID) with fresher data, e.g. a detail fetch.
func (l *EventList) Put(e domain.Event) {
	l.Update(e.ID, func(cur *domain.Event) { *cur = e })
}

// Remove takes event id off the displayed page and returns it with its index for Insert.
func (l *EventList) Remove(id string) (domain.Event, int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := indexOf(l.events, id)
	if i < 0 {
		return domain.Event{}, -1, false
	}
	e := l.events[i]
	l.events = append(l.events[:i:i], l.events[i+1:]...)
	if j := indexOf(l.lecturerAll, id); j >= 0 {
		l.lecturerAll = append(l.lecturerAll[:j:j], l.lecturerAll[j+1:]...)
	}
	if l.result.EffectiveTotalCount > 0 {
		l.result.EffectiveTotalCount--
		l.result.EffectiveTotalPages = domain.TotalPages(l.result.EffectiveTotalCount, l.result.PageSize)
	}
	return e, i, true
}

// Insert puts e back at index i, undoing Remove. Like UpdateIfVersion it is skipped once a newer
// load has been applied.
func (l *EventList) Insert(version uint64, i int, e domain.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.applied != version {
		return
	}
	if i < 0 || i > len(l.events) {
		i = len(l.events)
	}
	l.events = append(l.events[:i:i], append([]domain.Event{e}, l.events[i:]...)...)
	if l.lecturerOK && indexOf(l.lecturerAll, e.ID) < 0 {
		l.lecturerAll = append(l.lecturerAll, e)
	}
	l.result.EffectiveTotalCount++
	l.result.EffectiveTotalPages = domain.TotalPages(l.result.EffectiveTotalCount, l.result.PageSize)
}

func indexOf(events []domain.Event, id string) int {
	for i := range events {
		if strings.EqualFold(events[i].ID, id) {
			return i
		}
	}
	return -1
}
