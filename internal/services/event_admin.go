package services

import (
	"context"
	"fmt"
	"strings"

	"labbooking/internal/domain"
)

// CanDeleteEvent is the local delete guard: an event with registrations cannot be deleted
// until they are removed.
func CanDeleteEvent(e domain.Event) error {
	if e.BookingCount > 0 {
		return domain.ErrEventHasBookings
	}
	return nil
}

// ApproveEvent moves a Pending event to Active. Admin only.
func (o *Orchestrator) ApproveEvent(ctx context.Context, eventID string) error {
	err := o.decideEvent(ctx, eventID, domain.EventStatusActive, func(ctx context.Context) error {
		return o.events.ApproveEvent(ctx, eventID)
	})
	if err != nil {
		return fmt.Errorf("approve event: %w", err)
	}
	return nil
}

// RejectEvent moves a Pending event to Rejected with a required reason. Admin only.
func (o *Orchestrator) RejectEvent(ctx context.Context, eventID, reason string) error {
	if o.viewer.Role != domain.RoleAdmin {
		return domain.ErrAccessDenied
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: a rejection reason is required", domain.ErrInvalidInput)
	}
	err := o.decideEvent(ctx, eventID, domain.EventStatusRejected, func(ctx context.Context) error {
		return o.events.RejectEvent(ctx, eventID, reason)
	})
	if err != nil {
		return fmt.Errorf("reject event: %w", err)
	}
	return nil
}

func (o *Orchestrator) decideEvent(ctx context.Context, eventID string, to domain.EventStatus, remote func(context.Context) error) error {
	if o.viewer.Role != domain.RoleAdmin {
		return domain.ErrAccessDenied
	}
	known, ok := o.list.Event(eventID)
	if ok && known.Status != domain.EventStatusPending {
		return domain.ErrInvalidState
	}
	from := known.Status

	var shown uint64
	err := WithOptimisticUpdate(ctx,
		func() {
			shown = o.list.Version()
			o.list.Update(eventID, func(e *domain.Event) { e.Status = to })
		},
		func() { o.list.UpdateIfVersion(shown, eventID, func(e *domain.Event) { e.Status = from }) },
		remote,
	)
	if err != nil {
		o.logger.Warn("event decision failed", "event_id", eventID, "status", to.String(), "error", err)
		return err
	}
	o.logger.Info("event decided", "event_id", eventID, "status", to.String())
	return nil
}

// DeleteEvent removes an event. Students may not delete; events with registrations are refused
// locally before any request is made.
func (o *Orchestrator) DeleteEvent(ctx context.Context, eventID string) error {
	if o.viewer.Role == domain.RoleStudent {
		return domain.ErrAccessDenied
	}
	if known, ok := o.list.Event(eventID); ok {
		if err := CanDeleteEvent(known); err != nil {
			return err
		}
	}

	var (
		removed domain.Event
		at      = -1
		found   bool
		shown   uint64
	)
	err := WithOptimisticUpdate(ctx,
		func() {
			shown = o.list.Version()
			removed, at, found = o.list.Remove(eventID)
		},
		func() {
			if found {
				o.list.Insert(shown, at, removed)
			}
		},
		func(ctx context.Context) error { return o.events.DeleteEvent(ctx, eventID) },
	)
	if err != nil {
		o.logger.Warn("delete event failed", "event_id", eventID, "error", err)
		return fmt.Errorf("delete event: %w", err)
	}
	o.logger.Info("event deleted", "event_id", eventID)
	return nil
}
