package domain

import (
	"context"
	"strings"
	"time"
)

// Defaults applied when a backend record omits a field.
const (
	DefaultEventTitle = "Untitled Event"
	UnknownLocation   = "N/A"
)

// EventStatus is the lifecycle status of an event. Values match the backend status codes.
type EventStatus int

const (
	EventStatusPending EventStatus = iota
	EventStatusActive
	EventStatusInactive
	EventStatusCancelled
	EventStatusCompleted
	EventStatusRejected
)

var eventStatusNames = [...]string{"Pending", "Active", "Inactive", "Cancelled", "Completed", "Rejected"}

func (s EventStatus) String() string {
	if s.Valid() {
		return eventStatusNames[s]
	}
	return "Unknown"
}

// Valid reports whether s is one of the known status codes.
func (s EventStatus) Valid() bool {
	return s >= EventStatusPending && s <= EventStatusRejected
}

// ParseEventStatus parses a status name case-insensitively ("active", "Active", "ACTIVE").
func ParseEventStatus(name string) (EventStatus, bool) {
	name = strings.TrimSpace(name)
	for i, n := range eventStatusNames {
		if strings.EqualFold(n, name) {
			return EventStatus(i), true
		}
	}
	// British/American spelling both appear in backend payloads.
	if strings.EqualFold(name, "Canceled") {
		return EventStatusCancelled, true
	}
	return EventStatusPending, false
}

// RoomSlot is an event's association with one room.
type RoomSlot struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
	Capacity *int   `json:"capacity,omitempty"`
}

// Event is the canonical event record shared by every component.
type Event struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Location     string      `json:"location"`
	RoomName     string      `json:"roomName,omitempty"`
	LabName      string      `json:"labName,omitempty"`
	StartDate    time.Time   `json:"startDate"`
	EndDate      time.Time   `json:"endDate"`
	Status       EventStatus `json:"status"`
	Visibility   bool        `json:"visibility"`
	Capacity     *int        `json:"capacity,omitempty"`
	BookingCount int         `json:"bookingCount"`
	RoomSlots    []RoomSlot  `json:"roomSlots"`
	CreatedBy    string      `json:"createdBy"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// IsFull reports whether the event has a capacity and it is already met.
func (e *Event) IsFull() bool {
	return e.Capacity != nil && e.BookingCount >= *e.Capacity
}

// HasValidSchedule reports whether EndDate is strictly after StartDate.
func (e *Event) HasValidSchedule() bool {
	return !e.StartDate.IsZero() && e.EndDate.After(e.StartDate)
}

// SortTime is the display-order key: CreatedAt, or StartDate when CreatedAt is absent.
func (e *Event) SortTime() time.Time {
	if !e.CreatedAt.IsZero() {
		return e.CreatedAt
	}
	return e.StartDate
}

// EventFilter holds the user-entered list criteria.
type EventFilter struct {
	Title    string
	Location string
	Status   *EventStatus
	From     *time.Time
	To       *time.Time
}

// IsActive reports whether any criterion is set.
func (f EventFilter) IsActive() bool {
	return strings.TrimSpace(f.Title) != "" ||
		strings.TrimSpace(f.Location) != "" ||
		f.Status != nil || f.From != nil || f.To != nil
}

// Key returns a stable identity for the filter combination, used to tell one filtered listing from another.
func (f EventFilter) Key() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(f.Title)))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(strings.TrimSpace(f.Location)))
	b.WriteByte('|')
	if f.Status != nil {
		b.WriteString(f.Status.String())
	}
	b.WriteByte('|')
	if f.From != nil {
		b.WriteString(f.From.UTC().Format(time.RFC3339))
	}
	b.WriteByte('|')
	if f.To != nil {
		b.WriteString(f.To.UTC().Format(time.RFC3339))
	}
	return b.String()
}

// Matches applies the filter to a single event in memory.
// Title and location match case-insensitive substrings; the date range matches events overlapping it.
func (f EventFilter) Matches(e Event) bool {
	if t := strings.TrimSpace(f.Title); t != "" && !containsFold(e.Title, t) {
		return false
	}
	if l := strings.TrimSpace(f.Location); l != "" && !containsFold(e.Location, l) {
		return false
	}
	if f.Status != nil && e.Status != *f.Status {
		return false
	}
	if f.From != nil && !e.EndDate.IsZero() && e.EndDate.Before(*f.From) {
		return false
	}
	if f.To != nil && !e.StartDate.IsZero() && e.StartDate.After(*f.To) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// EventQuery is a backend list query for GET /events.
type EventQuery struct {
	Filter     EventFilter
	Pagination PaginationParams
}

// RawPage is one list response before normalization.
// TotalCount is nil when the backend returned a bare array.
type RawPage struct {
	Items      []map[string]any
	TotalCount *int
}

// EventAPI is the backend's event surface.
type EventAPI interface {
	ListEvents(ctx context.Context, q EventQuery) (RawPage, error)
	GetEvent(ctx context.Context, id string) (map[string]any, error)
	ListMyEvents(ctx context.Context) ([]map[string]any, error)
	ApproveEvent(ctx context.Context, id string) error
	RejectEvent(ctx context.Context, id, reason string) error
	DeleteEvent(ctx context.Context, id string) error
}
