package domain

import (
	"context"
	"strings"
	"time"
)

// BookingStatus is the status of a single registration. Values match the backend status codes.
type BookingStatus int

const (
	BookingStatusPending BookingStatus = iota
	BookingStatusApproved
	BookingStatusRejected
	BookingStatusCancelled
	BookingStatusCompleted
)

var bookingStatusNames = [...]string{"Pending", "Approved", "Rejected", "Cancelled", "Completed"}

func (s BookingStatus) String() string {
	if s >= BookingStatusPending && s <= BookingStatusCompleted {
		return bookingStatusNames[s]
	}
	return "Unknown"
}

// IsActive reports whether the booking still holds a seat (not rejected or cancelled).
func (s BookingStatus) IsActive() bool {
	return s != BookingStatusRejected && s != BookingStatusCancelled
}

// ParseBookingStatus parses a status name case-insensitively.
func ParseBookingStatus(name string) (BookingStatus, bool) {
	name = strings.TrimSpace(name)
	for i, n := range bookingStatusNames {
		if strings.EqualFold(n, name) {
			return BookingStatus(i), true
		}
	}
	if strings.EqualFold(name, "Canceled") {
		return BookingStatusCancelled, true
	}
	return BookingStatusPending, false
}

// Booking is one user's registration against a room of an event.
type Booking struct {
	ID        string        `json:"id"`
	EventID   string        `json:"eventId"`
	RoomID    string        `json:"roomId"`
	RoomName  string        `json:"roomName,omitempty"`
	UserID    string        `json:"userId"`
	UserName  string        `json:"userName,omitempty"`
	Status    BookingStatus `json:"status"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Note      string        `json:"note,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// BookingFilter selects bookings for GET /bookings.
type BookingFilter struct {
	EventID    string
	UserID     string
	Status     *BookingStatus
	Pagination PaginationParams
}

// CreateBookingRequest is the body of POST /bookings.
type CreateBookingRequest struct {
	EventID   string    `json:"eventId" validate:"required"`
	RoomID    string    `json:"roomId" validate:"required"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
}

// NewCreateBookingRequest builds a booking request bound to roomID that mirrors the event's schedule.
func NewCreateBookingRequest(event *Event, roomID string) CreateBookingRequest {
	return CreateBookingRequest{
		EventID:   event.ID,
		RoomID:    roomID,
		StartTime: event.StartDate,
		EndTime:   event.EndDate,
	}
}

// UpdateBookingStatusRequest is the body of PATCH /bookings/{id}/status.
type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" validate:"oneof=1 2"`
	Note   string        `json:"note,omitempty" validate:"max=500"`
}

// BookingAPI is the backend's booking surface.
type BookingAPI interface {
	ListBookings(ctx context.Context, f BookingFilter) (RawPage, error)
	CreateBooking(ctx context.Context, req CreateBookingRequest) (map[string]any, error)
	UpdateBookingStatus(ctx context.Context, id string, req UpdateBookingStatusRequest) error
}
