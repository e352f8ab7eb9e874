package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"labbooking/internal/domain"
)

// ListBookings calls GET /bookings with the given filter.
func (c *Client) ListBookings(ctx context.Context, f domain.BookingFilter) (domain.RawPage, error) {
	v := url.Values{}
	if f.EventID != "" {
		v.Set("eventId", f.EventID)
	}
	if f.UserID != "" {
		v.Set("userId", f.UserID)
	}
	if f.Status != nil {
		v.Set("status", strconv.Itoa(int(*f.Status)))
	}
	if f.Pagination.Page > 0 {
		v.Set("page", strconv.Itoa(f.Pagination.Page))
	}
	if f.Pagination.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(f.Pagination.PageSize))
	}

	var doc any
	if err := c.do(ctx, http.MethodGet, "/bookings", v, nil, &doc); err != nil {
		return domain.RawPage{}, err
	}
	return decodeList(doc), nil
}

// CreateBooking calls POST /bookings and returns the created record.
func (c *Client) CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (map[string]any, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	var doc any
	if err := c.do(ctx, http.MethodPost, "/bookings", nil, req, &doc); err != nil {
		return nil, err
	}
	return decodeRecord(doc), nil
}

// UpdateBookingStatus calls PATCH /bookings/{id}/status to approve or reject a booking.
func (c *Client) UpdateBookingStatus(ctx context.Context, id string, req domain.UpdateBookingStatusRequest) error {
	if err := c.check(req); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, pathID("/bookings", id, "status"), nil, req, nil)
}
