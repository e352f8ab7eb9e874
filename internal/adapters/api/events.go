package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"labbooking/internal/domain"
)

// RejectEventRequest is the body of POST /events/{id}/reject.
type RejectEventRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// ListEvents calls GET /events with the filter and paging parameters.
func (c *Client) ListEvents(ctx context.Context, q domain.EventQuery) (domain.RawPage, error) {
	var doc any
	if err := c.do(ctx, http.MethodGet, "/events", eventQueryValues(q), nil, &doc); err != nil {
		return domain.RawPage{}, err
	}
	return decodeList(doc), nil
}

// GetEvent calls GET /events/{id}; the detail record carries the authoritative room slots.
func (c *Client) GetEvent(ctx context.Context, id string) (map[string]any, error) {
	var doc any
	if err := c.do(ctx, http.MethodGet, pathID("/events", id), nil, nil, &doc); err != nil {
		return nil, err
	}
	return decodeRecord(doc), nil
}

// ListMyEvents calls GET /events/mine and returns every event the caller created.
func (c *Client) ListMyEvents(ctx context.Context) ([]map[string]any, error) {
	var doc any
	if err := c.do(ctx, http.MethodGet, "/events/mine", nil, nil, &doc); err != nil {
		return nil, err
	}
	return decodeList(doc).Items, nil
}

// ApproveEvent moves a pending event to Active.
func (c *Client) ApproveEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, pathID("/events", id, "approve"), nil, nil, nil)
}

// RejectEvent moves a pending event to Rejected. The reason is mandatory.
func (c *Client) RejectEvent(ctx context.Context, id, reason string) error {
	body := RejectEventRequest{Reason: strings.TrimSpace(reason)}
	if err := c.check(body); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, pathID("/events", id, "reject"), nil, body, nil)
}

// DeleteEvent calls DELETE /events/{id}.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, pathID("/events", id), nil, nil, nil)
}

func eventQueryValues(q domain.EventQuery) url.Values {
	v := url.Values{}
	f := q.Filter
	if s := strings.TrimSpace(f.Title); s != "" {
		v.Set("title", s)
	}
	if s := strings.TrimSpace(f.Location); s != "" {
		v.Set("location", s)
	}
	if f.Status != nil {
		v.Set("status", strconv.Itoa(int(*f.Status)))
	}
	if f.From != nil {
		v.Set("startDate", f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		v.Set("endDate", f.To.UTC().Format(time.RFC3339))
	}
	if q.Pagination.Page > 0 {
		v.Set("page", strconv.Itoa(q.Pagination.Page))
	}
	if q.Pagination.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.Pagination.PageSize))
	}
	return v
}
