// Package api is the REST client for the lab-management backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"labbooking/internal/domain"
)

const (
	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 4 << 20
)

// Client calls the booking and event endpoints with a bearer token.
// A 401 triggers exactly one token refresh and retry.
type Client struct {
	baseURL  string
	client   *http.Client
	tokens   domain.TokenSource
	timeout  time.Duration
	validate *validator.Validate
	logger   *slog.Logger
}

var (
	_ domain.EventAPI   = (*Client)(nil)
	_ domain.BookingAPI = (*Client)(nil)
)

// NewClient returns a Client for baseURL. A nil httpClient gets a logging transport;
// timeout bounds each attempt and surfaces as domain.ErrUnreachable.
func NewClient(baseURL string, httpClient *http.Client, tokens domain.TokenSource, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: NewLoggingTransport(nil, logger)}
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		client:   httpClient,
		tokens:   tokens,
		timeout:  timeout,
		validate: validator.New(),
		logger:   logger,
	}
}

// do sends one logical call. out may be nil; otherwise the 2xx body is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}
	requestID := uuid.NewString()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return &Error{Kind: domain.ErrAuthenticationRequired, Err: err}
	}

	status, data, err := c.send(ctx, method, path, query, payload, token, requestID)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		c.logger.Debug("access token rejected, refreshing", "method", method, "path", path)
		token, err = c.tokens.Refresh(ctx)
		if err != nil {
			return &Error{Kind: domain.ErrAuthenticationRequired, Status: status, Err: err}
		}
		status, data, err = c.send(ctx, method, path, query, payload, token, requestID)
		if err != nil {
			return err
		}
	}

	if status < 200 || status > 299 {
		return classify(method, status, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// send performs one HTTP attempt and reads the whole body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token, requestID string) (int, []byte, error) {
	attemptCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, u, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, c.transportError(ctx, err)
	}
	return resp.StatusCode, data, nil
}

// transportError classifies a failure without an HTTP status. Caller cancellation is
// passed through as is; everything else, including the per-attempt timeout, is Unreachable.
func (c *Client) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return &Error{Kind: domain.ErrUnreachable, Err: err}
}

func (c *Client) check(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// decodeList accepts a bare array or an envelope such as {data: [...], totalCount: n}.
func decodeList(doc any) domain.RawPage {
	switch v := doc.(type) {
	case []any:
		return domain.RawPage{Items: objects(v)}
	case map[string]any:
		page := domain.RawPage{}
		if total, ok := firstKey(v, "totalCount", "TotalCount", "total", "Total"); ok {
			if n, ok := total.(float64); ok {
				count := int(n)
				page.TotalCount = &count
			}
		}
		items, _ := firstKey(v, "data", "Data", "items", "Items")
		switch x := items.(type) {
		case []any:
			page.Items = objects(x)
		case map[string]any:
			// Paged payloads sometimes nest the list one level deeper.
			inner := decodeList(x)
			page.Items = inner.Items
			if page.TotalCount == nil {
				page.TotalCount = inner.TotalCount
			}
		}
		if page.Items == nil {
			page.Items = []map[string]any{}
		}
		return page
	}
	return domain.RawPage{Items: []map[string]any{}}
}

// decodeRecord unwraps {data: {...}} envelopes around a single record.
func decodeRecord(doc any) map[string]any {
	obj, ok := doc.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	if inner, ok := firstKey(obj, "data", "Data"); ok {
		if m, ok := inner.(map[string]any); ok {
			return m
		}
	}
	return obj
}

func objects(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func pathID(prefix, id string, suffix ...string) string {
	p := prefix + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}
