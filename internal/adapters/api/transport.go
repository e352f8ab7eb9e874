package api

import (
	"log/slog"
	"net/http"
	"time"
)

// LoggingTransport logs each backend call with method, path, status, and duration.
// It does not log request or response bodies.
type LoggingTransport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// NewLoggingTransport wraps base (http.DefaultTransport when nil).
func NewLoggingTransport(base http.RoundTripper, logger *slog.Logger) *LoggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingTransport{Base: base, Logger: logger}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Base.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		t.Logger.Warn("request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"request_id", req.Header.Get(headerRequestID),
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, err
	}
	t.Logger.Info("request",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(headerRequestID),
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	)
	return resp, nil
}
