package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestIDHeader is read from outbound requests to correlate log lines.
const RequestIDHeader = "X-Request-ID"

// Transport logs every outbound request at debug level, and failures at warn.
// A contextual logger from the request context is preferred over base.
func Transport(base *slog.Logger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{base: base, next: next}
}

type loggingTransport struct {
	base *slog.Logger
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := FromContextOr(req.Context(), t.base).With(
		"req_id", req.Header.Get(RequestIDHeader),
		"method", req.Method,
		"path", req.URL.Path,
	)

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		logger.Warn("api_request_failed", "duration_ms", duration, "error", err)
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	logger.Log(req.Context(), level, "api_request",
		"status", resp.StatusCode,
		"duration_ms", duration,
	)

	return resp, nil
}
