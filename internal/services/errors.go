package services

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/filisonic/easyhr/internal/shared"
)

// HTTPError wraps a non-2xx webhook response so retry logic can inspect it.
type HTTPError struct {
	Path       string
	StatusCode int
	Body       string
	RetryAfter time.Duration // from Retry-After header, zero if absent
}

func newHTTPError(resp *APIResponse) *HTTPError {
	return &HTTPError{
		Path:       resp.Path,
		StatusCode: resp.StatusCode,
		Body:       truncate(strings.TrimSpace(string(resp.Body)), 200),
		RetryAfter: parseRetryAfter(resp.Headers.Get("Retry-After"), time.Now()),
	}
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s returned HTTP %d: %s", e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s returned HTTP %d", e.Path, e.StatusCode)
}

// Unwrap lets callers match every webhook status failure with [shared.ErrWebhookFailed].
func (e *HTTPError) Unwrap() error {
	return shared.ErrWebhookFailed
}

// Temporary reports whether the status is worth retrying (429 or 5xx).
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// parseRetryAfter parses a Retry-After header given either as seconds or as an HTTP date.
// Returns zero if absent, unparseable or already in the past.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// truncate caps s at n bytes, backing off to a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
