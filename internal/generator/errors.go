package generator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNoQuestions is returned when a provider reply contains no usable questions.
var ErrNoQuestions = errors.New("generator returned no questions")

// RateLimitError indicates a provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0
	}
	return secs
}

// RegionRestrictedError indicates the provider refuses requests from the
// caller's country or region. Retrying another time will not help.
type RegionRestrictedError struct {
	Provider string
	Err      error
}

func (e *RegionRestrictedError) Error() string {
	return fmt.Sprintf("%s unavailable in this region: %v", e.Provider, e.Err)
}

func (e *RegionRestrictedError) Unwrap() error {
	return e.Err
}

var regionMarkers = []string{
	"unsupported_country_region_territory",
	"country, region, or territory not supported",
	"not available in your region",
	"not available in your country",
}

// IsRegionRestriction reports whether a provider error message signals a
// geographic restriction.
func IsRegionRestriction(msg string) bool {
	lower := strings.ToLower(msg)
	for _, m := range regionMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// StatusError classifies a non-2xx provider reply.
func StatusError(provider string, status int, body string, retryAfter string) error {
	base := fmt.Errorf("%s API error (status %d): %s", provider, status, truncate(body, 500))
	switch {
	case status == 429:
		return NewRateLimitError(provider, base, ParseRetryAfterHeader(retryAfter))
	case IsRegionRestriction(body):
		return &RegionRestrictedError{Provider: provider, Err: base}
	default:
		return base
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
