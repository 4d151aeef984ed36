// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package eviction implements backend outlier detection: deciding whether
// a response was unhealthy, and for how long to evict the endpoint that
// produced it.
package eviction

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// rateLimitResetHeaders lists the vendor headers checked, in order, for
// the smallest advertised reset duration: OpenAI's request/token reset
// pair and Cerebras's day/minute-scoped pair.
var rateLimitResetHeaders = []string{
	"X-Ratelimit-Reset-Requests",
	"X-Ratelimit-Reset-Tokens",
	"X-Ratelimit-Reset-Requests-Day",
	"X-Ratelimit-Reset-Tokens-Minute",
}

// RetryAfter returns the duration to honor from a response's rate-limit
// headers, only for HTTP 429; Retry-After-style headers are only
// consulted on a too-many-requests response.
func RetryAfter(status int, h http.Header, now time.Time) (time.Duration, bool) {
	if status != http.StatusTooManyRequests {
		return 0, false
	}
	return processRateLimitHeaders(h, now)
}

func processRateLimitHeaders(h http.Header, now time.Time) (time.Duration, bool) {
	// Retry-After: seconds or an HTTP date. The only standardized header
	// here; known to be used by Anthropic.
	if v := h.Get("Retry-After"); v != "" {
		if seconds, err := strconv.ParseUint(v, 10, 64); err == nil {
			return time.Duration(seconds) * time.Second, true
		}
		if t, err := http.ParseTime(v); err == nil {
			if d := t.Sub(now); d >= 0 {
				return d, true
			}
		}
	}

	// X-Ratelimit-Reset: usually absolute seconds, rarely a unix epoch
	// timestamp. Known to be used by GitHub.
	if v := h.Get("X-Ratelimit-Reset"); v != "" {
		if resetVal, err := strconv.ParseUint(v, 10, 64); err == nil {
			if resetVal < uint64(30*day/time.Second) {
				return time.Duration(resetVal) * time.Second, true
			}
			epoch := time.Unix(int64(resetVal), 0)
			if d := epoch.Sub(now); d >= 0 {
				return d, true
			}
			// Past epoch timestamp: fall through to the per-vendor
			// headers below rather than returning, since this isn't
			// treated as a hard miss.
		}
	}

	var smallest time.Duration
	found := false
	for _, name := range rateLimitResetHeaders {
		v := h.Get(name)
		if v == "" {
			continue
		}
		d, ok := parseDurationLoose(v)
		if !ok {
			continue
		}
		if !found || d < smallest {
			smallest = d
			found = true
		}
	}
	return smallest, found
}

// parseDurationLoose tries a Go-style duration string first ("5m",
// "2m30s", "11.1s"), and if that fails but the value ends in a digit,
// retries with an implicit trailing "s". Leading '-' is rejected
// outright; these headers never carry a meaningful negative duration.
func parseDurationLoose(v string) (time.Duration, bool) {
	if v == "" || strings.HasPrefix(v, "-") {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	last := v[len(v)-1]
	if last >= '0' && last <= '9' {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			return d, true
		}
	}
	return 0, false
}
