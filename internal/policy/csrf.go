// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package policy

import (
	"context"
	"net/http"

	"github.com/agentedge/gateway/internal/gwtypes"
)

// CSRFStep implements the gateway's CSRF defense, checked in this order:
// safe methods are always allowed, then Sec-Fetch-Site (when present)
// decides outright unless the origin is explicitly trusted, then Origin is
// compared against the request's own scheme+authority, falling back to the
// trusted-origins allowlist as a last resort.
type CSRFStep struct {
	additionalOrigins map[string]bool
}

func NewCSRFStep(p *gwtypes.CSRFPolicy) *CSRFStep {
	set := make(map[string]bool, len(p.AdditionalOrigins))
	for _, o := range p.AdditionalOrigins {
		set[o] = true
	}
	return &CSRFStep{additionalOrigins: set}
}

func (c *CSRFStep) Name() string { return "csrf" }

func (c *CSRFStep) Apply(_ context.Context, req *gwtypes.Request) (*Response, error) {
	if isSafeMethod(req.Method) {
		return nil, nil
	}

	if secFetchSite := req.Header.Get("Sec-Fetch-Site"); secFetchSite != "" {
		switch secFetchSite {
		case "same-origin", "none":
			return nil, nil
		default:
			if c.isExempt(req) {
				return nil, nil
			}
			return c.forbidden("Cross-origin request detected from Sec-Fetch-Site header"), nil
		}
	}

	origin := originHeader(req)
	if origin == "" {
		return nil, nil
	}

	if origin == targetOrigin(req) {
		return nil, nil
	}

	if c.isExempt(req) {
		return nil, nil
	}

	return c.forbidden("Cross-origin request detected"), nil
}

func (c *CSRFStep) isExempt(req *gwtypes.Request) bool {
	origin := originHeader(req)
	if origin == "" {
		return false
	}
	return c.additionalOrigins[origin]
}

func (c *CSRFStep) forbidden(message string) *Response {
	return &Response{DirectStatus: http.StatusForbidden, DirectBody: message}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// originHeader returns the Origin header value, treating the literal
// string "null" (sent for opaque/sandboxed origins) as absent.
func originHeader(req *gwtypes.Request) string {
	origin := req.Header.Get("Origin")
	if origin == "null" {
		return ""
	}
	return origin
}

func targetOrigin(req *gwtypes.Request) string {
	scheme := req.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + req.Authority
}
