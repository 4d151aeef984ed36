// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package gwtypes holds the data model shared by the route matcher, policy
// engine, eviction store, and LLM translator: routes, backends, endpoints,
// and the normalized request/response records the pipeline passes around.
package gwtypes

import (
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Request is the gateway's normalized view of an inbound request. It is
// built once per request and passed by pointer through route matching,
// policy evaluation, and translation; nothing below the HTTP listener
// mutates it concurrently.
type Request struct {
	Method     string
	Scheme     string
	Authority  string
	Path       string
	RawQuery   string
	Header     http.Header
	Body       io.ReadCloser
	TLS        bool
	ProtoMajor int
	ProtoMinor int

	// Claims holds the JWT claims attached by the authN stage, nil if no
	// bearer token was presented or required.
	Claims map[string]any
}

// PathMatchKind is the Gateway-API-style path match discriminant.
type PathMatchKind int

const (
	PathMatchExact PathMatchKind = iota
	PathMatchPrefix
	PathMatchRegex
)

// PathMatch matches a request path by exact string, prefix segment, or a
// fully-anchored regular expression.
type PathMatch struct {
	Kind  PathMatchKind
	Value string
	// Regex is compiled once at route-table build time and anchored with
	// ^(?:...)$ so a partial match never counts as a hit.
	Regex *regexp.Regexp
}

// HeaderMatchKind mirrors Gateway API HTTPHeaderMatch types.
type HeaderMatchKind int

const (
	HeaderMatchExact HeaderMatchKind = iota
	HeaderMatchRegex
)

type HeaderMatch struct {
	Kind  HeaderMatchKind
	Name  string
	Value string
	Regex *regexp.Regexp
}

// QueryMatchKind mirrors Gateway API HTTPQueryParamMatch types.
type QueryMatchKind int

const (
	QueryMatchExact QueryMatchKind = iota
	QueryMatchRegex
)

type QueryMatch struct {
	Kind  QueryMatchKind
	Name  string
	Value string
	Regex *regexp.Regexp
}

// ServiceRef names a Kubernetes-style backend service; Waypoint default
// routes instead populate BackendRef.Address directly.
type ServiceRef struct {
	Namespace string
	Name      string
	Port      int
}

// BackendRef is one weighted backend target of a route rule.
type BackendRef struct {
	Weight  int
	Service *ServiceRef
	// Address is a bare host:port, used for HBONE/Waypoint default routes
	// synthesized without a Kubernetes Service behind them.
	Address string

	LLM *LLMBackend
}

// RouteRule is one HTTPRoute rule: predicates plus the backends it fans
// out to. Precedence among rules within and across routes is computed once
// at table-build time by internal/route, not per request.
type RouteRule struct {
	Namespace string
	Name      string
	RuleIndex int

	Hostnames    []string
	PathMatch    *PathMatch
	Methods      []string
	HeaderMatch  []HeaderMatch
	QueryMatch   []QueryMatch
	Backends     []BackendRef
	Policy       *RoutePolicy
	EvictionPolicy *EvictionPolicy
}

// RoutePolicy bundles the per-route policy configuration consumed by
// internal/policy: auth, CSRF, and header/path rewrites.
type RoutePolicy struct {
	JWT       *JWTPolicy
	BasicAuth *BasicAuthPolicy
	RBAC      *RBACPolicy
	CSRF      *CSRFPolicy
	Rewrite   *RewritePolicy
}

type JWTPolicy struct {
	Issuer    string
	JWKSURI   string
	Audiences []string
	Mode      AuthMode
}

type AuthMode int

const (
	AuthModeOptional AuthMode = iota
	AuthModeStrict
	AuthModePermissive
)

type BasicAuthPolicy struct {
	HtpasswdPath string
	Mode         AuthMode
}

type RBACPolicy struct {
	// Rules is evaluated in order; the first matching rule's Allow decides.
	Rules []RBACRule
}

type RBACRule struct {
	Allow      bool
	Principals []string
	Methods    []string
	Paths      []string
}

type CSRFPolicy struct {
	AdditionalOrigins []string
}

type RewritePolicy struct {
	PathPrefix   string
	HostRewrite  string
	SetHeaders   map[string]string
	RemoveHeaders []string
}

// EvictionPolicy configures outlier detection for the backends a rule
// routes to. A nil EvictionPolicy on a rule falls back to the gateway's
// default eviction configuration.
type EvictionPolicy struct {
	// UnhealthyExpression is a CEL expression over response/status/error;
	// empty means the default status>=500 || transport_error predicate.
	UnhealthyExpression string
	EvictionDuration     time.Duration
	HealthThreshold      float64
	HealthOnUnevict      float64
}

// DefaultEvictionPolicy returns the gateway's built-in outlier-detection
// defaults.
func DefaultEvictionPolicy() EvictionPolicy {
	return EvictionPolicy{
		EvictionDuration: 30 * time.Second,
		HealthThreshold:  0.5,
		HealthOnUnevict:  1.0,
	}
}

// Endpoint is one resolved backend instance with its live health state.
// Updates go through the mutex; there is no global lock across suspension
// points, so concurrent requests update distinct endpoints independently.
type Endpoint struct {
	ID      uuid.UUID
	Address string
	Port    int

	mu               sync.Mutex
	healthEWMA       float64
	evictionDeadline time.Time
	lastUpdate       time.Time
}

// NewEndpoint returns an endpoint with full initial health, seeding the
// EWMA at 1.0.
func NewEndpoint(address string, port int) *Endpoint {
	return &Endpoint{
		ID:         uuid.New(),
		Address:    address,
		Port:       port,
		healthEWMA: 1.0,
	}
}

// Health returns the current EWMA health score.
func (e *Endpoint) Health() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.healthEWMA
}

// Evicted reports whether the endpoint's eviction deadline is in the future
// relative to now.
func (e *Endpoint) Evicted(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Before(e.evictionDeadline)
}

// EvictionDeadline returns the current eviction deadline (zero value if not
// evicted).
func (e *Endpoint) EvictionDeadline() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evictionDeadline
}

// UpdateHealth applies the EWMA update and, if unhealthy crossed the
// eviction predicate, schedules a new eviction deadline. alpha and
// deadline are supplied by internal/eviction so this type stays free of
// policy logic.
func (e *Endpoint) UpdateHealth(healthy bool, alpha float64, now time.Time, deadline time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sample := 0.0
	if healthy {
		sample = 1.0
	}
	e.healthEWMA = alpha*sample + (1-alpha)*e.healthEWMA
	e.lastUpdate = now
	if !deadline.IsZero() {
		e.evictionDeadline = deadline
	}
}

// Unevict clears the eviction deadline and resets health, used when a
// Retry-After-driven deadline or the eviction duration elapses and the
// endpoint is given another chance.
func (e *Endpoint) Unevict(healthOnUnevict float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evictionDeadline = time.Time{}
	e.healthEWMA = healthOnUnevict
}

// Backend groups the endpoints resolved for one BackendRef, e.g. the pods
// behind a Kubernetes Service.
type Backend struct {
	Ref       BackendRef
	Endpoints []*Endpoint
}

// RouteTable is an immutable snapshot of pre-sorted, matchable rules. It is
// built once from the loaded configuration and never modified afterwards,
// so every request sees one consistent table.
type RouteTable struct {
	// ByHostname maps a hostname (or "*" wildcard bucket) to its rules,
	// already sorted by the table's precedence order at build time so
	// matching is a linear scan for the first hit.
	ByHostname map[string][]*RouteRule
	Wildcards  []string
}
