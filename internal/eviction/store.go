// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package eviction

import (
	"net/http"
	"time"

	"github.com/agentedge/gateway/internal/gwtypes"
)

// Alpha is the EWMA smoothing factor applied to every health sample.
const Alpha = 0.25

// Policy is the resolved, ready-to-evaluate form of an EvictionPolicy:
// its CEL expression (or the default predicate) already compiled.
type Policy struct {
	Unhealthy        UnhealthyPredicate
	EvictionDuration time.Duration
	HealthThreshold  float64
	HealthOnUnevict  float64
}

// Resolve compiles an EvictionPolicy's CEL expression (if any) into a
// ready Policy. An empty UnhealthyExpression uses DefaultPredicate.
func Resolve(p gwtypes.EvictionPolicy) (*Policy, error) {
	pred := DefaultPredicate
	if p.UnhealthyExpression != "" {
		compiled, err := CompileUnhealthyExpression(p.UnhealthyExpression)
		if err != nil {
			return nil, err
		}
		pred = compiled
	}
	return &Policy{
		Unhealthy:        pred,
		EvictionDuration: p.EvictionDuration,
		HealthThreshold:  p.HealthThreshold,
		HealthOnUnevict:  p.HealthOnUnevict,
	}, nil
}

// Observe records the outcome of one upstream call against an endpoint:
// it updates the health EWMA and, if the outcome is unhealthy and the
// endpoint's health has crossed the configured threshold, schedules an
// eviction deadline.
//
// The deadline is chosen from, in priority order: a Retry-After-derived
// duration (only present for 429s), the policy's configured
// EvictionDuration, falling back to the configured default if zero.
func Observe(ep *gwtypes.Endpoint, policy *Policy, status int, transportErr bool, headers http.Header, now time.Time) {
	outcome := ResponseOutcome{Status: status, TransportError: transportErr}
	healthy := !policy.Unhealthy.Unhealthy(outcome)

	var deadline time.Time
	if !healthy {
		duration := policy.EvictionDuration
		if retryAfter, ok := RetryAfter(status, headers, now); ok {
			duration = retryAfter
		}
		if duration <= 0 {
			duration = 30 * time.Second
		}
		// Only actually schedule eviction once health has crossed the
		// configured threshold; a policy with no threshold evicts on the
		// very first unhealthy sample, matching a nil HealthThreshold
		// meaning "driven only by the per-response signal".
		if policy.HealthThreshold <= 0 || ep.Health() < policy.HealthThreshold {
			deadline = now.Add(duration)
		}
	}

	ep.UpdateHealth(healthy, Alpha, now, deadline)

	if healthy && !ep.EvictionDeadline().IsZero() && !now.Before(ep.EvictionDeadline()) {
		healthOnUnevict := policy.HealthOnUnevict
		if healthOnUnevict <= 0 {
			healthOnUnevict = 1.0
		}
		ep.Unevict(healthOnUnevict)
	}
}

// SelectAmongEndpoints fails open: if every endpoint in the slice is
// currently evicted, the endpoint with the earliest eviction deadline is
// still returned rather than refusing to route at all.
func SelectAmongEndpoints(endpoints []*gwtypes.Endpoint, now time.Time) *gwtypes.Endpoint {
	var healthy []*gwtypes.Endpoint
	for _, ep := range endpoints {
		if !ep.Evicted(now) {
			healthy = append(healthy, ep)
		}
	}
	if len(healthy) > 0 {
		return healthy[earliestHealth(healthy)]
	}
	if len(endpoints) == 0 {
		return nil
	}
	earliest := endpoints[0]
	for _, ep := range endpoints[1:] {
		if ep.EvictionDeadline().Before(earliest.EvictionDeadline()) {
			earliest = ep
		}
	}
	return earliest
}

func earliestHealth(endpoints []*gwtypes.Endpoint) int {
	best := 0
	for i := 1; i < len(endpoints); i++ {
		if endpoints[i].Health() > endpoints[best].Health() {
			best = i
		}
	}
	return best
}
