// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package selector picks one endpoint to serve a request: a
// weight-proportional random choice among a route's backends, then an
// EWMA-health-weighted random choice among that backend's endpoints, with
// the eviction package's fail-open fallback when every endpoint of the
// chosen backend is currently evicted.
package selector

import (
	"math/rand/v2"
	"time"

	"github.com/agentedge/gateway/internal/eviction"
	"github.com/agentedge/gateway/internal/gwtypes"
)

// Select chooses a backend by configured weight, then an endpoint within
// it weighted by live health, falling back to eviction's fail-open choice
// if every endpoint of the chosen backend is evicted.
func Select(backends []gwtypes.Backend, now time.Time) (*gwtypes.Backend, *gwtypes.Endpoint) {
	if len(backends) == 0 {
		return nil, nil
	}
	backend := selectBackend(backends)
	if backend == nil || len(backend.Endpoints) == 0 {
		return backend, nil
	}
	endpoint := selectHealthyEndpoint(backend.Endpoints, now)
	if endpoint == nil {
		endpoint = eviction.SelectAmongEndpoints(backend.Endpoints, now)
	}
	return backend, endpoint
}

func selectBackend(backends []gwtypes.Backend) *gwtypes.Backend {
	total := 0
	for _, b := range backends {
		w := b.Ref.Weight
		if w <= 0 {
			w = 1
		}
		total += w
	}
	if total == 0 {
		return &backends[0]
	}
	pick := rand.IntN(total)
	cursor := 0
	for i := range backends {
		w := backends[i].Ref.Weight
		if w <= 0 {
			w = 1
		}
		cursor += w
		if pick < cursor {
			return &backends[i]
		}
	}
	return &backends[len(backends)-1]
}

// selectHealthyEndpoint picks among non-evicted endpoints, weighted by
// their current EWMA health score so healthier endpoints receive
// proportionally more traffic; returns nil if every endpoint is evicted.
func selectHealthyEndpoint(endpoints []*gwtypes.Endpoint, now time.Time) *gwtypes.Endpoint {
	var candidates []*gwtypes.Endpoint
	var weights []float64
	total := 0.0
	for _, ep := range endpoints {
		if ep.Evicted(now) {
			continue
		}
		w := ep.Health()
		if w <= 0 {
			// Give an endpoint with zero recorded health a minimal chance
			// rather than excluding it outright; it may simply be new.
			w = 0.01
		}
		candidates = append(candidates, ep)
		weights = append(weights, w)
		total += w
	}
	if len(candidates) == 0 {
		return nil
	}
	pick := rand.Float64() * total
	cursor := 0.0
	for i, w := range weights {
		cursor += w
		if pick < cursor {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}
