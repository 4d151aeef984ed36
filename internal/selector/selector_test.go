// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package selector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentedge/gateway/internal/eviction"
	"github.com/agentedge/gateway/internal/gwtypes"
)

func TestSelect_SingleBackendSingleEndpoint(t *testing.T) {
	ep := gwtypes.NewEndpoint("only", 8080)
	backends := []gwtypes.Backend{{Ref: gwtypes.BackendRef{Weight: 1}, Endpoints: []*gwtypes.Endpoint{ep}}}
	backend, got := Select(backends, time.Now())
	require.NotNil(t, backend)
	assert.Same(t, ep, got)
}

func TestSelect_SkipsEvictedEndpoint(t *testing.T) {
	now := time.Now()
	healthy := gwtypes.NewEndpoint("healthy", 8080)
	evicted := gwtypes.NewEndpoint("evicted", 8080)
	// No health threshold: a single unhealthy sample evicts.
	pol := gwtypes.DefaultEvictionPolicy()
	pol.HealthThreshold = 0
	policy, err := eviction.Resolve(pol)
	require.NoError(t, err)
	eviction.Observe(evicted, policy, 503, false, nil, now)

	backends := []gwtypes.Backend{{Ref: gwtypes.BackendRef{Weight: 1}, Endpoints: []*gwtypes.Endpoint{evicted, healthy}}}
	for i := 0; i < 20; i++ {
		_, got := Select(backends, now)
		assert.Same(t, healthy, got)
	}
}

func TestSelect_FailsOpenWhenAllEndpointsEvicted(t *testing.T) {
	now := time.Now()
	a := gwtypes.NewEndpoint("a", 8080)
	b := gwtypes.NewEndpoint("b", 8080)
	// No health threshold: a single unhealthy sample evicts.
	pol := gwtypes.DefaultEvictionPolicy()
	pol.HealthThreshold = 0
	policy, err := eviction.Resolve(pol)
	require.NoError(t, err)
	eviction.Observe(a, policy, 503, false, nil, now)
	eviction.Observe(b, policy, 503, false, nil, now.Add(time.Second))

	backends := []gwtypes.Backend{{Ref: gwtypes.BackendRef{Weight: 1}, Endpoints: []*gwtypes.Endpoint{a, b}}}
	_, got := Select(backends, now)
	require.NotNil(t, got)
	assert.Same(t, a, got)
}

func TestSelect_NoBackendsReturnsNil(t *testing.T) {
	backend, ep := Select(nil, time.Now())
	assert.Nil(t, backend)
	assert.Nil(t, ep)
}

func TestSelectBackend_ZeroWeightTreatedAsOne(t *testing.T) {
	backends := []gwtypes.Backend{
		{Ref: gwtypes.BackendRef{Weight: 0}},
		{Ref: gwtypes.BackendRef{Weight: 0}},
	}
	seen := map[*gwtypes.Backend]bool{}
	for i := 0; i < 50; i++ {
		seen[selectBackend(backends)] = true
	}
	assert.Len(t, seen, 2)
}
