// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeDefaultRoute_HostnameMatch(t *testing.T) {
	rule, err := SynthesizeDefaultRoute("waypoint.svc.cluster.local",
		WaypointBinding{Kind: DestinationHostname, Hostname: "waypoint.svc.cluster.local"}, 8080)
	require.NoError(t, err)
	require.Len(t, rule.Backends, 1)
	assert.Equal(t, 8080, rule.Backends[0].Service.Port)
	assert.Equal(t, "/", rule.PathMatch.Value)
}

func TestSynthesizeDefaultRoute_RejectsAddressDestination(t *testing.T) {
	_, err := SynthesizeDefaultRoute("self", WaypointBinding{Kind: DestinationAddress, Address: "10.0.0.1"}, 80)
	assert.Error(t, err)
}

func TestSynthesizeDefaultRoute_RejectsMismatchedSelfAddress(t *testing.T) {
	_, err := SynthesizeDefaultRoute("self", WaypointBinding{Kind: DestinationHostname, Hostname: "other"}, 80)
	assert.Error(t, err)
}

func TestSynthesizeDefaultRoute_RequiresSelfAddress(t *testing.T) {
	_, err := SynthesizeDefaultRoute("", WaypointBinding{Kind: DestinationHostname, Hostname: "other"}, 80)
	assert.Error(t, err)
}
