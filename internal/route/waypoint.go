// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package route

import (
	"fmt"

	"github.com/agentedge/gateway/internal/gwtypes"
)

// DestinationKind discriminates a waypoint's bound destination: either a
// literal address or a hostname to resolve.
type DestinationKind int

const (
	DestinationHostname DestinationKind = iota
	DestinationAddress
)

// WaypointBinding describes the service a Waypoint (a per-service L7 proxy
// in an ambient mesh) is bound to serve on behalf of.
type WaypointBinding struct {
	Kind     DestinationKind
	Hostname string
	Address  string
}

// ListenerIsHBONE reports whether a listener qualifies for the HBONE
// (HTTP/2 CONNECT mTLS tunnel) default-route synthesis below: it returns
// true exactly when the listener has no configured routes, and does not
// inspect the listener's protocol.
func ListenerIsHBONE(hasRoutes bool) bool {
	return !hasRoutes
}

// SynthesizeDefaultRoute builds the single default route an HBONE listener
// serves when it has no configured route table: all traffic is forwarded
// to the waypoint's bound service on the destination port the client
// connected to, matched by a PathPrefix("/") catch-all.
//
// Synthesis requires the gateway's own address (selfAddr) to equal the
// waypoint's bound hostname destination, and refuses Address-kind
// destinations outright since there's no hostname to match against.
func SynthesizeDefaultRoute(selfAddr string, binding WaypointBinding, destPort int) (*gwtypes.RouteRule, error) {
	if binding.Kind == DestinationAddress {
		return nil, fmt.Errorf("route: waypoint destination by address is not supported")
	}
	if selfAddr == "" {
		return nil, fmt.Errorf("route: waypoint requires a self address")
	}
	if binding.Hostname != selfAddr {
		return nil, fmt.Errorf("route: service bound to waypoint %q, but this gateway is %q", binding.Hostname, selfAddr)
	}
	return &gwtypes.RouteRule{
		Namespace: "waypoint",
		Name:      "waypoint-default",
		RuleIndex: 0,
		PathMatch: &gwtypes.PathMatch{Kind: gwtypes.PathMatchPrefix, Value: "/"},
		Backends: []gwtypes.BackendRef{{
			Weight: 1,
			Service: &gwtypes.ServiceRef{
				Name: binding.Hostname,
				Port: destPort,
			},
		}},
	}, nil
}
