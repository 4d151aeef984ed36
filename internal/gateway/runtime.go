// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package gateway assembles the route matcher, policy engine, LLM
// translator, endpoint selector, outlier detector, backend credential
// attachment, and MCP guard chain into a single net/http.Handler: the
// pipeline extproc/processor.go runs as a sidecar to Envoy, run here
// in-process against a real outbound request instead of an ext_proc
// mutation message.
package gateway

import (
	"time"

	"github.com/agentedge/gateway/internal/backendauth"
	"github.com/agentedge/gateway/internal/eviction"
	"github.com/agentedge/gateway/internal/gwtypes"
	"github.com/agentedge/gateway/internal/httpversion"
	"github.com/agentedge/gateway/internal/mcpsecurity"
	"github.com/agentedge/gateway/internal/policy"
)

// ruleRuntime is one route rule's resolved, ready-to-evaluate pipeline
// state: the backends selector.Select chooses among, the policy engine
// their request must clear first, and the eviction policy their responses
// are scored against.
type ruleRuntime struct {
	rule     *gwtypes.RouteRule
	engine   *policy.Engine
	eviction *eviction.Policy
	backends []gwtypes.Backend
	// auth is indexed the same as backends, one credential handler per
	// backend (most are noop).
	auth []backendauth.Handler
	// httpOverride is indexed the same as backends.
	httpOverride []*httpversion.Version
}

// Runtime is an immutable snapshot of everything built from one
// gwconfig.Config: a matchable route table plus the per-rule state Match
// doesn't carry itself. A new Runtime is built and swapped in wholesale on
// reload; nothing here is mutated after BuildRuntime returns.
type Runtime struct {
	table *gwtypes.RouteTable
	rules map[*gwtypes.RouteRule]*ruleRuntime

	// mcpChain runs over any request whose body looks like an MCP
	// tools/list or tools/call JSON-RPC payload, regardless of which rule
	// matched; the native guards apply uniformly across every MCP-capable
	// backend rather than per-route configuration.
	mcpChain *mcpsecurity.Chain
}

func (rt *Runtime) ruleFor(rule *gwtypes.RouteRule) *ruleRuntime {
	return rt.rules[rule]
}

// now is a seam so tests can pin time; production always uses time.Now.
var now = time.Now
