// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package llm translates chat-completion style requests between the wire
// format a client sent and the wire format the configured provider
// expects, and extracts usage tokens out of both buffered and streamed
// responses for logging.
package llm

import "github.com/agentedge/gateway/internal/gwtypes"

// RouteTable maps a request path to the input format the gateway should
// parse it as. "*" is the catch-all entry applied when no exact path
// matches, mirroring a backend policy that routes
// /v1/chat/completions -> completions, /v1/messages -> messages,
// /v1/responses -> responses, /v1/count -> countTokens, and anything else
// through untouched.
type RouteTable map[string]gwtypes.InputFormat

// DefaultRouteTable is used by an LLM backend with no explicit route
// configuration: everything not recognized passes through unparsed.
func DefaultRouteTable() RouteTable {
	return RouteTable{
		"/v1/chat/completions": gwtypes.InputCompletions,
		"/v1/messages":         gwtypes.InputMessages,
		"/v1/responses":        gwtypes.InputResponses,
		"/v1/count":            gwtypes.InputCountTokens,
		"*":                    gwtypes.InputPassthrough,
	}
}

// Detect resolves the input format for an inbound request path. A request
// for a path with no route table entry and no catch-all falls back to
// InputDetect, which asks the param extractor to infer shape from the body
// alone.
func Detect(routes RouteTable, path string) gwtypes.InputFormat {
	if routes == nil {
		routes = DefaultRouteTable()
	}
	if format, ok := routes[path]; ok {
		return format
	}
	if format, ok := routes["*"]; ok {
		return format
	}
	return gwtypes.InputDetect
}
