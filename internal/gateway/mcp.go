// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package gateway

import (
	"github.com/tidwall/gjson"

	"github.com/agentedge/gateway/internal/gwerrors"
	"github.com/agentedge/gateway/internal/mcpsecurity"
)

// mcpGuardCheck runs the MCP security guard chain over a JSON-RPC body
// addressed to an MCP server, if the body looks like one of the two
// method calls the guards care about. Any other JSON-RPC method (or a
// body that isn't JSON-RPC at all, e.g. a plain LLM chat request) passes
// through unguarded: the gateway only intercepts the MCP tool-surface
// calls the guards are meant to police. The guard chain runs inline with
// request handling rather than as a separate proxy hop.
func mcpGuardCheck(chain *mcpsecurity.Chain, serverName string, body []byte) error {
	method := gjson.GetBytes(body, "method").String()
	mcpCtx := mcpsecurity.Context{ServerName: serverName}

	switch method {
	case "tools/list":
		decision, guardName, err := chain.EvaluateToolsList(nil, mcpCtx)
		return guardResult(decision, guardName, err)
	case "tools/call":
		mcpCtx.ToolName = gjson.GetBytes(body, "params.name").String()
		decision, guardName, err := chain.EvaluateToolInvoke(mcpCtx)
		return guardResult(decision, guardName, err)
	default:
		return nil
	}
}

func guardResult(decision mcpsecurity.Decision, guardName string, err error) error {
	if err != nil {
		return gwerrors.Wrap(gwerrors.KindUpstreamTransport, "mcp guard "+guardName+" could not evaluate request", err)
	}
	if decision == mcpsecurity.Deny {
		return gwerrors.New(gwerrors.KindForbidden, "request denied by mcp guard "+guardName)
	}
	return nil
}
