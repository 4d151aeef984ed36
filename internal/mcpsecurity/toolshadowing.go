// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package mcpsecurity

// ToolShadowingConfig configures duplicate-tool-name rejection and the
// MCP protocol method names a malicious tool must never be allowed to
// override.
type ToolShadowingConfig struct {
	BlockDuplicates bool
	ProtectedNames  []string
}

// DefaultToolShadowingConfig returns the default configuration, including
// the standard protected-method-name list.
func DefaultToolShadowingConfig() ToolShadowingConfig {
	return ToolShadowingConfig{
		BlockDuplicates: true,
		ProtectedNames: []string{
			"initialize",
			"tools/list",
			"tools/call",
			"prompts/list",
			"prompts/get",
			"resources/list",
			"resources/read",
		},
	}
}

// ToolShadowingGuard is meant to prevent one MCP server's tool list from
// shadowing another's (two servers both exposing a tool named "search",
// where a client can't tell which implementation actually runs) or from
// naming a tool after a protected protocol method. Full implementation
// needs cross-server tool-name bookkeeping shared across every connected
// MCP upstream; this gateway evaluates tool lists one server at a time and
// has no such shared registry yet, so every check allows.
type ToolShadowingGuard struct {
	config ToolShadowingConfig
}

func NewToolShadowingGuard(config ToolShadowingConfig) *ToolShadowingGuard {
	return &ToolShadowingGuard{config: config}
}

func (g *ToolShadowingGuard) Name() string { return "tool-shadowing" }

func (g *ToolShadowingGuard) EvaluateToolsList([]Tool, Context) (Decision, error) {
	return Allow, nil
}

func (g *ToolShadowingGuard) EvaluateToolInvoke(Context) (Decision, error) {
	return Allow, nil
}
