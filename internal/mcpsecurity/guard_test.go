// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package mcpsecurity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_AllowsWhenEveryGuardAllows(t *testing.T) {
	chain := NewChain(
		NewRugPullGuard(DefaultRugPullConfig()),
		NewServerWhitelistGuard(DefaultServerWhitelistConfig()),
		NewToolShadowingGuard(DefaultToolShadowingConfig()),
	)
	decision, guard, err := chain.EvaluateToolsList(nil, Context{ServerName: "github-mcp"})
	require.NoError(t, err)
	assert.Equal(t, Allow, decision)
	assert.Empty(t, guard)
}

func TestChain_ToolInvokeAllowsByDefault(t *testing.T) {
	chain := NewChain(NewRugPullGuard(DefaultRugPullConfig()))
	decision, _, err := chain.EvaluateToolInvoke(Context{ToolName: "search"})
	require.NoError(t, err)
	assert.Equal(t, Allow, decision)
}

func TestChain_StopsAtFirstErroringGuard(t *testing.T) {
	guard, err := NewWASMGuard(DefaultWASMGuardConfig("/probes/example.wasm"))
	require.NoError(t, err)

	chain := NewChain(NewRugPullGuard(DefaultRugPullConfig()), guard)
	decision, name, err := chain.EvaluateToolsList(nil, Context{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotImplemented))
	assert.Equal(t, Deny, decision)
	assert.Equal(t, "wasm", name)
}

func TestNewWASMGuard_RejectsEmptyModulePath(t *testing.T) {
	_, err := NewWASMGuard(WASMGuardConfig{})
	require.Error(t, err)
}

func TestDefaultWASMGuardConfig_FillsDefaults(t *testing.T) {
	cfg := DefaultWASMGuardConfig("/probes/a.wasm")
	assert.Equal(t, "evaluate", cfg.FunctionName)
	assert.Equal(t, 10*1024*1024, cfg.MaxMemory)
}
