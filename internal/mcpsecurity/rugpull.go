// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package mcpsecurity

// RugPullConfig configures baseline tracking for tool-list drift
// detection.
type RugPullConfig struct {
	Enabled       bool
	RiskThreshold int
}

// DefaultRugPullConfig returns the default configuration.
func DefaultRugPullConfig() RugPullConfig {
	return RugPullConfig{Enabled: true, RiskThreshold: 5}
}

// RugPullGuard is meant to monitor tool availability and integrity over
// time, flagging a server that suddenly removes or rewrites a
// previously-seen tool ("pulling the rug" out from under a client that
// trusted the earlier tool list). Full implementation needs a persistent
// baseline store (a previous tools/list snapshot per server, kept across
// gateway restarts) and a risk-scoring pass over what changed; this
// gateway has no such store, so every evaluation allows.
type RugPullGuard struct {
	config RugPullConfig
}

func NewRugPullGuard(config RugPullConfig) *RugPullGuard {
	return &RugPullGuard{config: config}
}

func (g *RugPullGuard) Name() string { return "rug-pull" }

func (g *RugPullGuard) EvaluateToolsList([]Tool, Context) (Decision, error) {
	return Allow, nil
}

func (g *RugPullGuard) EvaluateToolInvoke(Context) (Decision, error) {
	return Allow, nil
}
