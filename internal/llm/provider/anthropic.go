// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package provider

import (
	"fmt"

	"github.com/agentedge/gateway/internal/gwtypes"
	"github.com/agentedge/gateway/internal/llm"
)

// DefaultAnthropicHost and DefaultAnthropicPath target Anthropic's own
// Messages API directly. Resolution here is just model alias resolution
// with no body reshaping, since the client is already expected to speak
// the provider's native wire format when routed here.
const (
	DefaultAnthropicHost = "api.anthropic.com"
	DefaultAnthropicPath = "/v1/messages"
)

func resolveAnthropic(p gwtypes.AnthropicProvider, params gwtypes.LLMRequestParams, body []byte) (Target, error) {
	model, err := resolveModel(params.Model, p.Model, p.ModelAliases)
	if err != nil {
		return Target{}, fmt.Errorf("llm/provider: %w", err)
	}
	newBody, err := llm.SetModel(body, model)
	if err != nil {
		return Target{}, err
	}
	return Target{Host: DefaultAnthropicHost, Path: DefaultAnthropicPath, Body: newBody}, nil
}
