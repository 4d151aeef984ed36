// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package provider

import (
	"github.com/agentedge/gateway/internal/gwtypes"
	"github.com/agentedge/gateway/internal/llm"
)

// DefaultOpenAIHost and DefaultOpenAIPath target OpenAI's own API.
const (
	DefaultOpenAIHost = "api.openai.com"
	DefaultOpenAIPath = "/v1/chat/completions"
)

// resolveOpenAI applies model alias resolution and otherwise forwards the
// request unchanged, since the client already speaks OpenAI's own wire
// format.
func resolveOpenAI(p gwtypes.OpenAIProvider, params gwtypes.LLMRequestParams, body []byte) (Target, error) {
	model, err := resolveModel(params.Model, p.Model, p.ModelAliases)
	if err != nil {
		return Target{}, err
	}
	newBody, err := llm.SetModel(body, model)
	if err != nil {
		return Target{}, err
	}
	return Target{Host: DefaultOpenAIHost, Path: DefaultOpenAIPath, Body: newBody}, nil
}
