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

// DefaultGeminiHost and DefaultGeminiPath target Gemini's OpenAI-compatible
// chat completions endpoint, so (unlike Vertex) no body reshaping is needed.
const (
	DefaultGeminiHost = "generativelanguage.googleapis.com"
	DefaultGeminiPath = "/v1beta/openai/chat/completions"
)

func resolveGemini(p gwtypes.GeminiProvider, params gwtypes.LLMRequestParams, body []byte) (Target, error) {
	model, err := resolveModel(params.Model, p.Model, p.ModelAliases)
	if err != nil {
		return Target{}, fmt.Errorf("llm/provider: %w", err)
	}
	newBody, err := llm.SetModel(body, model)
	if err != nil {
		return Target{}, err
	}
	return Target{Host: DefaultGeminiHost, Path: DefaultGeminiPath, Body: newBody}, nil
}
