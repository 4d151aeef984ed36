// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package provider resolves the upstream host, path, and request body for
// each LLM provider dialect the gateway supports, given the client's
// already-parsed request parameters. One file per provider.
package provider

import (
	"fmt"

	"github.com/agentedge/gateway/internal/gwtypes"
	"github.com/agentedge/gateway/internal/llm"
)

// Target is where and what to send to the upstream provider.
type Target struct {
	Host string
	Path string
	Body []byte
}

// Resolve dispatches on the backend's configured provider, returning the
// host/path/body to send upstream. body is the client's request body as
// received; it is not validated as JSON before Resolve sees it.
func Resolve(p gwtypes.Provider, params gwtypes.LLMRequestParams, body []byte) (Target, error) {
	switch provider := p.(type) {
	case gwtypes.OpenAIProvider:
		return resolveOpenAI(provider, params, body)
	case gwtypes.AzureOpenAIProvider:
		return resolveAzureOpenAI(provider, params, body)
	case gwtypes.GeminiProvider:
		return resolveGemini(provider, params, body)
	case gwtypes.AnthropicProvider:
		return resolveAnthropic(provider, params, body)
	case gwtypes.VertexProvider:
		return resolveVertex(provider, params, body)
	case gwtypes.BedrockProvider:
		return resolveBedrock(provider, params, body)
	default:
		return Target{}, fmt.Errorf("llm/provider: unsupported provider type %T", p)
	}
}

// resolveModel picks the request's model if set, falling back to the
// backend's configured default, then resolves any alias. The OpenAI,
// Gemini, Anthropic and Vertex resolvers use it, so for them the request
// model wins over the provider default; Azure OpenAI and Bedrock do not
// call it.
func resolveModel(requestModel, defaultModel string, aliases map[string]string) (string, error) {
	model := requestModel
	if model == "" {
		model = defaultModel
	}
	if model == "" {
		return "", llm.ErrMissingModel
	}
	return llm.ResolveModelAlias(aliases, model), nil
}
