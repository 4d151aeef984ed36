// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package llm

import (
	"fmt"

	"github.com/agentedge/gateway/internal/gwtypes"
)

// TokenUsage is the usage accounting pulled out of a provider response,
// reported either from a unary JSON body or accumulated from streamed
// chunks. ReasoningTokens, CacheCreationInputTokens, and
// CachedInputTokens are provider-specific counters populated only when
// the provider's response carries them: OpenAI-style reasoning models
// report reasoning_tokens, and Anthropic-style prompt caching reports
// cache_creation_input_tokens/cache_read_input_tokens.
type TokenUsage struct {
	PromptTokens             int
	CompletionTokens         int
	TotalTokens              int
	ReasoningTokens          int
	CacheCreationInputTokens int
	CachedInputTokens        int
}

// Translator converts a client request body into the shape the configured
// provider expects, and converts provider response bytes back, extracting
// token usage along the way. No type in this repository implements it;
// request reshaping is done by the provider package's Resolve, and usage
// extraction by ExtractUnaryUsage and UsageExtractor.
type Translator interface {
	// TranslateRequest rewrites the request body (and, where the provider's
	// wire format encodes the model or route in the URL instead of the
	// body, returns the upstream path to use). newBody may be the same
	// slice as body when no rewrite is needed.
	TranslateRequest(body []byte, params gwtypes.LLMRequestParams) (newBody []byte, path string, err error)

	// TranslateResponse rewrites a unary (non-streaming) response body and
	// extracts usage from it. Called once, with the full response buffered.
	TranslateResponse(body []byte) (newBody []byte, usage TokenUsage, err error)
}

// ErrMissingModel is returned by the provider package's OpenAI, Gemini,
// Anthropic and Vertex resolvers when the provider has no default model
// configured and the request didn't name one either. The Azure OpenAI and
// Bedrock resolvers never return it.
var ErrMissingModel = fmt.Errorf("llm: model not specified")

// ResolveModelAlias looks up model in aliases, returning the resolved name
// if present or model unchanged otherwise.
func ResolveModelAlias(aliases map[string]string, model string) string {
	if resolved, ok := aliases[model]; ok {
		return resolved
	}
	return model
}

// isGoodStatusCode reports whether an upstream HTTP status indicates a
// successful response.
func isGoodStatusCode(code int) bool {
	return code >= 200 && code < 300
}
