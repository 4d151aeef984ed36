// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package llm

import (
	"encoding/json"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	openai "github.com/openai/openai-go"
	"github.com/tidwall/gjson"

	"github.com/agentedge/gateway/internal/gwtypes"
)

// openaiUsageEnvelope and anthropicUsageEnvelope decode only the "usage"
// object of a unary response body, borrowing the provider SDKs' own usage
// struct so the field names and types track whatever the SDK vendors,
// rather than hand-rolling a third copy of the accounting schema.
type openaiUsageEnvelope struct {
	Usage openai.CompletionUsage `json:"usage"`
}

type anthropicUsageEnvelope struct {
	Usage anthropic.Usage `json:"usage"`
}

// ExtractUnaryUsage best-effort decodes token accounting out of a unary
// (non-streaming) response body. A decode failure or a format with no
// known usage shape returns the zero value rather than an error: usage
// accounting is a side channel for eviction/observability, never a
// reason to fail a response the client already received.
//
// The three core counters come off the SDKs' own usage structs;
// reasoning_tokens and the cache counters are provider-specific nested
// fields the SDK structs don't surface directly, so those are read with
// gjson the same way the streaming extractors in sse.go do.
func ExtractUnaryUsage(body []byte, format gwtypes.InputFormat) TokenUsage {
	usage := gjson.GetBytes(body, "usage")
	switch format {
	case gwtypes.InputMessages, gwtypes.InputCountTokens:
		var env anthropicUsageEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return TokenUsage{}
		}
		t := TokenUsage{
			PromptTokens:     int(env.Usage.InputTokens),
			CompletionTokens: int(env.Usage.OutputTokens),
			TotalTokens:      int(env.Usage.InputTokens + env.Usage.OutputTokens),
		}
		if v := usage.Get("cache_creation_input_tokens"); v.Exists() {
			t.CacheCreationInputTokens = int(v.Int())
		}
		if v := usage.Get("cache_read_input_tokens"); v.Exists() {
			t.CachedInputTokens = int(v.Int())
		}
		return t
	case gwtypes.InputCompletions, gwtypes.InputResponses:
		var env openaiUsageEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return TokenUsage{}
		}
		t := TokenUsage{
			PromptTokens:     int(env.Usage.PromptTokens),
			CompletionTokens: int(env.Usage.CompletionTokens),
			TotalTokens:      int(env.Usage.TotalTokens),
		}
		if v := usage.Get("completion_tokens_details.reasoning_tokens"); v.Exists() {
			t.ReasoningTokens = int(v.Int())
		}
		if v := usage.Get("prompt_tokens_details.cached_tokens"); v.Exists() {
			t.CachedInputTokens = int(v.Int())
		}
		return t
	default:
		return TokenUsage{}
	}
}
