// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentedge/gateway/internal/gwtypes"
)

func TestSSEForwarder_ForwardsBytesUnchanged(t *testing.T) {
	chunk := []byte("data: {\"id\":1}\n\n")
	f := NewSSEForwarder(nil)
	assert.Equal(t, chunk, f.Forward(chunk))
}

func TestSSEForwarder_ParsesFrameAcrossChunks(t *testing.T) {
	var frames [][]byte
	f := NewSSEForwarder(func(_ string, data []byte) {
		frames = append(frames, append([]byte(nil), data...))
	})

	f.Forward([]byte("data: {\"usage\":{\"total"))
	f.Forward([]byte("_tokens\":5}}\n\n"))

	if assert.Len(t, frames, 1) {
		assert.JSONEq(t, `{"usage":{"total_tokens":5}}`, string(frames[0]))
	}
}

func TestSSEForwarder_DoneSentinelStopsParsingNotForwarding(t *testing.T) {
	var frames int
	f := NewSSEForwarder(func(_ string, _ []byte) { frames++ })

	f.Forward([]byte("data: [DONE]\n\n"))
	assert.Equal(t, StateDone, f.state)
	assert.Equal(t, 0, frames)

	out := f.Forward([]byte("data: {\"ignored\":true}\n\n"))
	assert.NotEmpty(t, out)
	assert.Equal(t, 0, frames)
}

func TestSSEForwarder_MultilineDataJoinsWithNewline(t *testing.T) {
	var got []byte
	f := NewSSEForwarder(func(_ string, data []byte) { got = data })
	f.Forward([]byte("data: line1\ndata: line2\n\n"))
	assert.Equal(t, "line1\nline2", string(got))
}

func TestUsageExtractor_OpenAIDialect(t *testing.T) {
	var usage TokenUsage
	extract := UsageExtractor(gwtypes.InputCompletions, &usage)
	extract("", []byte(`{"usage":{"prompt_tokens":3,"completion_tokens":7,"total_tokens":10}}`))
	assert.Equal(t, TokenUsage{PromptTokens: 3, CompletionTokens: 7, TotalTokens: 10}, usage)
}

func TestUsageExtractor_AnthropicDialect(t *testing.T) {
	var usage TokenUsage
	extract := UsageExtractor(gwtypes.InputMessages, &usage)
	extract("message_start", []byte(`{"message":{"usage":{"input_tokens":4}}}`))
	extract("message_delta", []byte(`{"usage":{"output_tokens":9}}`))
	assert.Equal(t, 4, usage.PromptTokens)
	assert.Equal(t, 9, usage.CompletionTokens)
	assert.Equal(t, 13, usage.TotalTokens)
}

func TestUsageExtractor_OpenAIDialect_ReasoningAndCachedTokens(t *testing.T) {
	var usage TokenUsage
	extract := UsageExtractor(gwtypes.InputCompletions, &usage)
	extract("", []byte(`{"usage":{"prompt_tokens":3,"completion_tokens":7,"total_tokens":10,`+
		`"completion_tokens_details":{"reasoning_tokens":5},`+
		`"prompt_tokens_details":{"cached_tokens":2}}}`))
	assert.Equal(t, 5, usage.ReasoningTokens)
	assert.Equal(t, 2, usage.CachedInputTokens)
}

func TestUsageExtractor_AnthropicDialect_CacheTokens(t *testing.T) {
	var usage TokenUsage
	extract := UsageExtractor(gwtypes.InputMessages, &usage)
	extract("message_start", []byte(`{"message":{"usage":{"input_tokens":4,`+
		`"cache_creation_input_tokens":6,"cache_read_input_tokens":8}}}`))
	assert.Equal(t, 6, usage.CacheCreationInputTokens)
	assert.Equal(t, 8, usage.CachedInputTokens)
}
