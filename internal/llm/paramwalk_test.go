// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentedge/gateway/internal/gwtypes"
)

func TestExtractParams_CompletionsRequest(t *testing.T) {
	body := []byte(`{"model":"gpt-4.1-nano","stream":true,"max_tokens":16,"temperature":0.7,"messages":[]}`)
	params := ExtractParams(body, gwtypes.InputCompletions)
	assert.Equal(t, "gpt-4.1-nano", params.Model)
	assert.True(t, params.Stream)
	assert.Equal(t, 16, params.MaxTokens)
	require.NotNil(t, params.Temperature)
	assert.InDelta(t, 0.7, *params.Temperature, 0.0001)
}

func TestExtractParams_ResponsesUsesMaxOutputTokens(t *testing.T) {
	body := []byte(`{"model":"gpt-4.1-nano","max_output_tokens":16,"input":"hi"}`)
	params := ExtractParams(body, gwtypes.InputResponses)
	assert.Equal(t, 16, params.MaxTokens)
}

func TestExtractParams_MessagesExtractsSystemField(t *testing.T) {
	body := []byte(`{"model":"claude-3","system":"be concise","messages":[]}`)
	params := ExtractParams(body, gwtypes.InputMessages)
	assert.Equal(t, "be concise", params.System)
}

func TestExtractParams_CompletionsIgnoresSystemField(t *testing.T) {
	body := []byte(`{"model":"gpt-4","system":"ignored","messages":[]}`)
	params := ExtractParams(body, gwtypes.InputCompletions)
	assert.Empty(t, params.System)
}

func TestSetModel_RewritesModelField(t *testing.T) {
	body := []byte(`{"model":"alias","messages":[]}`)
	out, err := SetModel(body, "gpt-4.1-nano")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-nano", ExtractParams(out, gwtypes.InputCompletions).Model)
}

func TestRemoveField_DeletesTopLevelField(t *testing.T) {
	body := []byte(`{"model":"claude-3","anthropic_version":"vertex-2023-10-16"}`)
	out, err := RemoveField(body, "model")
	require.NoError(t, err)
	assert.Empty(t, ExtractParams(out, gwtypes.InputMessages).Model)
}
