// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package llm

import (
	"github.com/tidwall/gjson"

	"github.com/agentedge/gateway/internal/gwtypes"
)

// ExtractParams walks a raw JSON request body without fully unmarshaling it
// into a provider-specific struct, pulling out the handful of fields the
// gateway itself needs: the requested model (for alias resolution and
// routing), whether streaming was requested, and a few generation
// parameters useful for logging. Every other field in the body is left
// untouched and forwarded verbatim.
//
// This is a best-effort traversal ("if the field is there and is the
// expected type, use it; otherwise move on") rather than requiring the
// body to fully validate against one provider's schema.
func ExtractParams(body []byte, format gwtypes.InputFormat) gwtypes.LLMRequestParams {
	root := gjson.ParseBytes(body)

	params := gwtypes.LLMRequestParams{
		Model:       modelField(root, format),
		Stream:      root.Get("stream").Bool(),
		InputFormat: format,
	}
	if v := root.Get("max_tokens"); v.Exists() {
		params.MaxTokens = int(v.Int())
	} else if v := root.Get("max_output_tokens"); v.Exists() {
		params.MaxTokens = int(v.Int())
	}
	if v := root.Get("temperature"); v.Exists() {
		f := v.Float()
		params.Temperature = &f
	}
	params.System = systemField(root, format)
	return params
}

// modelField reads the "model" field, which every input format places at
// the top level, including count-token requests ("model" alongside the
// to-be-counted content).
func modelField(root gjson.Result, _ gwtypes.InputFormat) string {
	return root.Get("model").String()
}

// systemField extracts a top-level system prompt where the dialect carries
// one outside the message list: Anthropic's Messages API takes a dedicated
// "system" field rather than a system-role message.
func systemField(root gjson.Result, format gwtypes.InputFormat) string {
	if format != gwtypes.InputMessages {
		return ""
	}
	return root.Get("system").String()
}

// SetModel rewrites the "model" field of a raw JSON body in place, used
// after alias resolution so the provider sees the resolved model name
// rather than the alias the client requested. Any other field is
// untouched.
func SetModel(body []byte, model string) ([]byte, error) {
	return setString(body, "model", model)
}

// RemoveField deletes a top-level field from a raw JSON body, used by the
// Vertex Anthropic dialect which strips "model" from the request body
// once the model is encoded into the URL path instead.
func RemoveField(body []byte, field string) ([]byte, error) {
	return deleteField(body, field)
}
