// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package provider

import (
	"fmt"
	"strings"

	"github.com/agentedge/gateway/internal/gwtypes"
	"github.com/agentedge/gateway/internal/llm"
)

// anthropicVertexVersion is the fixed anthropic_version Vertex's
// publishers/anthropic dialect requires on every request body.
const anthropicVertexVersion = "vertex-2023-10-16"

// resolveVertex implements Vertex's dual dialect. The provider's own
// Anthropic flag is authoritative: when set, the bare model name routes
// to Vertex's Anthropic passthrough API and the body is reshaped
// (anthropic_version injected, model moved into the URL), regardless of
// whether the model name itself carries a "publishers/anthropic/models/"
// or "anthropic/" prefix. When the flag is unset but the model name
// carries one of those prefixes anyway, the same Anthropic path is used
// as a fallback. Everything else uses Vertex's OpenAI-compatible endpoint
// unchanged.
func resolveVertex(p gwtypes.VertexProvider, params gwtypes.LLMRequestParams, body []byte) (Target, error) {
	model, err := resolveModel(params.Model, p.Model, nil)
	if err != nil {
		return Target{}, fmt.Errorf("llm/provider: %w", err)
	}

	host := vertexHost(p.Region)
	location := p.Region
	if location == "" {
		location = "global"
	}

	anthropicModel, viaPrefix := anthropicModelName(model)
	if p.Anthropic || viaPrefix {
		if p.Anthropic && !viaPrefix {
			anthropicModel = model
		}
		action := "rawPredict"
		if params.Stream {
			action = "streamRawPredict"
		}
		path := fmt.Sprintf("/v1/projects/%s/locations/%s/publishers/anthropic/models/%s:%s",
			p.ProjectID, location, anthropicModel, action)
		newBody, err := prepareAnthropicVertexBody(body)
		if err != nil {
			return Target{}, err
		}
		return Target{Host: host, Path: path, Body: newBody}, nil
	}

	path := fmt.Sprintf("/v1/projects/%s/locations/%s/endpoints/openapi/chat/completions", p.ProjectID, location)
	newBody, err := llm.SetModel(body, model)
	if err != nil {
		return Target{}, err
	}
	return Target{Host: host, Path: path, Body: newBody}, nil
}

func vertexHost(region string) string {
	if region != "" && region != "global" {
		return fmt.Sprintf("%s-aiplatform.googleapis.com", region)
	}
	return "aiplatform.googleapis.com"
}

// anthropicModelName strips the "publishers/anthropic/models/" or
// "anthropic/" prefix a Vertex-Anthropic model name carries.
func anthropicModelName(model string) (string, bool) {
	if rest, ok := strings.CutPrefix(model, "publishers/anthropic/models/"); ok {
		return rest, true
	}
	if rest, ok := strings.CutPrefix(model, "anthropic/"); ok {
		return rest, true
	}
	return "", false
}

// prepareAnthropicVertexBody injects anthropic_version and removes the
// model field, since the model is already encoded in the URL path.
func prepareAnthropicVertexBody(body []byte) ([]byte, error) {
	withVersion, err := llm.SetField(body, "anthropic_version", anthropicVertexVersion)
	if err != nil {
		return nil, err
	}
	return llm.RemoveField(withVersion, "model")
}
