// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package provider

import (
	"fmt"

	"github.com/agentedge/gateway/internal/gwtypes"
)

// resolveAzureOpenAI builds the deployment-scoped (or v1/preview) path
// Azure OpenAI expects: the "v1" API version uses the flat
// OpenAI-compatible path, "preview" appends the api-version query param
// to that same path, and anything else is the classic per-deployment
// path with the deployment name (defaulting to the request's model)
// baked into the URL.
func resolveAzureOpenAI(p gwtypes.AzureOpenAIProvider, params gwtypes.LLMRequestParams, body []byte) (Target, error) {
	if p.Host == "" {
		return Target{}, fmt.Errorf("llm/provider: azure openai host is required")
	}
	if p.APIVersion == "" {
		return Target{}, fmt.Errorf("llm/provider: azure openai apiVersion is required")
	}

	var path string
	switch p.APIVersion {
	case "v1":
		path = "/openai/v1/chat/completions"
	case "preview":
		path = "/openai/v1/chat/completions?api-version=preview"
	default:
		deployment := p.Deployment
		if deployment == "" {
			deployment = p.Model
		}
		if deployment == "" {
			deployment = params.Model
		}
		if deployment == "" {
			return Target{}, fmt.Errorf("llm/provider: azure openai deployment could not be resolved")
		}
		path = fmt.Sprintf("/openai/deployments/%s/chat/completions?api-version=%s", deployment, p.APIVersion)
	}
	return Target{Host: p.Host, Path: path, Body: body}, nil
}
