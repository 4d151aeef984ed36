// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package provider

import (
	"fmt"

	"github.com/agentedge/gateway/internal/backendauth"
	"github.com/agentedge/gateway/internal/gwtypes"
)

// resolveBedrock targets the Bedrock Runtime Converse API, the unified
// request/response shape AWS added so callers don't need a model-specific
// payload for every foundation model family. Host construction targets
// the same "bedrock-runtime.<region>.amazonaws.com" host backendauth
// signs requests against; the request/response body is passed through
// unchanged here and SigV4 signing (the part that genuinely differs from
// the other providers) is
// handled by backendauth.Handler right before the request leaves the
// gateway.
func resolveBedrock(p gwtypes.BedrockProvider, params gwtypes.LLMRequestParams, body []byte) (Target, error) {
	if p.Region == "" {
		return Target{}, fmt.Errorf("llm/provider: bedrock region is required")
	}
	model := p.Model
	if model == "" {
		model = params.Model
	}
	if model == "" {
		return Target{}, fmt.Errorf("llm/provider: bedrock model is required")
	}

	action := "converse"
	if params.Stream {
		action = "converse-stream"
	}
	path := fmt.Sprintf("/model/%s/%s", model, action)
	return Target{Host: backendauth.BedrockHost(p.Region), Path: path, Body: body}, nil
}
