// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package backendauth attaches upstream credentials to a proxied request
// right before it leaves the gateway: a bearer token, an Azure AD access
// token, an api-key header, a Gemini query parameter, or an AWS SigV4
// signature, depending on which provider the backend speaks to.
package backendauth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/agentedge/gateway/internal/gwconfig"
)

// Handler applies one upstream-credential scheme to an outbound request.
// body is the already-buffered request body; SigV4 signing needs its hash,
// header-only handlers ignore it.
type Handler interface {
	Do(ctx context.Context, req *http.Request, body []byte) error
}

// New builds the Handler named by auth. Exactly one field of auth is
// expected to be set; if more than one is, the first match below wins.
func New(ctx context.Context, auth *gwconfig.BackendAuth) (Handler, error) {
	if auth == nil {
		return noopHandler{}, nil
	}
	switch {
	case auth.APIKey != nil:
		return newAPIKeyHandler(auth.APIKey)
	case auth.Azure != nil:
		return newAzureHandler(ctx, auth.Azure)
	case auth.AzureAPIKey != nil:
		return newAzureAPIKeyHandler(auth.AzureAPIKey)
	case auth.Gemini != nil:
		return newGeminiAPIKeyHandler(auth.Gemini)
	case auth.AWS != nil:
		return newAWSHandler(ctx, auth.AWS)
	default:
		return noopHandler{}, nil
	}
}

// noopHandler is used for backends that need no credential attached, e.g.
// a plain HTTP service behind the gateway rather than an LLM provider.
type noopHandler struct{}

func (noopHandler) Do(context.Context, *http.Request, []byte) error { return nil }

func missingField(field string) error {
	return fmt.Errorf("backendauth: %s is required", field)
}
