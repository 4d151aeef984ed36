// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package backendauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/agentedge/gateway/internal/gwconfig"
)

// apiKeyHandler implements [Handler] for the common "static credential on a
// header" scheme used by OpenAI, Anthropic, and most other LLM APIs.
type apiKeyHandler struct {
	key    string
	header string
}

func newAPIKeyHandler(auth *gwconfig.APIKeyAuth) (Handler, error) {
	key := strings.TrimSpace(auth.Key)
	if key == "" {
		return nil, missingField("apiKey.key")
	}
	header := auth.Header
	if header == "" {
		header = "Authorization"
	}
	return &apiKeyHandler{key: key, header: header}, nil
}

func (a *apiKeyHandler) Do(_ context.Context, req *http.Request, _ []byte) error {
	value := a.key
	if a.header == "Authorization" {
		value = fmt.Sprintf("Bearer %s", a.key)
	}
	req.Header.Set(a.header, value)
	return nil
}
