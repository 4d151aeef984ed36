// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package backendauth

import (
	"context"
	"net/http"
	"strings"

	"github.com/agentedge/gateway/internal/gwconfig"
)

// geminiAPIKeyHandler implements [Handler] for Gemini API key authentication.
// Unlike other API key handlers, Gemini expects the key as a query parameter
// (?key=<api-key>) rather than a header.
// Reference: https://ai.google.dev/gemini-api/docs/api-key
type geminiAPIKeyHandler struct {
	apiKey string
}

func newGeminiAPIKeyHandler(auth *gwconfig.GeminiAPIKeyAuth) (Handler, error) {
	key := strings.TrimSpace(auth.Key)
	if key == "" {
		return nil, missingField("geminiApiKey.key")
	}
	return &geminiAPIKeyHandler{apiKey: key}, nil
}

func (g *geminiAPIKeyHandler) Do(_ context.Context, req *http.Request, _ []byte) error {
	q := req.URL.Query()
	q.Set("key", g.apiKey)
	req.URL.RawQuery = q.Encode()
	return nil
}
