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

// azureAPIKeyHandler implements [Handler] for Azure OpenAI's "api-key"
// header, used instead of "Authorization: Bearer" when the deployment is
// configured with a static resource key rather than Azure AD.
type azureAPIKeyHandler struct {
	apiKey string
}

func newAzureAPIKeyHandler(auth *gwconfig.AzureAPIKeyAuth) (Handler, error) {
	key := strings.TrimSpace(auth.Key)
	if key == "" {
		return nil, missingField("azureApiKey.key")
	}
	return &azureAPIKeyHandler{apiKey: key}, nil
}

func (a *azureAPIKeyHandler) Do(_ context.Context, req *http.Request, _ []byte) error {
	req.Header.Set("api-key", a.apiKey)
	return nil
}
