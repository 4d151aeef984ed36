// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package backendauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/agentedge/gateway/internal/gwconfig"
)

const azureScopeURL = "https://cognitiveservices.azure.com/.default"

// azureHandler implements [Handler] for Azure AD bearer-token auth.
type azureHandler struct {
	// For a pre-obtained, externally-rotated access token.
	staticToken string
	// For dynamically obtained workload/managed identity tokens.
	useManagedIdentity bool
	credential         azcore.TokenCredential
	tokenOptions       policy.TokenRequestOptions
	mu                 sync.RWMutex
	cachedToken        string
	tokenExpiry        time.Time
}

func newAzureHandler(_ context.Context, auth *gwconfig.AzureAuth) (Handler, error) {
	if auth.UseManagedIdentity {
		credential, err := createAzureCredential(auth.ClientID, auth.TenantID)
		if err != nil {
			return nil, fmt.Errorf("backendauth: creating azure credential: %w", err)
		}
		return &azureHandler{
			useManagedIdentity: true,
			credential:         credential,
			tokenOptions:       policy.TokenRequestOptions{Scopes: []string{azureScopeURL}},
		}, nil
	}
	token := strings.TrimSpace(auth.AccessToken)
	if token == "" {
		return nil, missingField("azure.accessToken (or useManagedIdentity)")
	}
	return &azureHandler{staticToken: token}, nil
}

// createAzureCredential picks AKS workload identity, user-assigned managed
// identity, or falls back to DefaultAzureCredential's own provider chain.
func createAzureCredential(clientID, tenantID string) (azcore.TokenCredential, error) {
	clientOptions := defaultAzureCredentialOptions()

	federatedTokenFile := os.Getenv("AZURE_FEDERATED_TOKEN_FILE")
	envTenantID := os.Getenv("AZURE_TENANT_ID")
	envClientID := os.Getenv("AZURE_CLIENT_ID")

	switch {
	case federatedTokenFile != "" && (tenantID != "" || envTenantID != ""):
		if tenantID == "" {
			tenantID = envTenantID
		}
		if clientID == "" {
			clientID = envClientID
		}
		opts := &azidentity.WorkloadIdentityCredentialOptions{
			ClientID:      clientID,
			TenantID:      tenantID,
			TokenFilePath: federatedTokenFile,
		}
		if clientOptions != nil {
			opts.ClientOptions = clientOptions.ClientOptions
		}
		return azidentity.NewWorkloadIdentityCredential(opts)
	case clientID != "":
		opts := &azidentity.ManagedIdentityCredentialOptions{ID: azidentity.ClientID(clientID)}
		if clientOptions != nil {
			opts.ClientOptions = clientOptions.ClientOptions
		}
		return azidentity.NewManagedIdentityCredential(opts)
	default:
		return azidentity.NewDefaultAzureCredential(clientOptions)
	}
}

func defaultAzureCredentialOptions() *azidentity.DefaultAzureCredentialOptions {
	proxyURL := os.Getenv("GATEWAY_AZURE_PROXY_URL")
	if proxyURL == "" {
		return nil
	}
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil
	}
	client := &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(parsed)}}
	return &azidentity.DefaultAzureCredentialOptions{
		ClientOptions: azcore.ClientOptions{Transport: client},
	}
}

// Do implements [Handler.Do].
func (a *azureHandler) Do(ctx context.Context, req *http.Request, _ []byte) error {
	token := a.staticToken
	if a.useManagedIdentity {
		var err error
		token, err = a.getToken(ctx)
		if err != nil {
			return fmt.Errorf("backendauth: fetching azure token: %w", err)
		}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (a *azureHandler) getToken(ctx context.Context) (string, error) {
	const refreshBuffer = 5 * time.Minute

	a.mu.RLock()
	if a.cachedToken != "" && time.Now().Add(refreshBuffer).Before(a.tokenExpiry) {
		token := a.cachedToken
		a.mu.RUnlock()
		return token, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cachedToken != "" && time.Now().Add(refreshBuffer).Before(a.tokenExpiry) {
		return a.cachedToken, nil
	}
	token, err := a.credential.GetToken(ctx, a.tokenOptions)
	if err != nil {
		return "", err
	}
	a.cachedToken = token.Token
	a.tokenExpiry = token.ExpiresOn
	return a.cachedToken, nil
}
