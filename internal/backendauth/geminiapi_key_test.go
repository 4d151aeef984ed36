// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package backendauth

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentedge/gateway/internal/gwconfig"
)

func TestNewGeminiAPIKeyHandler(t *testing.T) {
	tests := []struct {
		name        string
		auth        *gwconfig.GeminiAPIKeyAuth
		expectError bool
	}{
		{name: "valid API key", auth: &gwconfig.GeminiAPIKeyAuth{Key: "test-key-123"}},
		{name: "empty API key", auth: &gwconfig.GeminiAPIKeyAuth{Key: ""}, expectError: true},
		{name: "whitespace only API key", auth: &gwconfig.GeminiAPIKeyAuth{Key: "   "}, expectError: true},
		{name: "API key with leading/trailing spaces", auth: &gwconfig.GeminiAPIKeyAuth{Key: "  test-key  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, err := newGeminiAPIKeyHandler(tt.auth)
			if tt.expectError {
				require.Error(t, err)
				require.Nil(t, handler)
			} else {
				require.NoError(t, err)
				require.NotNil(t, handler)
			}
		})
	}
}

func TestGeminiAPIKeyHandler_Do(t *testing.T) {
	tests := []struct {
		name         string
		apiKey       string
		rawURL       string
		expectedPath string
		expectedKV   string
	}{
		{
			name:       "path without existing query params",
			apiKey:     "test-key-123",
			rawURL:     "https://generativelanguage.googleapis.com/v1/models/gemini-pro:generateContent",
			expectedKV: "key=test-key-123",
		},
		{
			name:       "path with existing query params",
			apiKey:     "test-key-456",
			rawURL:     "https://generativelanguage.googleapis.com/v1/models/gemini-pro:streamGenerateContent?alt=sse",
			expectedKV: "key=test-key-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &geminiAPIKeyHandler{apiKey: tt.apiKey}
			u, err := url.Parse(tt.rawURL)
			require.NoError(t, err)
			req := &http.Request{URL: u}

			err = handler.Do(context.Background(), req, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.apiKey, req.URL.Query().Get("key"))
		})
	}
}
