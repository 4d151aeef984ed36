// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package policy

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentedge/gateway/internal/gwtypes"
)

func csrfRequest(method string, headers map[string]string) *gwtypes.Request {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &gwtypes.Request{Method: method, Scheme: "https", Authority: "example.com", Header: h}
}

func TestCSRF_SafeMethodsAlwaysAllowed(t *testing.T) {
	step := NewCSRFStep(&gwtypes.CSRFPolicy{})
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		resp, err := step.Apply(context.Background(), csrfRequest(m, map[string]string{"Origin": "https://evil.com"}))
		require.NoError(t, err)
		assert.Nil(t, resp)
	}
}

func TestCSRF_SecFetchSiteSameOriginAllowed(t *testing.T) {
	step := NewCSRFStep(&gwtypes.CSRFPolicy{})
	resp, err := step.Apply(context.Background(), csrfRequest(http.MethodPost, map[string]string{"Sec-Fetch-Site": "same-origin"}))
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestCSRF_SecFetchSiteCrossSiteRejected(t *testing.T) {
	step := NewCSRFStep(&gwtypes.CSRFPolicy{})
	resp, err := step.Apply(context.Background(), csrfRequest(http.MethodPost, map[string]string{"Sec-Fetch-Site": "cross-site"}))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.DirectStatus)
}

func TestCSRF_SecFetchSiteCrossSiteExempted(t *testing.T) {
	step := NewCSRFStep(&gwtypes.CSRFPolicy{AdditionalOrigins: []string{"https://trusted.com"}})
	resp, err := step.Apply(context.Background(), csrfRequest(http.MethodPost, map[string]string{
		"Sec-Fetch-Site": "cross-site",
		"Origin":         "https://trusted.com",
	}))
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestCSRF_NoOriginHeaderAllowed(t *testing.T) {
	step := NewCSRFStep(&gwtypes.CSRFPolicy{})
	resp, err := step.Apply(context.Background(), csrfRequest(http.MethodPost, nil))
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestCSRF_NullOriginTreatedAsAbsent(t *testing.T) {
	step := NewCSRFStep(&gwtypes.CSRFPolicy{})
	resp, err := step.Apply(context.Background(), csrfRequest(http.MethodPost, map[string]string{"Origin": "null"}))
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestCSRF_OriginMatchesTargetAllowed(t *testing.T) {
	step := NewCSRFStep(&gwtypes.CSRFPolicy{})
	resp, err := step.Apply(context.Background(), csrfRequest(http.MethodPost, map[string]string{"Origin": "https://example.com"}))
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestCSRF_OriginMismatchRejected(t *testing.T) {
	step := NewCSRFStep(&gwtypes.CSRFPolicy{})
	resp, err := step.Apply(context.Background(), csrfRequest(http.MethodPost, map[string]string{"Origin": "https://evil.com"}))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.DirectStatus)
}

func TestCSRF_OriginMismatchExempted(t *testing.T) {
	step := NewCSRFStep(&gwtypes.CSRFPolicy{AdditionalOrigins: []string{"https://partner.com"}})
	resp, err := step.Apply(context.Background(), csrfRequest(http.MethodPost, map[string]string{"Origin": "https://partner.com"}))
	require.NoError(t, err)
	assert.Nil(t, resp)
}
