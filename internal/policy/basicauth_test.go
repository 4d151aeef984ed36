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
	"golang.org/x/crypto/bcrypt"

	"github.com/agentedge/gateway/internal/gwtypes"
)

func bcryptHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return string(hash)
}

func authRequest(username, password string) *gwtypes.Request {
	h := http.Header{}
	if username != "" || password != "" {
		req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)
		req.SetBasicAuth(username, password)
		h = req.Header
	}
	return &gwtypes.Request{Header: h}
}

func TestBasicAuth_ValidCredentials(t *testing.T) {
	store := NewHtpasswdStoreFromEntries(map[string]string{"alice": bcryptHash(t, "s3cret")})
	step := NewBasicAuthStep(&gwtypes.BasicAuthPolicy{Mode: gwtypes.AuthModeOptional}, store)
	resp, err := step.Apply(context.Background(), authRequest("alice", "s3cret"))
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestBasicAuth_StrictModeRejectsMissingCredentials(t *testing.T) {
	store := NewHtpasswdStoreFromEntries(map[string]string{"alice": bcryptHash(t, "s3cret")})
	step := NewBasicAuthStep(&gwtypes.BasicAuthPolicy{Mode: gwtypes.AuthModeStrict}, store)
	resp, err := step.Apply(context.Background(), authRequest("", ""))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.DirectStatus)
	assert.Equal(t, `Basic realm="Restricted"`, resp.ResponseHeaders.Get("WWW-Authenticate"))
}

func TestBasicAuth_OptionalModeAllowsMissingCredentials(t *testing.T) {
	store := NewHtpasswdStoreFromEntries(map[string]string{"alice": bcryptHash(t, "s3cret")})
	step := NewBasicAuthStep(&gwtypes.BasicAuthPolicy{Mode: gwtypes.AuthModeOptional}, store)
	resp, err := step.Apply(context.Background(), authRequest("", ""))
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestBasicAuth_OptionalModeRejectsInvalidCredentials(t *testing.T) {
	store := NewHtpasswdStoreFromEntries(map[string]string{"alice": bcryptHash(t, "s3cret")})
	step := NewBasicAuthStep(&gwtypes.BasicAuthPolicy{Mode: gwtypes.AuthModeOptional}, store)
	resp, err := step.Apply(context.Background(), authRequest("alice", "wrong"))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.DirectStatus)
	assert.Equal(t, `Basic realm="Restricted"`, resp.ResponseHeaders.Get("WWW-Authenticate"))
}

func TestBasicAuth_PermissiveModeAllowsInvalidCredentials(t *testing.T) {
	store := NewHtpasswdStoreFromEntries(map[string]string{"alice": bcryptHash(t, "s3cret")})
	step := NewBasicAuthStep(&gwtypes.BasicAuthPolicy{Mode: gwtypes.AuthModePermissive}, store)
	resp, err := step.Apply(context.Background(), authRequest("alice", "wrong"))
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestBasicAuth_PermissiveModeAllowsMissingCredentials(t *testing.T) {
	store := NewHtpasswdStoreFromEntries(map[string]string{"alice": bcryptHash(t, "s3cret")})
	step := NewBasicAuthStep(&gwtypes.BasicAuthPolicy{Mode: gwtypes.AuthModePermissive}, store)
	resp, err := step.Apply(context.Background(), authRequest("", ""))
	require.NoError(t, err)
	assert.Nil(t, resp)
}
