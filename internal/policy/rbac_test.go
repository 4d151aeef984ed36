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

func TestRBAC_EmptyRulesAllowsEveryone(t *testing.T) {
	step := NewRBACStep(&gwtypes.RBACPolicy{})
	resp, err := step.Apply(context.Background(), &gwtypes.Request{Method: http.MethodGet, Path: "/anything"})
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestRBAC_MatchingAllowRulePasses(t *testing.T) {
	step := NewRBACStep(&gwtypes.RBACPolicy{Rules: []gwtypes.RBACRule{
		{Allow: true, Principals: []string{"sub=1234567890"}, Paths: []string{"/tools/increment"}},
	}})
	req := &gwtypes.Request{Method: http.MethodPost, Path: "/tools/increment", Claims: map[string]any{"sub": "1234567890"}}
	resp, err := step.Apply(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestRBAC_NonMatchingPrincipalDenied(t *testing.T) {
	step := NewRBACStep(&gwtypes.RBACPolicy{Rules: []gwtypes.RBACRule{
		{Allow: true, Principals: []string{"sub=admin"}, Paths: []string{"/tools/increment"}},
	}})
	req := &gwtypes.Request{Method: http.MethodPost, Path: "/tools/increment", Claims: map[string]any{"sub": "1234567890"}}
	_, err := step.Apply(context.Background(), req)
	assert.Error(t, err)
}

func TestRBAC_FirstMatchingRuleWins(t *testing.T) {
	step := NewRBACStep(&gwtypes.RBACPolicy{Rules: []gwtypes.RBACRule{
		{Allow: false, Paths: []string{"/admin"}},
		{Allow: true, Paths: []string{"*"}},
	}})
	deny, err := step.Apply(context.Background(), &gwtypes.Request{Method: http.MethodGet, Path: "/admin"})
	require.Error(t, err)
	assert.Nil(t, deny)

	allow, err := step.Apply(context.Background(), &gwtypes.Request{Method: http.MethodGet, Path: "/public"})
	require.NoError(t, err)
	assert.Nil(t, allow)
}

func TestRewrite_AppliesHostPathAndHeaders(t *testing.T) {
	step := NewRewriteStep(&gwtypes.RewritePolicy{
		HostRewrite:   "backend.internal",
		PathPrefix:    "/v1",
		SetHeaders:    map[string]string{"X-Forwarded-By": "gateway"},
		RemoveHeaders: []string{"X-Debug"},
	})
	req := &gwtypes.Request{Authority: "public.example.com", Path: "/chat", Header: http.Header{"X-Debug": []string{"1"}}}
	_, err := step.Apply(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "backend.internal", req.Authority)
	assert.Equal(t, "/v1/chat", req.Path)
	assert.Equal(t, "gateway", req.Header.Get("X-Forwarded-By"))
	assert.Empty(t, req.Header.Get("X-Debug"))
}
