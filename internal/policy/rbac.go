// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package policy

import (
	"context"
	"strings"

	"github.com/agentedge/gateway/internal/gwerrors"
	"github.com/agentedge/gateway/internal/gwtypes"
)

// RBACStep decides access by claim-key-equals-value rules: an empty rule
// set allows everyone, and otherwise the first rule whose predicates hold
// decides the outcome. Rules match claims against HTTP method/path
// predicates so the same evaluator applies uniformly to any route.
type RBACStep struct {
	rules []gwtypes.RBACRule
}

func NewRBACStep(p *gwtypes.RBACPolicy) *RBACStep {
	return &RBACStep{rules: p.Rules}
}

func (r *RBACStep) Name() string { return "rbac" }

func (r *RBACStep) Apply(_ context.Context, req *gwtypes.Request) (*Response, error) {
	if len(r.rules) == 0 {
		return nil, nil
	}
	for _, rule := range r.rules {
		if !methodMatches(rule.Methods, req.Method) {
			continue
		}
		if !pathPrefixMatches(rule.Paths, req.Path) {
			continue
		}
		if !principalMatches(rule.Principals, req.Claims) {
			continue
		}
		if rule.Allow {
			return nil, nil
		}
		return nil, gwerrors.New(gwerrors.KindForbidden, "request denied by access policy")
	}
	// No rule matched any predicate: default deny, matching the spirit of
	// an allowlist with no catch-all rule.
	return nil, gwerrors.New(gwerrors.KindForbidden, "no access policy rule matched")
}

func methodMatches(methods []string, method string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func pathPrefixMatches(paths []string, path string) bool {
	if len(paths) == 0 {
		return true
	}
	for _, p := range paths {
		if p == "*" || strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// principalMatches implements the "key=value" claim-equality matcher from
// RuleSet::validate/Identity::matches, where principals are expressed as
// "claim=value" strings and "*" matches any authenticated or anonymous
// caller.
func principalMatches(principals []string, claims map[string]any) bool {
	if len(principals) == 0 {
		return true
	}
	for _, p := range principals {
		if p == "*" {
			return true
		}
		key, want, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		if got, ok := claims[key]; ok {
			if gotStr, ok := got.(string); ok && gotStr == want {
				return true
			}
		}
	}
	return false
}

// RewriteStep applies host/path rewrites and header set/remove operations
// to the request before it is forwarded upstream.
type RewriteStep struct {
	policy *gwtypes.RewritePolicy
}

func NewRewriteStep(p *gwtypes.RewritePolicy) *RewriteStep {
	return &RewriteStep{policy: p}
}

func (s *RewriteStep) Name() string { return "rewrite" }

func (s *RewriteStep) Apply(_ context.Context, req *gwtypes.Request) (*Response, error) {
	p := s.policy
	if p.HostRewrite != "" {
		req.Authority = p.HostRewrite
	}
	if p.PathPrefix != "" {
		req.Path = p.PathPrefix + req.Path
	}
	for k, v := range p.SetHeaders {
		req.Header.Set(k, v)
	}
	for _, k := range p.RemoveHeaders {
		req.Header.Del(k)
	}
	return nil, nil
}
