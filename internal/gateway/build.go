// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package gateway

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/agentedge/gateway/internal/backendauth"
	"github.com/agentedge/gateway/internal/eviction"
	"github.com/agentedge/gateway/internal/gwconfig"
	"github.com/agentedge/gateway/internal/gwtypes"
	"github.com/agentedge/gateway/internal/httpversion"
	"github.com/agentedge/gateway/internal/mcpsecurity"
	"github.com/agentedge/gateway/internal/policy"
	"github.com/agentedge/gateway/internal/route"
)

// BuildRuntime converts a loaded gwconfig.Config into a Runtime: compiling
// every regex once, resolving each backend's endpoints and credential
// handler, and wiring one policy.Engine per rule. Called once at startup
// and again on any future config reload.
func BuildRuntime(ctx context.Context, log *zap.Logger, cfg *gwconfig.Config) (*Runtime, error) {
	jwtVerifier := policy.NewOIDCVerifier()
	htpasswdStores := map[string]*policy.HtpasswdStore{}

	var rules []*gwtypes.RouteRule
	rt := &Runtime{
		rules: map[*gwtypes.RouteRule]*ruleRuntime{},
		mcpChain: mcpsecurity.NewChain(
			mcpsecurity.NewRugPullGuard(mcpsecurity.DefaultRugPullConfig()),
			mcpsecurity.NewServerWhitelistGuard(mcpsecurity.DefaultServerWhitelistConfig()),
			mcpsecurity.NewToolShadowingGuard(mcpsecurity.DefaultToolShadowingConfig()),
		),
	}

	for _, rte := range cfg.Routes {
		for ruleIndex, rule := range rte.Rules {
			built, err := buildRule(ctx, rte.Namespace, rte.Name, ruleIndex, rule, cfg.DefaultEviction)
			if err != nil {
				return nil, fmt.Errorf("gateway: building rule %s/%s[%d]: %w", rte.Namespace, rte.Name, ruleIndex, err)
			}

			evictionPolicy, err := eviction.Resolve(evictionPolicyOf(rule, cfg.DefaultEviction))
			if err != nil {
				return nil, fmt.Errorf("gateway: compiling eviction policy for %s/%s[%d]: %w", rte.Namespace, rte.Name, ruleIndex, err)
			}

			htpasswd, err := htpasswdStoreFor(rule.Policy, htpasswdStores)
			if err != nil {
				return nil, fmt.Errorf("gateway: loading htpasswd for %s/%s[%d]: %w", rte.Namespace, rte.Name, ruleIndex, err)
			}

			steps := policy.BuildSteps(routePolicyOf(rule.Policy), jwtVerifier, htpasswd)

			rules = append(rules, built.rule)
			rt.rules[built.rule] = &ruleRuntime{
				rule:         built.rule,
				engine:       policy.New(log, steps),
				eviction:     evictionPolicy,
				backends:     built.backends,
				auth:         built.auth,
				httpOverride: built.httpOverride,
			}
		}
	}

	rt.table = route.BuildTable(rules)
	return rt, nil
}

// builtRule is the intermediate result of converting one gwconfig.Rule,
// kept separate from ruleRuntime so BuildRuntime can resolve the eviction
// policy and policy engine after the fact without threading them through
// every helper below.
type builtRule struct {
	rule         *gwtypes.RouteRule
	backends     []gwtypes.Backend
	auth         []backendauth.Handler
	httpOverride []*httpversion.Version
}

func buildRule(ctx context.Context, namespace, name string, ruleIndex int, rule gwconfig.Rule, defaultEviction gwconfig.EvictionPolicy) (*builtRule, error) {
	pathMatch, err := convertPathMatch(rule.Path)
	if err != nil {
		return nil, err
	}
	headerMatch, err := convertHeaderMatch(rule.Headers)
	if err != nil {
		return nil, err
	}
	queryMatch, err := convertQueryMatch(rule.Query)
	if err != nil {
		return nil, err
	}

	backends := make([]gwtypes.Backend, 0, len(rule.Backends))
	auth := make([]backendauth.Handler, 0, len(rule.Backends))
	httpOverride := make([]*httpversion.Version, 0, len(rule.Backends))
	for _, b := range rule.Backends {
		backendRef, err := convertBackendRef(b)
		if err != nil {
			return nil, fmt.Errorf("backend %q: %w", b.Name, err)
		}
		handler, err := backendauth.New(ctx, b.Auth)
		if err != nil {
			return nil, fmt.Errorf("backend %q: %w", b.Name, err)
		}
		backends = append(backends, gwtypes.Backend{
			Ref:       backendRef,
			Endpoints: endpointsFor(backendRef),
		})
		auth = append(auth, handler)
		httpOverride = append(httpOverride, httpVersionOverride(b.HTTP))
	}

	ruleRule := &gwtypes.RouteRule{
		Namespace:   namespace,
		Name:        name,
		RuleIndex:   ruleIndex,
		Hostnames:   rule.Hostnames,
		PathMatch:   pathMatch,
		Methods:     rule.Methods,
		HeaderMatch: headerMatch,
		QueryMatch:  queryMatch,
		Policy:      routePolicyOf(rule.Policy),
	}
	return &builtRule{rule: ruleRule, backends: backends, auth: auth, httpOverride: httpOverride}, nil
}

func httpVersionOverride(h gwconfig.BackendHTTP) *httpversion.Version {
	switch {
	case h.IsHTTP11():
		v := httpversion.Version1_1
		return &v
	case h.IsHTTP2():
		v := httpversion.Version2
		return &v
	default:
		return nil
	}
}

func evictionPolicyOf(rule gwconfig.Rule, defaultPolicy gwconfig.EvictionPolicy) gwtypes.EvictionPolicy {
	p := defaultPolicy
	if rule.Eviction != nil {
		p = *rule.Eviction
	}
	return gwtypes.EvictionPolicy{
		UnhealthyExpression: p.UnhealthyExpression,
		EvictionDuration:    p.EvictionDuration,
		HealthThreshold:     p.HealthThreshold,
		HealthOnUnevict:     p.HealthOnUnevict,
	}
}

func htpasswdStoreFor(p *gwconfig.Policy, cache map[string]*policy.HtpasswdStore) (*policy.HtpasswdStore, error) {
	if p == nil || p.BasicAuth == nil || p.BasicAuth.HtpasswdPath == "" {
		return nil, nil
	}
	path := p.BasicAuth.HtpasswdPath
	if store, ok := cache[path]; ok {
		return store, nil
	}
	store, err := policy.NewHtpasswdStore(path)
	if err != nil {
		return nil, err
	}
	cache[path] = store
	return store, nil
}

func routePolicyOf(p *gwconfig.Policy) *gwtypes.RoutePolicy {
	if p == nil {
		return nil
	}
	rp := &gwtypes.RoutePolicy{}
	if p.JWT != nil {
		rp.JWT = &gwtypes.JWTPolicy{
			Issuer:    p.JWT.Issuer,
			JWKSURI:   p.JWT.JWKSURI,
			Audiences: p.JWT.Audiences,
			Mode:      authModeOf(p.JWT.Mode),
		}
	}
	if p.BasicAuth != nil {
		rp.BasicAuth = &gwtypes.BasicAuthPolicy{
			HtpasswdPath: p.BasicAuth.HtpasswdPath,
			Mode:         authModeOf(p.BasicAuth.Mode),
		}
	}
	if p.RBAC != nil {
		rules := make([]gwtypes.RBACRule, len(p.RBAC.Rules))
		for i, r := range p.RBAC.Rules {
			rules[i] = gwtypes.RBACRule{Allow: r.Allow, Principals: r.Principals, Methods: r.Methods, Paths: r.Paths}
		}
		rp.RBAC = &gwtypes.RBACPolicy{Rules: rules}
	}
	if p.CSRF != nil {
		rp.CSRF = &gwtypes.CSRFPolicy{AdditionalOrigins: p.CSRF.AdditionalOrigins}
	}
	if p.Rewrite != nil {
		rp.Rewrite = &gwtypes.RewritePolicy{
			PathPrefix:    p.Rewrite.PathPrefix,
			HostRewrite:   p.Rewrite.HostRewrite,
			SetHeaders:    p.Rewrite.SetHeaders,
			RemoveHeaders: p.Rewrite.RemoveHeaders,
		}
	}
	return rp
}

func authModeOf(m gwconfig.AuthMode) gwtypes.AuthMode {
	switch m {
	case gwconfig.AuthModeStrict:
		return gwtypes.AuthModeStrict
	case gwconfig.AuthModePermissive:
		return gwtypes.AuthModePermissive
	default:
		return gwtypes.AuthModeOptional
	}
}

func convertPathMatch(p *gwconfig.PathMatch) (*gwtypes.PathMatch, error) {
	if p == nil {
		return nil, nil
	}
	switch {
	case p.Exact != "":
		return &gwtypes.PathMatch{Kind: gwtypes.PathMatchExact, Value: p.Exact}, nil
	case p.Prefix != "":
		return &gwtypes.PathMatch{Kind: gwtypes.PathMatchPrefix, Value: p.Prefix}, nil
	case p.Regex != "":
		re, err := compileAnchored(p.Regex)
		if err != nil {
			return nil, err
		}
		return &gwtypes.PathMatch{Kind: gwtypes.PathMatchRegex, Value: p.Regex, Regex: re}, nil
	default:
		return nil, nil
	}
}

func convertHeaderMatch(in []gwconfig.HeaderMatch) ([]gwtypes.HeaderMatch, error) {
	out := make([]gwtypes.HeaderMatch, 0, len(in))
	for _, h := range in {
		switch {
		case h.Exact != "":
			out = append(out, gwtypes.HeaderMatch{Kind: gwtypes.HeaderMatchExact, Name: h.Name, Value: h.Exact})
		case h.Regex != "":
			re, err := compileAnchored(h.Regex)
			if err != nil {
				return nil, err
			}
			out = append(out, gwtypes.HeaderMatch{Kind: gwtypes.HeaderMatchRegex, Name: h.Name, Value: h.Regex, Regex: re})
		}
	}
	return out, nil
}

func convertQueryMatch(in []gwconfig.QueryMatch) ([]gwtypes.QueryMatch, error) {
	out := make([]gwtypes.QueryMatch, 0, len(in))
	for _, q := range in {
		switch {
		case q.Exact != "":
			out = append(out, gwtypes.QueryMatch{Kind: gwtypes.QueryMatchExact, Name: q.Name, Value: q.Exact})
		case q.Regex != "":
			re, err := compileAnchored(q.Regex)
			if err != nil {
				return nil, err
			}
			out = append(out, gwtypes.QueryMatch{Kind: gwtypes.QueryMatchRegex, Name: q.Name, Value: q.Regex, Regex: re})
		}
	}
	return out, nil
}

// compileAnchored wraps a configured regex so a partial match never counts
// as a hit, matching route.Match's fullMatch expectations.
func compileAnchored(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, fmt.Errorf("compiling regex %q: %w", expr, err)
	}
	return re, nil
}

func convertBackendRef(b gwconfig.Backend) (gwtypes.BackendRef, error) {
	ref := gwtypes.BackendRef{Weight: b.Weight, Address: b.Address}
	if b.Name != "" {
		ref.Service = &gwtypes.ServiceRef{Namespace: b.Namespace, Name: b.Name, Port: b.Port}
	}
	if b.LLM != nil {
		provider, err := providerFromConfig(b.LLM)
		if err != nil {
			return gwtypes.BackendRef{}, err
		}
		ref.LLM = &gwtypes.LLMBackend{Provider: provider}
	}
	return ref, nil
}

func providerFromConfig(cfg *gwconfig.LLM) (gwtypes.Provider, error) {
	switch cfg.Provider {
	case string(gwtypes.ProviderOpenAI):
		return gwtypes.OpenAIProvider{Model: cfg.Model, ModelAliases: cfg.ModelAliases}, nil
	case string(gwtypes.ProviderAzureOpenAI):
		return gwtypes.AzureOpenAIProvider{
			Host:       cfg.Host,
			APIVersion: cfg.APIVersion,
			Deployment: cfg.Deployment,
			Model:      cfg.Model,
		}, nil
	case string(gwtypes.ProviderGemini):
		return gwtypes.GeminiProvider{Model: cfg.Model, ModelAliases: cfg.ModelAliases}, nil
	case string(gwtypes.ProviderAnthropic):
		return gwtypes.AnthropicProvider{Model: cfg.Model, ModelAliases: cfg.ModelAliases}, nil
	case string(gwtypes.ProviderVertex):
		return gwtypes.VertexProvider{ProjectID: cfg.ProjectID, Region: cfg.Region, Model: cfg.Model, Anthropic: true}, nil
	case string(gwtypes.ProviderVertexOpenAI):
		return gwtypes.VertexProvider{ProjectID: cfg.ProjectID, Region: cfg.Region, Model: cfg.Model, Anthropic: false}, nil
	case string(gwtypes.ProviderBedrock):
		return gwtypes.BedrockProvider{Region: cfg.Region, Model: cfg.Model}, nil
	default:
		return nil, fmt.Errorf("gateway: unrecognized llm provider %q", cfg.Provider)
	}
}

// endpointsFor resolves the single endpoint a BackendRef currently
// describes. This gateway carries no service-discovery client in its
// dependency graph (no Kubernetes informer, no DNS SRV watcher anywhere
// in the example corpus for a standalone binary); a Service backend
// resolves to one endpoint addressed by its DNS name, left to the
// platform's own resolver at dial time, same as Address backends.
func endpointsFor(ref gwtypes.BackendRef) []*gwtypes.Endpoint {
	if ref.Service != nil {
		host := ref.Service.Name
		if ref.Service.Namespace != "" {
			host = ref.Service.Name + "." + ref.Service.Namespace
		}
		return []*gwtypes.Endpoint{gwtypes.NewEndpoint(host, ref.Service.Port)}
	}
	if ref.Address != "" {
		host, port := splitHostPort(ref.Address)
		return []*gwtypes.Endpoint{gwtypes.NewEndpoint(host, port)}
	}
	return nil
}

// splitHostPort parses a "host:port" address, leaving port at 0 (meaning
// "use the scheme default") when it isn't numeric or isn't present.
func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 0
	}
	return host, port
}
