// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package route

import (
	"net/http"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentedge/gateway/internal/gwtypes"
)

func exact(v string) *gwtypes.PathMatch {
	return &gwtypes.PathMatch{Kind: gwtypes.PathMatchExact, Value: v}
}

func prefix(v string) *gwtypes.PathMatch {
	return &gwtypes.PathMatch{Kind: gwtypes.PathMatchPrefix, Value: v}
}

func req(method, host, path, rawQuery string, headers map[string]string) *gwtypes.Request {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &gwtypes.Request{
		Method:    method,
		Authority: host,
		Path:      path,
		RawQuery:  rawQuery,
		Header:    h,
	}
}

func TestMatch_ExactBeatsPrefix(t *testing.T) {
	rules := []*gwtypes.RouteRule{
		{Namespace: "ns", Name: "prefix-route", Hostnames: []string{"example.com"}, PathMatch: prefix("/api")},
		{Namespace: "ns", Name: "exact-route", Hostnames: []string{"example.com"}, PathMatch: exact("/api/v1")},
	}
	table := BuildTable(rules)
	r, _ := Match(table, req(http.MethodGet, "example.com", "/api/v1", "", nil))
	require.NotNil(t, r)
	assert.Equal(t, "exact-route", r.Name)
}

func TestMatch_LongestPrefixWins(t *testing.T) {
	rules := []*gwtypes.RouteRule{
		{Namespace: "ns", Name: "short", Hostnames: []string{"example.com"}, PathMatch: prefix("/api")},
		{Namespace: "ns", Name: "long", Hostnames: []string{"example.com"}, PathMatch: prefix("/api/v1")},
	}
	table := BuildTable(rules)
	r, _ := Match(table, req(http.MethodGet, "example.com", "/api/v1/widgets", "", nil))
	require.NotNil(t, r)
	assert.Equal(t, "long", r.Name)
}

func TestMatch_PrefixRequiresSegmentBoundary(t *testing.T) {
	rules := []*gwtypes.RouteRule{
		{Namespace: "ns", Name: "api", Hostnames: []string{"example.com"}, PathMatch: prefix("/api")},
	}
	table := BuildTable(rules)
	r, _ := Match(table, req(http.MethodGet, "example.com", "/apiv2/widgets", "", nil))
	assert.Nil(t, r)
}

func TestMatch_WildcardHostFallback(t *testing.T) {
	rules := []*gwtypes.RouteRule{
		{Namespace: "ns", Name: "wild", Hostnames: []string{"*.example.com"}, PathMatch: prefix("/")},
	}
	table := BuildTable(rules)
	r, _ := Match(table, req(http.MethodGet, "a.example.com", "/anything", "", nil))
	require.NotNil(t, r)
	assert.Equal(t, "wild", r.Name)

	r2, _ := Match(table, req(http.MethodGet, "example.com", "/anything", "", nil))
	assert.Nil(t, r2)
}

func TestMatch_MoreHeaderMatchesWinTie(t *testing.T) {
	rules := []*gwtypes.RouteRule{
		{
			Namespace: "ns", Name: "one-header", Hostnames: []string{"example.com"}, PathMatch: prefix("/"),
			HeaderMatch: []gwtypes.HeaderMatch{{Kind: gwtypes.HeaderMatchExact, Name: "x-a", Value: "1"}},
		},
		{
			Namespace: "ns", Name: "two-headers", Hostnames: []string{"example.com"}, PathMatch: prefix("/"),
			HeaderMatch: []gwtypes.HeaderMatch{
				{Kind: gwtypes.HeaderMatchExact, Name: "x-a", Value: "1"},
				{Kind: gwtypes.HeaderMatchExact, Name: "x-b", Value: "2"},
			},
		},
	}
	table := BuildTable(rules)
	r, _ := Match(table, req(http.MethodGet, "example.com", "/", "", map[string]string{"x-a": "1", "x-b": "2"}))
	require.NotNil(t, r)
	assert.Equal(t, "two-headers", r.Name)
}

func TestMatch_RegexBeatsPrefix(t *testing.T) {
	re := regexp.MustCompile(`^/widgets/[0-9]+$`)
	rules := []*gwtypes.RouteRule{
		{Namespace: "ns", Name: "prefix-route", Hostnames: []string{"example.com"}, PathMatch: prefix("/widgets")},
		{Namespace: "ns", Name: "regex-route", Hostnames: []string{"example.com"},
			PathMatch: &gwtypes.PathMatch{Kind: gwtypes.PathMatchRegex, Value: re.String(), Regex: re}},
	}
	table := BuildTable(rules)
	r, _ := Match(table, req(http.MethodGet, "example.com", "/widgets/42", "", nil))
	require.NotNil(t, r)
	assert.Equal(t, "regex-route", r.Name)
}

func TestMatch_LongerRegexSourceWinsTie(t *testing.T) {
	shortRe := regexp.MustCompile(`^/widgets/.*$`)
	longRe := regexp.MustCompile(`^/widgets/[0-9]+.*$`)
	rules := []*gwtypes.RouteRule{
		{Namespace: "ns", Name: "short-regex", Hostnames: []string{"example.com"},
			PathMatch: &gwtypes.PathMatch{Kind: gwtypes.PathMatchRegex, Value: shortRe.String(), Regex: shortRe}},
		{Namespace: "ns", Name: "long-regex", Hostnames: []string{"example.com"},
			PathMatch: &gwtypes.PathMatch{Kind: gwtypes.PathMatchRegex, Value: longRe.String(), Regex: longRe}},
	}
	table := BuildTable(rules)
	r, _ := Match(table, req(http.MethodGet, "example.com", "/widgets/42", "", nil))
	require.NotNil(t, r)
	assert.Equal(t, "long-regex", r.Name)
}

func TestMatch_RegexPathMustFullyAnchor(t *testing.T) {
	re := regexp.MustCompile(`^/widgets/[0-9]+$`)
	rules := []*gwtypes.RouteRule{
		{Namespace: "ns", Name: "widget", Hostnames: []string{"example.com"},
			PathMatch: &gwtypes.PathMatch{Kind: gwtypes.PathMatchRegex, Regex: re}},
	}
	table := BuildTable(rules)

	r, _ := Match(table, req(http.MethodGet, "example.com", "/widgets/42", "", nil))
	require.NotNil(t, r)

	r2, _ := Match(table, req(http.MethodGet, "example.com", "/widgets/42/extra", "", nil))
	assert.Nil(t, r2)
}

func TestMatch_QueryParamMatch(t *testing.T) {
	rules := []*gwtypes.RouteRule{
		{
			Namespace: "ns", Name: "canary", Hostnames: []string{"example.com"}, PathMatch: prefix("/"),
			QueryMatch: []gwtypes.QueryMatch{{Kind: gwtypes.QueryMatchExact, Name: "variant", Value: "canary"}},
		},
	}
	table := BuildTable(rules)
	q := url.Values{"variant": []string{"canary"}}.Encode()
	r, _ := Match(table, req(http.MethodGet, "example.com", "/", q, nil))
	require.NotNil(t, r)

	q2 := url.Values{"variant": []string{"stable"}}.Encode()
	r2, _ := Match(table, req(http.MethodGet, "example.com", "/", q2, nil))
	assert.Nil(t, r2)
}

func TestMatch_NoHostnameRuleIsCatchAll(t *testing.T) {
	rules := []*gwtypes.RouteRule{
		{Namespace: "ns", Name: "catch-all", PathMatch: prefix("/")},
	}
	table := BuildTable(rules)
	r, _ := Match(table, req(http.MethodGet, "anything.invalid", "/x", "", nil))
	require.NotNil(t, r)
	assert.Equal(t, "catch-all", r.Name)
}

func TestMatch_NoMatchReturnsNil(t *testing.T) {
	rules := []*gwtypes.RouteRule{
		{Namespace: "ns", Name: "only", Hostnames: []string{"example.com"}, PathMatch: exact("/only")},
	}
	table := BuildTable(rules)
	r, _ := Match(table, req(http.MethodGet, "example.com", "/other", "", nil))
	assert.Nil(t, r)
}

func TestMatch_FirstRuleInListOrderWinsFullTie(t *testing.T) {
	rules := []*gwtypes.RouteRule{
		{Namespace: "ns", Name: "a", RuleIndex: 0, Hostnames: []string{"example.com"}, PathMatch: prefix("/")},
		{Namespace: "ns", Name: "a", RuleIndex: 1, Hostnames: []string{"example.com"}, PathMatch: prefix("/")},
	}
	table := BuildTable(rules)
	r, _ := Match(table, req(http.MethodGet, "example.com", "/", "", nil))
	require.NotNil(t, r)
	assert.Equal(t, 0, r.RuleIndex)
}

func TestHostnameCandidates_OrderedMostToLeastSpecific(t *testing.T) {
	got := HostnameCandidates("a.b.example.com")
	assert.Equal(t, []string{
		"a.b.example.com",
		"*.b.example.com",
		"*.example.com",
		"*.com",
		"*",
	}, got)
}
