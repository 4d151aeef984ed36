// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package route implements Gateway-API-style HTTP route matching: building
// an immutable, pre-sorted route table from configuration, and matching one
// request against it in bounded, non-suspending time.
//
// A linear scan over a bucket only returns a correct "best" match if the
// bucket is already sorted by precedence, so BuildTable does that sort
// once, up front, and Match stays a linear scan for the first predicate
// hit.
package route

import (
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/agentedge/gateway/internal/gwtypes"
)

// BuildTable groups rules by every hostname they could match under and
// sorts each bucket by Gateway API precedence, so matching a request is a
// linear scan for the first rule whose predicates all hold.
func BuildTable(rules []*gwtypes.RouteRule) *gwtypes.RouteTable {
	t := &gwtypes.RouteTable{ByHostname: map[string][]*gwtypes.RouteRule{}}
	seen := map[string]bool{}
	for _, r := range rules {
		hostnames := r.Hostnames
		if len(hostnames) == 0 {
			hostnames = []string{"*"}
		}
		for _, h := range hostnames {
			t.ByHostname[h] = append(t.ByHostname[h], r)
			if h != "*" && !seen[h] {
				seen[h] = true
			}
		}
	}
	for h, bucket := range t.ByHostname {
		sort.SliceStable(bucket, func(i, j int) bool {
			return precedes(bucket[i], bucket[j])
		})
		t.ByHostname[h] = bucket
	}
	return t
}

// precedes reports whether rule a outranks rule b under the gateway's
// tie-break order: Exact path > Regex > Prefix, then longest prefix
// within same-kind prefixes, then longest regex source within same-kind
// regexes, then method/header/query match counts, then a stable
// namespace/name/index tie-break.
func precedes(a, b *gwtypes.RouteRule) bool {
	if sp := specificity(a.PathMatch); sp != specificity(b.PathMatch) {
		return sp > specificity(b.PathMatch)
	}
	if pl := prefixLen(a.PathMatch); pl != prefixLen(b.PathMatch) {
		return pl > prefixLen(b.PathMatch)
	}
	if rl := regexLen(a.PathMatch); rl != regexLen(b.PathMatch) {
		return rl > regexLen(b.PathMatch)
	}
	if am, bm := len(a.Methods) > 0, len(b.Methods) > 0; am != bm {
		return am
	}
	if la, lb := len(a.HeaderMatch), len(b.HeaderMatch); la != lb {
		return la > lb
	}
	if la, lb := len(a.QueryMatch), len(b.QueryMatch); la != lb {
		return la > lb
	}
	// Ties: alphabetical by "{namespace}/{name}", then rule index within
	// the same route. Creation-timestamp ordering isn't meaningful for a
	// statically-loaded config file, so namespace/name ordering is the
	// first tie-break actually available here.
	ka, kb := a.Namespace+"/"+a.Name, b.Namespace+"/"+b.Name
	if ka != kb {
		return ka < kb
	}
	return a.RuleIndex < b.RuleIndex
}

// specificity ranks a PathMatch kind: Exact is most specific, then Regex,
// then Prefix, which has no defined ordering among regex matches
// themselves; same-kind regexes tie-break on source length via regexLen,
// and same-kind prefixes tie-break on prefix length via prefixLen.
func specificity(pm *gwtypes.PathMatch) int {
	if pm == nil {
		return 0
	}
	switch pm.Kind {
	case gwtypes.PathMatchExact:
		return 3
	case gwtypes.PathMatchRegex:
		return 2
	case gwtypes.PathMatchPrefix:
		return 1
	default:
		return 0
	}
}

func prefixLen(pm *gwtypes.PathMatch) int {
	if pm == nil || pm.Kind != gwtypes.PathMatchPrefix {
		return 0
	}
	return len(pm.Value)
}

// regexLen returns the regex source length for a Regex-kind PathMatch, 0
// otherwise, used to tie-break between two competing regex rules.
func regexLen(pm *gwtypes.PathMatch) int {
	if pm == nil || pm.Kind != gwtypes.PathMatchRegex {
		return 0
	}
	return len(pm.Value)
}

// HostnameCandidates returns the bucket keys to probe for a request Host,
// from most to least specific: the exact hostname, then each left-to-right
// wildcard generalization, then the catch-all "*" bucket used by rules
// with no Hostnames at all.
func HostnameCandidates(host string) []string {
	host = strings.TrimSuffix(host, ".")
	labels := strings.Split(host, ".")
	candidates := make([]string, 0, len(labels)+2)
	candidates = append(candidates, host)
	for i := 1; i < len(labels); i++ {
		candidates = append(candidates, "*."+strings.Join(labels[i:], "."))
	}
	candidates = append(candidates, "*")
	return candidates
}

// Match finds the best matching rule and its path-match for a request,
// returning nil if none of the table's rules match. It is pure and
// non-suspending: no I/O, no locking beyond reading the immutable table.
func Match(table *gwtypes.RouteTable, req *gwtypes.Request) (*gwtypes.RouteRule, *gwtypes.PathMatch) {
	host := hostOnly(req.Authority)
	for _, h := range HostnameCandidates(host) {
		bucket, ok := table.ByHostname[h]
		if !ok {
			continue
		}
		for _, rule := range bucket {
			if matches(rule, req) {
				return rule, rule.PathMatch
			}
		}
	}
	return nil, nil
}

func hostOnly(authority string) string {
	if h, _, err := net.SplitHostPort(authority); err == nil {
		return h
	}
	return authority
}

func matches(rule *gwtypes.RouteRule, req *gwtypes.Request) bool {
	if !pathMatches(rule.PathMatch, req.Path) {
		return false
	}
	if len(rule.Methods) > 0 && !containsFold(rule.Methods, req.Method) {
		return false
	}
	for _, hm := range rule.HeaderMatch {
		have := req.Header.Get(string(hm.Name))
		if have == "" {
			if _, ok := req.Header[http.CanonicalHeaderKey(string(hm.Name))]; !ok {
				return false
			}
		}
		switch hm.Kind {
		case gwtypes.HeaderMatchExact:
			if have != hm.Value {
				return false
			}
		case gwtypes.HeaderMatchRegex:
			if hm.Regex == nil || !fullMatch(hm.Regex, have) {
				return false
			}
		}
	}
	if len(rule.QueryMatch) > 0 {
		values, err := url.ParseQuery(req.RawQuery)
		if err != nil {
			return false
		}
		for _, qm := range rule.QueryMatch {
			have := values.Get(qm.Name)
			if have == "" && !values.Has(qm.Name) {
				return false
			}
			switch qm.Kind {
			case gwtypes.QueryMatchExact:
				if have != qm.Value {
					return false
				}
			case gwtypes.QueryMatchRegex:
				if qm.Regex == nil || !fullMatch(qm.Regex, have) {
					return false
				}
			}
		}
	}
	return true
}

func pathMatches(pm *gwtypes.PathMatch, path string) bool {
	if pm == nil {
		return true
	}
	switch pm.Kind {
	case gwtypes.PathMatchExact:
		return path == pm.Value
	case gwtypes.PathMatchPrefix:
		p := strings.TrimSuffix(pm.Value, "/")
		trimmed := strings.TrimSuffix(path, "/")
		suffix, ok := strings.CutPrefix(trimmed, p)
		if !ok {
			return false
		}
		return suffix == "" || strings.HasPrefix(suffix, "/")
	case gwtypes.PathMatchRegex:
		return pm.Regex != nil && fullMatch(pm.Regex, path)
	default:
		return false
	}
}

func fullMatch(re interface{ FindStringIndex(string) []int }, s string) bool {
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
