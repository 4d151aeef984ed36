// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package eviction

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// ResponseOutcome is the CEL activation surface for an
// unhealthy_expression: the response status and whether the call failed
// at the transport level before a status was ever produced.
type ResponseOutcome struct {
	Status         int
	TransportError bool
}

// UnhealthyPredicate evaluates whether a response outcome counts as
// unhealthy for outlier detection purposes.
type UnhealthyPredicate interface {
	Unhealthy(outcome ResponseOutcome) bool
}

// defaultPredicate is the fallback used when no CEL expression is
// configured: 5xx or a transport-level failure.
type defaultPredicate struct{}

func (defaultPredicate) Unhealthy(o ResponseOutcome) bool {
	return o.TransportError || o.Status >= 500
}

// DefaultPredicate is the singleton default unhealthy predicate.
var DefaultPredicate UnhealthyPredicate = defaultPredicate{}

// celPredicate evaluates a compiled CEL program of the
// unhealthy_expression configured on an EvictionPolicy, e.g.
// "response.status >= 500 || response.status == 429".
//
// Compiles once, evaluates many times against a simple variable binding
// map.
type celPredicate struct {
	program cel.Program
}

// CompileUnhealthyExpression compiles a CEL expression over a "response"
// variable exposing status (int) and transport_error (bool) fields.
func CompileUnhealthyExpression(expr string) (UnhealthyPredicate, error) {
	env, err := cel.NewEnv(
		cel.Variable("response", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("eviction: building CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("eviction: compiling unhealthy expression %q: %w", expr, issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("eviction: building CEL program for %q: %w", expr, err)
	}
	return &celPredicate{program: program}, nil
}

func (p *celPredicate) Unhealthy(o ResponseOutcome) bool {
	out, _, err := p.program.Eval(map[string]any{
		"response": map[string]any{
			"status":          o.Status,
			"transport_error": o.TransportError,
		},
	})
	if err != nil {
		// A misbehaving expression should not itself cause evictions; treat
		// evaluation failure as "healthy" and rely on the status code.
		return false
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false
	}
	return b
}
