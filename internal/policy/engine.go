// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package policy implements the gateway's request/response policy chain:
// authentication, authorization, transformation, and routing rewrites,
// each able to short-circuit the request with a direct response.
package policy

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/agentedge/gateway/internal/gwerrors"
	"github.com/agentedge/gateway/internal/gwlog"
	"github.com/agentedge/gateway/internal/gwtypes"
)

// Response is the short-circuit result of a policy step: a direct response
// aborts the request, and its ResponseHeaders are sent with that direct
// response. Evaluate discards a Response without a DirectStatus, so its
// ResponseHeaders never reach the client.
type Response struct {
	DirectStatus  int
	DirectBody    string
	ResponseHeaders http.Header
}

func (r *Response) shortCircuits() bool { return r != nil && r.DirectStatus != 0 }

// Step evaluates one policy against a request, returning a non-nil
// Response to short-circuit, or an error to fail the request with a
// structured status.
type Step interface {
	Name() string
	Apply(ctx context.Context, req *gwtypes.Request) (*Response, error)
}

// Engine runs a route's configured policy steps in a fixed order: authN
// (JWT, then Basic), authZ (RBAC, CSRF), transformation, then routing
// rewrites. Each step can short-circuit; later steps never run once one
// does.
type Engine struct {
	log   *zap.Logger
	steps []Step
}

// New builds an Engine from the policy steps configured for a route,
// already ordered by the caller (see BuildSteps).
func New(log *zap.Logger, steps []Step) *Engine {
	return &Engine{log: log, steps: steps}
}

// Evaluate runs the chain, returning the first short-circuit response (if
// any) or nil to continue to the upstream call.
func (e *Engine) Evaluate(ctx context.Context, req *gwtypes.Request) (*Response, error) {
	for _, step := range e.steps {
		resp, err := step.Apply(ctx, req)
		if err != nil {
			e.log.Debug("policy step failed", append(gwlog.Decision(step.Name(), false), zap.Error(err))...)
			return nil, err
		}
		if resp.shortCircuits() {
			e.log.Debug("policy step short-circuited", gwlog.Decision(step.Name(), false)...)
			return resp, nil
		}
	}
	return nil, nil
}

// BuildSteps orders the configured policy pieces for a route into the
// engine's fixed evaluation order.
func BuildSteps(rp *gwtypes.RoutePolicy, jwtVerifier JWTVerifier, htpasswd *HtpasswdStore) []Step {
	var steps []Step
	if rp == nil {
		return steps
	}
	if rp.JWT != nil && jwtVerifier != nil {
		steps = append(steps, NewJWTStep(rp.JWT, jwtVerifier))
	}
	if rp.BasicAuth != nil && htpasswd != nil {
		steps = append(steps, NewBasicAuthStep(rp.BasicAuth, htpasswd))
	}
	if rp.RBAC != nil {
		steps = append(steps, NewRBACStep(rp.RBAC))
	}
	if rp.CSRF != nil {
		steps = append(steps, NewCSRFStep(rp.CSRF))
	}
	if rp.Rewrite != nil {
		steps = append(steps, NewRewriteStep(rp.Rewrite))
	}
	return steps
}

// forbidden is a convenience constructor mirroring gwerrors' status table.
func forbidden(kind gwerrors.Kind, msg string) error {
	return gwerrors.New(kind, msg)
}
