// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package gwtrace provides the request-scoped span used across the
// route/policy/translate/select pipeline. It intentionally does not wire an
// exporter: telemetry sinks are an external collaborator, so callers
// configure their own TracerProvider and this package only deals in spans
// and attributes.
package gwtrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/agentedge/gateway"

// StartRequest starts the top-level span for one request lifecycle.
func StartRequest(ctx context.Context, method, path string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, "gateway.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		),
	)
}

// StartStage starts a child span for one stage of the pipeline (route match,
// policy evaluation, translation, endpoint selection).
func StartStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, "gateway."+stage)
}

// SetRoute annotates the request span once a route has been matched.
func SetRoute(span trace.Span, namespace, name string) {
	span.SetAttributes(
		attribute.String("route.namespace", namespace),
		attribute.String("route.name", name),
	)
}

// SetBackend annotates the request span once an endpoint has been selected.
func SetBackend(span trace.Span, address string, port int) {
	span.SetAttributes(
		attribute.String("backend.address", address),
		attribute.Int("backend.port", port),
	)
}
